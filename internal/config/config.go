package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Hard defaults used when a field is unset at every layer.
const (
	DefaultGValue           = 0.5
	DefaultFrameWidth       = 0.125
	DefaultDiffuseFactor    = 0.15
	DefaultTilt             = 90.0
	DefaultThresholdDirect  = 200.0
	DefaultThresholdDiffuse = 150.0
	DefaultIndoorBase       = 23.0
	DefaultOutdoorBase      = 19.5

	DefaultScenarioBIndoorOffset  = 0.5
	DefaultScenarioBOutdoorOffset = 6.0
	DefaultScenarioCForecast      = 28.5
	DefaultScenarioCStartHour     = 9

	DefaultAzimuthMin   = -90.0
	DefaultAzimuthMax   = 90.0
	DefaultElevationMin = 0.0
	DefaultElevationMax = 90.0

	DefaultSensitivity    = 1.0
	DefaultChildrenFactor = 0.8

	DefaultUpdateInterval = 5 * time.Minute
)

// SensorRefs names the external inputs the engine reads each cycle. Values
// are state keys: MQTT topics, Home Assistant entity IDs, or whatever the
// configured states provider understands.
type SensorRefs struct {
	SolarRadiation string `yaml:"solar_radiation"`
	SunAzimuth     string `yaml:"sun_azimuth"`
	SunElevation   string `yaml:"sun_elevation"`
	OutdoorTemp    string `yaml:"outdoor_temperature"`
	ForecastTemp   string `yaml:"forecast_temperature"`
	WeatherWarning string `yaml:"weather_warning"`
}

// GlobalConfig is the site-wide defaults layer.
type GlobalConfig struct {
	UpdateIntervalMin int     `yaml:"update_interval"`
	MinSolarRadiation float64 `yaml:"min_solar_radiation"`
	MinSunElevation   float64 `yaml:"min_sun_elevation"`

	GValue           OptFloat `yaml:"g_value"`
	FrameWidth       OptFloat `yaml:"frame_width"`
	DiffuseFactor    OptFloat `yaml:"diffuse_factor"`
	Tilt             OptFloat `yaml:"tilt"`
	ThresholdDirect  OptFloat `yaml:"threshold_direct"`
	ThresholdDiffuse OptFloat `yaml:"threshold_diffuse"`
	IndoorBase       OptFloat `yaml:"temperature_indoor_base"`
	OutdoorBase      OptFloat `yaml:"temperature_outdoor_base"`

	Sensitivity       OptFloat `yaml:"sensitivity"`
	ChildrenFactor    OptFloat `yaml:"children_factor"`
	TemperatureOffset OptFloat `yaml:"temperature_offset"`

	ScenarioBEnabled       bool     `yaml:"scenario_b_enabled"`
	ScenarioCEnabled       bool     `yaml:"scenario_c_enabled"`
	ScenarioBIndoorOffset  OptFloat `yaml:"scenario_b_temp_indoor_offset"`
	ScenarioBOutdoorOffset OptFloat `yaml:"scenario_b_temp_outdoor_offset"`
	ScenarioCForecast      OptFloat `yaml:"scenario_c_temp_forecast"`
	ScenarioCStartHour     OptFloat `yaml:"scenario_c_start_hour"`

	MaintenanceMode bool `yaml:"maintenance_mode"`

	Sensors      SensorRefs `yaml:"sensors"`
	IndoorSensor OptString  `yaml:"indoor_temperature_sensor"`
}

// UpdateInterval returns the configured refresh interval.
func (g GlobalConfig) UpdateInterval() time.Duration {
	if g.UpdateIntervalMin <= 0 {
		return DefaultUpdateInterval
	}
	return time.Duration(g.UpdateIntervalMin) * time.Minute
}

// GroupConfig is the optional inheritance layer between global and window.
type GroupConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // e.g. "children" for the reduced-threshold factor

	GValue           OptFloat `yaml:"g_value"`
	FrameWidth       OptFloat `yaml:"frame_width"`
	DiffuseFactor    OptFloat `yaml:"diffuse_factor"`
	Tilt             OptFloat `yaml:"tilt"`
	ThresholdDirect  OptFloat `yaml:"threshold_direct"`
	ThresholdDiffuse OptFloat `yaml:"threshold_diffuse"`
	IndoorBase       OptFloat `yaml:"temperature_indoor_base"`
	OutdoorBase      OptFloat `yaml:"temperature_outdoor_base"`

	ScenarioB              TriState `yaml:"scenario_b_enable"`
	ScenarioC              TriState `yaml:"scenario_c_enable"`
	ScenarioBIndoorOffset  OptFloat `yaml:"scenario_b_temp_indoor_offset"`
	ScenarioBOutdoorOffset OptFloat `yaml:"scenario_b_temp_outdoor_offset"`
	ScenarioCForecast      OptFloat `yaml:"scenario_c_temp_forecast"`
	ScenarioCStartHour     OptFloat `yaml:"scenario_c_start_hour"`

	IndoorSensor OptString `yaml:"indoor_temperature_sensor"`
}

// WindowConfig describes one window's geometry plus optional overrides.
type WindowConfig struct {
	Name   string  `yaml:"name"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	Azimuth      float64  `yaml:"azimuth"`
	AzimuthMin   OptFloat `yaml:"azimuth_min"`
	AzimuthMax   OptFloat `yaml:"azimuth_max"`
	ElevationMin OptFloat `yaml:"elevation_min"`
	ElevationMax OptFloat `yaml:"elevation_max"`
	Tilt         OptFloat `yaml:"tilt"`

	ShadowDepth  OptFloat `yaml:"shadow_depth"`
	ShadowOffset OptFloat `yaml:"shadow_offset"`

	Group string `yaml:"group"`

	GValue           OptFloat `yaml:"g_value"`
	FrameWidth       OptFloat `yaml:"frame_width"`
	DiffuseFactor    OptFloat `yaml:"diffuse_factor"`
	ThresholdDirect  OptFloat `yaml:"threshold_direct"`
	ThresholdDiffuse OptFloat `yaml:"threshold_diffuse"`
	IndoorBase       OptFloat `yaml:"temperature_indoor_base"`
	OutdoorBase      OptFloat `yaml:"temperature_outdoor_base"`

	ScenarioB              TriState `yaml:"scenario_b_enable"`
	ScenarioC              TriState `yaml:"scenario_c_enable"`
	ScenarioBIndoorOffset  OptFloat `yaml:"scenario_b_temp_indoor_offset"`
	ScenarioBOutdoorOffset OptFloat `yaml:"scenario_b_temp_outdoor_offset"`
	ScenarioCForecast      OptFloat `yaml:"scenario_c_temp_forecast"`
	ScenarioCStartHour     OptFloat `yaml:"scenario_c_start_hour"`

	IndoorSensor OptString `yaml:"indoor_temperature_sensor"`
}

// Tree is the full configuration: global defaults plus named groups and windows.
type Tree struct {
	Global  GlobalConfig            `yaml:"global"`
	Groups  map[string]GroupConfig  `yaml:"groups"`
	Windows map[string]WindowConfig `yaml:"windows"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig describes the optional broker connection for live states.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// PublishPrefix enables publishing per-window decisions to
	// <prefix>/<window_id>/shade when non-empty.
	PublishPrefix string `yaml:"publish_prefix"`
}

// Load reads and validates a configuration tree from a YAML file.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a configuration tree.
func Parse(data []byte) (*Tree, error) {
	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the parts of the tree that cannot be defaulted away.
func (t *Tree) Validate() error {
	for id, w := range t.Windows {
		if w.Width <= 0 || w.Height <= 0 {
			return fmt.Errorf("window %q: width and height must be positive", id)
		}
		if w.Azimuth < 0 || w.Azimuth >= 360 {
			return fmt.Errorf("window %q: azimuth must be in [0, 360)", id)
		}
	}
	return nil
}

// WindowIDs returns all window IDs in stable (sorted) order.
func (t *Tree) WindowIDs() []string {
	ids := make([]string, 0, len(t.Windows))
	for id := range t.Windows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
