// Package shading evaluates whether a window needs automated shading, given
// its computed solar power and the current temperature/weather conditions.
package shading

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"solar_shading/internal/config"
)

// Fixed reason strings for the non-scenario outcomes.
const (
	ReasonMaintenance    = "Maintenance mode active"
	ReasonWeatherWarning = "Weather warning active"
	ReasonNone           = "No shading required"
	ReasonInvalidTemp    = "Invalid temperature data"
	ReasonNoSensor       = "No room temperature sensor"
)

// IndoorReading is the raw indoor temperature state for a window's sensor.
// SensorID is empty when no sensor is configured at any layer.
type IndoorReading struct {
	SensorID string
	Raw      string
}

// Request carries everything one shading decision needs.
type Request struct {
	WindowName string
	Power      float64 // total solar power on the window in watts

	Effective config.Effective

	Indoor   IndoorReading
	Outdoor  float64
	Forecast float64

	WeatherWarning  bool
	MaintenanceMode bool

	Now time.Time
}

// Decision is the outcome for one window.
type Decision struct {
	ShadeRequired bool
	Reason        string
}

// Decide evaluates the shading scenarios in priority order; the first match
// wins. Maintenance mode always forces shading off, a weather warning always
// forces it on; the three heat scenarios follow. Deciding twice on identical
// inputs yields identical results.
func Decide(req Request) Decision {
	if req.MaintenanceMode {
		return Decision{false, ReasonMaintenance}
	}
	if req.WeatherWarning {
		return Decision{true, ReasonWeatherWarning}
	}

	if req.Indoor.SensorID == "" {
		return Decision{false, ReasonNoSensor}
	}
	indoor, err := strconv.ParseFloat(strings.TrimSpace(req.Indoor.Raw), 64)
	if err != nil {
		return Decision{false, ReasonInvalidTemp}
	}

	eff := req.Effective

	// Scenario A: strong direct sun. Always active.
	if req.Power > eff.ThresholdDirect &&
		indoor >= eff.IndoorBase &&
		req.Outdoor >= eff.OutdoorBase {
		return Decision{true, fmt.Sprintf("Strong sun (%.0fW > %.0fW)", req.Power, eff.ThresholdDirect)}
	}

	// Scenario B: diffuse heat.
	if eff.ScenarioBEnabled &&
		req.Power > eff.ThresholdDiffuse &&
		indoor > eff.IndoorBase+eff.ScenarioBIndoorOffset &&
		req.Outdoor > eff.OutdoorBase+eff.ScenarioBOutdoorOffset {
		return Decision{true, fmt.Sprintf("Diffuse heat (%.0fW, Indoor: %.1f°C)", req.Power, indoor)}
	}

	// Scenario C: heatwave forecast. The forecast value must be present
	// (zero means the sensor never reported).
	if eff.ScenarioCEnabled && req.Forecast > 0 &&
		req.Forecast > eff.ScenarioCForecast &&
		indoor >= eff.IndoorBase &&
		req.Now.Hour() >= eff.ScenarioCStartHour {
		return Decision{true, fmt.Sprintf("Heatwave forecast (%.1f°C expected)", req.Forecast)}
	}

	return Decision{false, ReasonNone}
}
