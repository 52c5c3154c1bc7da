package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *Tree {
	return &Tree{
		Global: GlobalConfig{
			ThresholdDirect: Float(200),
			IndoorSensor:    String("sensor.house_indoor"),
		},
		Groups: map[string]GroupConfig{
			"living": {
				Tilt:         Float(85),
				IndoorSensor: String("sensor.living_indoor"),
			},
			"kids": {
				Type: "children",
			},
		},
		Windows: map[string]WindowConfig{
			"plain":  {Width: 1, Height: 1, Azimuth: 180},
			"living": {Width: 1, Height: 1, Azimuth: 180, Group: "living"},
			"custom": {
				Width: 1, Height: 1, Azimuth: 180, Group: "living",
				ThresholdDirect: Float(400),
				Tilt:            Float(70),
				IndoorSensor:    String("sensor.window_indoor"),
			},
			"kid":      {Width: 1, Height: 1, Azimuth: 90, Group: "kids"},
			"orphaned": {Width: 1, Height: 1, Azimuth: 90, Group: "missing"},
		},
	}
}

func TestEffectiveDefaults(t *testing.T) {
	r := NewResolver(&Tree{Windows: map[string]WindowConfig{
		"w": {Width: 1, Height: 1, Azimuth: 180},
	}})

	eff, err := r.Effective("w", Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultGValue, eff.GValue)
	assert.Equal(t, DefaultFrameWidth, eff.FrameWidth)
	assert.Equal(t, DefaultDiffuseFactor, eff.DiffuseFactor)
	assert.Equal(t, DefaultTilt, eff.Tilt)
	assert.Equal(t, DefaultThresholdDirect, eff.ThresholdDirect)
	assert.Equal(t, DefaultThresholdDiffuse, eff.ThresholdDiffuse)
	assert.Equal(t, DefaultIndoorBase, eff.IndoorBase)
	assert.Equal(t, DefaultOutdoorBase, eff.OutdoorBase)
	assert.Equal(t, DefaultAzimuthMin, eff.AzimuthMin)
	assert.Equal(t, DefaultAzimuthMax, eff.AzimuthMax)
	assert.Equal(t, DefaultElevationMin, eff.ElevationMin)
	assert.Equal(t, DefaultElevationMax, eff.ElevationMax)
	assert.Equal(t, DefaultScenarioCStartHour, eff.ScenarioCStartHour)
	assert.Empty(t, eff.IndoorSensor)
}

func TestEffectiveInheritanceChain(t *testing.T) {
	r := NewResolver(testTree())

	// Global value falls through an unset group and window.
	eff, err := r.Effective("plain", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, eff.ThresholdDirect)
	assert.Equal(t, "sensor.house_indoor", eff.IndoorSensor)

	// Group values layer on top of global.
	eff, err = r.Effective("living", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, eff.ThresholdDirect, "group leaves threshold untouched")
	assert.Equal(t, 85.0, eff.Tilt)
	assert.Equal(t, "sensor.living_indoor", eff.IndoorSensor)

	// Window values beat both.
	eff, err = r.Effective("custom", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 400.0, eff.ThresholdDirect)
	assert.Equal(t, 70.0, eff.Tilt)
	assert.Equal(t, "sensor.window_indoor", eff.IndoorSensor)
}

// A group that never sets a value must be fully transparent: the parsed
// inherit sentinel resolves to the global value, not to zero.
func TestEffectiveGroupInheritSentinel(t *testing.T) {
	tree, err := Parse([]byte(`
global:
  threshold_direct: 200
groups:
  g:
    threshold_direct: "-1"
windows:
  w:
    width: 1
    height: 1
    azimuth: 180
    group: g
`))
	require.NoError(t, err)

	eff, err := NewResolver(tree).Effective("w", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, eff.ThresholdDirect)
}

func TestEffectiveOverridesWin(t *testing.T) {
	r := NewResolver(testTree())

	eff, err := r.Effective("custom", Overrides{ThresholdDirect: Float(99)})
	require.NoError(t, err)
	assert.Equal(t, 99.0, eff.ThresholdDirect)
}

func TestEffectiveUnknownGroupFallsBack(t *testing.T) {
	r := NewResolver(testTree())

	eff, err := r.Effective("orphaned", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 200.0, eff.ThresholdDirect)
	assert.Empty(t, eff.GroupType)
	assert.Equal(t, "sensor.house_indoor", eff.IndoorSensor)
}

func TestEffectiveUnknownWindow(t *testing.T) {
	r := NewResolver(testTree())

	_, err := r.Effective("nope", Overrides{})
	assert.ErrorContains(t, err, "nope")
}

func TestScenarioToggleResolution(t *testing.T) {
	tree := &Tree{
		Global: GlobalConfig{ScenarioBEnabled: false, ScenarioCEnabled: true},
		Groups: map[string]GroupConfig{
			"g": {ScenarioB: TriEnable, ScenarioC: TriDisable},
		},
		Windows: map[string]WindowConfig{
			"inherits_group":  {Width: 1, Height: 1, Group: "g"},
			"window_disables": {Width: 1, Height: 1, Group: "g", ScenarioB: TriDisable},
			"no_group":        {Width: 1, Height: 1},
		},
	}
	r := NewResolver(tree)

	eff, err := r.Effective("inherits_group", Overrides{})
	require.NoError(t, err)
	assert.True(t, eff.ScenarioBEnabled, "group enable beats global disable")
	assert.False(t, eff.ScenarioCEnabled, "group disable beats global enable")

	eff, err = r.Effective("window_disables", Overrides{})
	require.NoError(t, err)
	assert.False(t, eff.ScenarioBEnabled, "window disable beats group enable")

	eff, err = r.Effective("no_group", Overrides{})
	require.NoError(t, err)
	assert.False(t, eff.ScenarioBEnabled)
	assert.True(t, eff.ScenarioCEnabled)
}

func TestWithFactorsSensitivity(t *testing.T) {
	eff := Effective{ThresholdDirect: 200, ThresholdDiffuse: 150}

	out := eff.WithFactors(Factors{Sensitivity: 2, ChildrenFactor: DefaultChildrenFactor})
	assert.Equal(t, 100.0, out.ThresholdDirect)
	assert.Equal(t, 75.0, out.ThresholdDiffuse)

	// Input is untouched.
	assert.Equal(t, 200.0, eff.ThresholdDirect)

	// Non-positive sensitivity falls back to the default.
	out = eff.WithFactors(Factors{Sensitivity: 0, ChildrenFactor: DefaultChildrenFactor})
	assert.Equal(t, 200.0, out.ThresholdDirect)
}

func TestWithFactorsChildren(t *testing.T) {
	eff := Effective{ThresholdDirect: 200, ThresholdDiffuse: 150, GroupType: "children"}

	out := eff.WithFactors(Factors{Sensitivity: 1, ChildrenFactor: 0.8})
	assert.InDelta(t, 160.0, out.ThresholdDirect, 1e-9)
	assert.InDelta(t, 120.0, out.ThresholdDiffuse, 1e-9)

	// Only the exact group type gets the reduction.
	eff.GroupType = "children_annex"
	out = eff.WithFactors(Factors{Sensitivity: 1, ChildrenFactor: 0.8})
	assert.Equal(t, 200.0, out.ThresholdDirect)
}

func TestWithFactorsTemperatureOffset(t *testing.T) {
	eff := Effective{IndoorBase: 23, OutdoorBase: 19.5}

	out := eff.WithFactors(Factors{Sensitivity: 1, ChildrenFactor: 0.8, TemperatureOffset: -1.5})
	assert.InDelta(t, 21.5, out.IndoorBase, 1e-9)
	assert.InDelta(t, 18.0, out.OutdoorBase, 1e-9)
}

func TestFactorsFromDefaults(t *testing.T) {
	f := FactorsFrom(GlobalConfig{})
	assert.Equal(t, DefaultSensitivity, f.Sensitivity)
	assert.Equal(t, DefaultChildrenFactor, f.ChildrenFactor)
	assert.Equal(t, 0.0, f.TemperatureOffset)

	f = FactorsFrom(GlobalConfig{Sensitivity: Float(1.5), TemperatureOffset: Float(2)})
	assert.Equal(t, 1.5, f.Sensitivity)
	assert.Equal(t, 2.0, f.TemperatureOffset)
}
