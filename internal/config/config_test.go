package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
global:
  update_interval: 10
  threshold_direct: 250
  sensitivity: 1.0
  scenario_b_enabled: true
  sensors:
    solar_radiation: sensor.solar_radiation
    sun_azimuth: sensor.sun_azimuth
    sun_elevation: sensor.sun_elevation
    outdoor_temperature: sensor.outdoor
  indoor_temperature_sensor: sensor.indoor_default

groups:
  kids:
    name: Children rooms
    type: children
    threshold_direct: "-1"
    indoor_temperature_sensor: sensor.kids_room

windows:
  south:
    name: South window
    width: 2.0
    height: 2.0
    azimuth: 180
  east_kid:
    width: 1.2
    height: 1.4
    azimuth: 90
    group: kids

mqtt:
  broker: tcp://localhost:1883
  publish_prefix: solar_shading
`

func TestParseFullTree(t *testing.T) {
	tree, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, tree.Global.UpdateInterval())
	assert.Equal(t, 250.0, tree.Global.ThresholdDirect.Or(0))
	assert.True(t, tree.Global.ScenarioBEnabled)
	assert.Equal(t, "sensor.solar_radiation", tree.Global.Sensors.SolarRadiation)

	grp := tree.Groups["kids"]
	assert.Equal(t, "children", grp.Type)
	assert.False(t, grp.ThresholdDirect.IsSet(), `"-1" must mean inherit`)
	assert.Equal(t, "sensor.kids_room", grp.IndoorSensor.Or(""))

	require.Len(t, tree.Windows, 2)
	assert.Equal(t, 180.0, tree.Windows["south"].Azimuth)
	assert.Equal(t, "kids", tree.Windows["east_kid"].Group)

	assert.Equal(t, "tcp://localhost:1883", tree.MQTT.Broker)
	assert.Equal(t, "solar_shading", tree.MQTT.PublishPrefix)
}

func TestParseRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero width", "windows:\n  w:\n    width: 0\n    height: 1\n    azimuth: 180\n"},
		{"negative height", "windows:\n  w:\n    width: 1\n    height: -2\n    azimuth: 180\n"},
		{"azimuth too large", "windows:\n  w:\n    width: 1\n    height: 1\n    azimuth: 360\n"},
		{"azimuth negative", "windows:\n  w:\n    width: 1\n    height: 1\n    azimuth: -10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestUpdateIntervalDefault(t *testing.T) {
	var g GlobalConfig
	assert.Equal(t, DefaultUpdateInterval, g.UpdateInterval())

	g.UpdateIntervalMin = -5
	assert.Equal(t, DefaultUpdateInterval, g.UpdateInterval())
}

func TestWindowIDsSorted(t *testing.T) {
	tree := &Tree{Windows: map[string]WindowConfig{
		"zulu":  {},
		"alpha": {},
		"mike":  {},
	}}
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, tree.WindowIDs())
}
