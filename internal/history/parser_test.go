package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := `entity_id,state,last_changed
sensor.solar_radiation,803.2,2024-07-21T13:00:00.000Z
sensor.solar_radiation,810.7,2024-07-21T13:05:00.000Z
sensor.indoor,unavailable,2024-07-21T13:00:00.000Z
`
	readings, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 3)

	assert.Equal(t, "sensor.solar_radiation", readings[0].Entity)
	assert.Equal(t, "803.2", readings[0].State)
	assert.Equal(t, time.Date(2024, 7, 21, 13, 0, 0, 0, time.UTC), readings[0].Timestamp)

	// Unavailable states are kept verbatim.
	assert.Equal(t, "unavailable", readings[2].State)
}

func TestParseCSVWithoutTimezone(t *testing.T) {
	input := "entity_id,state,last_changed\nsensor.x,1,2024-07-21 13:00:00\n"

	readings, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, time.Date(2024, 7, 21, 13, 0, 0, 0, time.UTC), readings[0].Timestamp)
}

func TestParseCSVSkipsMalformedTimestamps(t *testing.T) {
	input := `entity_id,state,last_changed
sensor.x,1,not-a-time
sensor.x,2,2024-07-21T13:00:00Z
`
	readings, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "2", readings[0].State)
}

func TestParseCSVRejectsBadHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("time,value\n"))
	assert.Error(t, err)

	_, err = ParseCSV(strings.NewReader("entity_id,last_changed,state\nsensor.x,1,2\n"))
	assert.Error(t, err)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.Error(t, err)
}
