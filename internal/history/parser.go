// Package history loads Home Assistant CSV history exports and replays them
// as the live-state source for the calculation engine.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Reading is one historical state change of an entity.
type Reading struct {
	Timestamp time.Time
	Entity    string
	State     string
}

// ParseCSV parses a Home Assistant history export.
//
// Expected format:
//
//	entity_id,state,last_changed
//	sensor.solar_radiation,803.2,2024-07-21T13:00:00.000Z
//
// States are kept verbatim ("unavailable" included); the states layer
// decides how to treat them at read time. Rows with malformed timestamps
// are skipped.
func ParseCSV(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var readings []Reading
	lineNum := 1 // header was line 1

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", lineNum, err)
		}
		if len(record) < 3 {
			continue
		}

		ts, err := parseTimestamp(strings.TrimSpace(record[2]))
		if err != nil {
			continue
		}

		readings = append(readings, Reading{
			Timestamp: ts,
			Entity:    strings.TrimSpace(record[0]),
			State:     strings.TrimSpace(record[1]),
		})
	}

	return readings, nil
}

func validateHeader(header []string) error {
	if len(header) < 3 {
		return fmt.Errorf("expected at least 3 columns, got %d", len(header))
	}
	expected := []string{"entity_id", "state", "last_changed"}
	for i, col := range expected {
		if strings.TrimSpace(header[i]) != col {
			return fmt.Errorf("expected column %d to be %q, got %q", i, col, header[i])
		}
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts.UTC(), nil
	}
	// Exports without timezone suffix are assumed UTC.
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
