// Package states supplies the live sensor values the calculation consumes:
// solar radiation, sun position, temperatures and the weather warning flag.
package states

import (
	"log"
	"strconv"
	"strings"
	"sync"

	"solar_shading/internal/config"
)

// Provider returns the current raw state for a sensor key. A key is whatever
// the configured source understands: an MQTT topic, an entity ID, or a test
// fixture name.
type Provider interface {
	Value(key string) (string, bool)
}

// Snapshot is the parsed external state set for one calculation cycle.
type Snapshot struct {
	SolarRadiation float64
	SunAzimuth     float64
	SunElevation   float64
	OutdoorTemp    float64
	ForecastTemp   float64
	WeatherWarning bool
}

// Collect reads the configured sensor references from p, substituting safe
// defaults for missing or unavailable values.
func Collect(p Provider, refs config.SensorRefs) Snapshot {
	return Snapshot{
		SolarRadiation: SafeFloat(p, refs.SolarRadiation, 0),
		SunAzimuth:     SafeFloat(p, refs.SunAzimuth, 0),
		SunElevation:   SafeFloat(p, refs.SunElevation, 0),
		OutdoorTemp:    SafeFloat(p, refs.OutdoorTemp, 0),
		ForecastTemp:   SafeFloat(p, refs.ForecastTemp, 0),
		WeatherWarning: SafeBool(p, refs.WeatherWarning, false),
	}
}

// SafeFloat reads key from p and parses it as a float. Missing keys,
// "unknown"/"unavailable" states and unparseable values all yield the
// default with a logged warning.
func SafeFloat(p Provider, key string, def float64) float64 {
	raw, ok := lookup(p, key)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("state %s: unparseable value %q, using default %v", key, raw, def)
		return def
	}
	return v
}

// SafeBool reads key from p as an on/off style boolean.
func SafeBool(p Provider, key string, def bool) bool {
	raw, ok := lookup(p, key)
	if !ok {
		return def
	}
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true
	case "off", "false", "0", "no":
		return false
	}
	log.Printf("state %s: unparseable value %q, using default %v", key, raw, def)
	return def
}

func lookup(p Provider, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	raw, ok := p.Value(key)
	if !ok {
		log.Printf("state %s: not found, using default", key)
		return "", false
	}
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "unknown", "unavailable", "undefined":
		log.Printf("state %s: unavailable, using default", key)
		return "", false
	}
	return raw, true
}

// Static is a mutable in-memory Provider, used as the fallback source and in
// tests.
type Static struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewStatic(values map[string]string) *Static {
	s := &Static{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s *Static) Value(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value, overwriting any previous state for the key.
func (s *Static) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Layered tries each provider in order and returns the first hit.
type Layered []Provider

func (l Layered) Value(key string) (string, bool) {
	for _, p := range l {
		if v, ok := p.Value(key); ok {
			return v, true
		}
	}
	return "", false
}
