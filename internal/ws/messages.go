package ws

import (
	"encoding/json"
	"time"

	"solar_shading/internal/engine"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeCalcRun        = "calc:run"
	TypeMaintenanceSet = "maintenance:set"

	// Server -> Client
	TypeResultsUpdate = "results:update"
	TypeEngineState   = "engine:state"
)

// MaintenanceSetPayload toggles maintenance mode.
type MaintenanceSetPayload struct {
	Enabled bool `json:"enabled"`
}

// EngineStatePayload mirrors engine.State with wire-friendly fields.
type EngineStatePayload struct {
	IntervalSec int    `json:"interval_sec"`
	Running     bool   `json:"running"`
	Maintenance bool   `json:"maintenance"`
	LastRun     string `json:"last_run,omitempty"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func EngineStateFromEngine(s engine.State) EngineStatePayload {
	p := EngineStatePayload{
		IntervalSec: int(s.Interval / time.Second),
		Running:     s.Running,
		Maintenance: s.Maintenance,
	}
	if !s.LastRun.IsZero() {
		p.LastRun = s.LastRun.Format(time.RFC3339)
	}
	return p
}
