package ws

import (
	"log"

	"solar_shading/internal/engine"
)

// Bridge implements engine.Callback and broadcasts engine events to the
// WebSocket hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnResults(batch engine.Batch) {
	msg, err := NewEnvelope(TypeResultsUpdate, batch)
	if err != nil {
		log.Printf("Error marshaling results: %v", err)
		return
	}
	b.hub.BroadcastResults(msg)
}

func (b *Bridge) OnState(s engine.State) {
	msg, err := NewEnvelope(TypeEngineState, EngineStateFromEngine(s))
	if err != nil {
		log.Printf("Error marshaling engine state: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
