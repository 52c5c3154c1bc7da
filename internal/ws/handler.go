package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"solar_shading/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes client commands to the
// engine.
type Handler struct {
	hub    *Hub
	engine *engine.Engine
}

func NewHandler(hub *Hub, eng *engine.Engine) *Handler {
	return &Handler{hub: hub, engine: eng}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendEngineState(client)
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		h.handleMessage(msg)
	}
}

func (h *Handler) handleMessage(msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeCalcRun:
		h.engine.RunOnce()

	case TypeMaintenanceSet:
		var p MaintenanceSetPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid maintenance:set payload: %v", err)
			return
		}
		h.engine.SetMaintenance(p.Enabled)
		// Recalculate right away so the override is visible immediately.
		h.engine.RunOnce()

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (h *Handler) sendEngineState(c *Client) {
	msg, err := NewEnvelope(TypeEngineState, EngineStateFromEngine(h.engine.State()))
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}
