// Package monitor publishes live modem events over a websocket so a
// browser can watch sync locks and decode progress while the receiver
// runs.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/berndporr/go-ofdm/internal/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local tooling, any origin may watch
	},
}

// Event is a message pushed to every connected client.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// SyncPayload reports a symbol-start lock.
type SyncPayload struct {
	Offset     int     `json:"offset"`
	Metric     float64 `json:"metric"`
	PilotError float64 `json:"pilotError"`
}

// DecodePayload reports decoding progress.
type DecodePayload struct {
	Symbols   int     `json:"symbols"`
	Bytes     int     `json:"bytes"`
	BitErrors int     `json:"bitErrors"`
	BER       float64 `json:"ber"`
}

// Hub fans events out to websocket clients and keeps the latest payload
// of each type for the status endpoint.
type Hub struct {
	clients map[*websocket.Conn]bool
	latest  map[string]interface{}
	mu      sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		latest:  make(map[string]interface{}),
	}
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	logging.Debugf("monitor", "client connected (%d total)", len(h.clients))
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	logging.Debugf("monitor", "client disconnected (%d remaining)", len(h.clients))
}

// Broadcast sends an event to all connected clients and records it as
// the latest of its type.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Warnf("monitor", "marshal error: %v", err)
		return
	}

	h.mu.Lock()
	h.latest[event.Type] = event.Payload
	var stale []*websocket.Conn
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.Warnf("monitor", "write error: %v", err)
			stale = append(stale, conn)
		}
	}
	for _, conn := range stale {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// Sync publishes a symbol-start lock.
func (h *Hub) Sync(offset int, metric, pilotError float64) {
	h.Broadcast(Event{Type: "sync", Payload: SyncPayload{
		Offset:     offset,
		Metric:     metric,
		PilotError: pilotError,
	}})
}

// Decode publishes decoding progress.
func (h *Hub) Decode(symbols, bytes, bitErrors int, ber float64) {
	h.Broadcast(Event{Type: "decode", Payload: DecodePayload{
		Symbols:   symbols,
		Bytes:     bytes,
		BitErrors: bitErrors,
		BER:       ber,
	}})
}

// Status publishes a free-form state change such as "listening" or
// "idle".
func (h *Hub) Status(state, message string) {
	h.Broadcast(Event{Type: "status", Payload: map[string]string{
		"state":   state,
		"message": message,
	}})
}

// Latest returns a snapshot of the most recent payload per event type.
func (h *Hub) Latest() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snapshot := make(map[string]interface{}, len(h.latest))
	for k, v := range h.latest {
		snapshot[k] = v
	}
	return snapshot
}

// ServeWS upgrades an HTTP request and keeps the connection registered
// until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("monitor", "upgrade error: %v", err)
		return
	}

	h.addClient(conn)
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
