package monitor

import (
	"encoding/json"
	"net/http"

	"github.com/berndporr/go-ofdm/internal/logging"
)

// Server exposes a hub over HTTP: a websocket for live events and a
// JSON snapshot for polling.
type Server struct {
	hub  *Hub
	addr string
	mux  *http.ServeMux
}

// NewServer wires the routes for a hub.
func NewServer(addr string, hub *Hub) *Server {
	s := &Server{
		hub:  hub,
		addr: addr,
		mux:  http.NewServeMux(),
	}
	s.mux.HandleFunc("/ws", hub.ServeWS)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	return s
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.hub.Latest())
}

// Start serves until the listener fails. Run it in a goroutine; the
// monitor must never block the modem.
func (s *Server) Start() error {
	logging.Infof("monitor", "listening on http://%s", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}
