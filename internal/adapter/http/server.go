// Package adapthttp is the driving HTTP adapter: a liveness surface for the
// agent. It never touches device state.
package adapthttp

import (
	"errors"
	"net/http"
	"time"
)

// PollStatus reports when the poll loop last completed a cycle.
type PollStatus interface {
	LastPoll() time.Time
}

// Server exposes the agent's status endpoints.
type Server struct {
	deviceID string
	poller   PollStatus
}

// New creates a Server reporting on behalf of the given device id.
func New(deviceID string, poller PollStatus) *Server {
	return &Server{deviceID: deviceID, poller: poller}
}

// Handler returns the root http.Handler for the agent.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("/status", s.handleStatus)

	return s.loggingMiddleware(withNoCache(mux))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	var lastPoll int64
	if t := s.poller.LastPoll(); !t.IsZero() {
		lastPoll = t.Unix()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"device_id": s.deviceID,
		"last_poll": lastPoll,
	})
}
