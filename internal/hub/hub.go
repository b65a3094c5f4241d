// Package hub broadcasts build-state transitions to connected observers.
package hub

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// TokenChecker validates the capability token presented at connect time.
type TokenChecker interface {
	ValidateToken(raw string) error
}

// statusMessage is the only frame the hub ever pushes.
type statusMessage struct {
	Busy bool `json:"busy"`
}

// Hub owns the observer set. Delivery is best-effort: an observer whose
// send fails is dropped without affecting the others.
type Hub struct {
	auth     TokenChecker
	logger   hclog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func New(auth TokenChecker, logger hclog.Logger) *Hub {
	return &Hub{
		auth:   auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Cross-origin policy is enforced by the router's CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWebSocket authenticates the token query parameter, upgrades the
// connection and keeps it in the observer set until it closes. Inbound
// frames are read only to detect disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.auth.ValidateToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

// NotifyBusy pushes the new busy flag to every connected observer.
func (h *Hub) NotifyBusy(busy bool) {
	msg := statusMessage{Busy: busy}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("dropping observer", "error", err)
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Observers returns the current number of connected observers.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) remove(conn *websocket.Conn) {
	_ = conn.Close()
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
