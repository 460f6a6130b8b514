// Package realtime fans household events out to the websocket connections
// of individual users.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Event types emitted to clients.
const (
	EventJoinRequestNew      = "join_request_new"
	EventJoinRequestDecision = "join_request_decision"
)

// Event is the JSON frame written to a client.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Hub tracks the open connections of every user. A user may hold several
// connections (one per tab or device).
type Hub struct {
	mu             sync.RWMutex
	clients        map[string]map[*Client]struct{}
	originPatterns []string
	log            *zap.SugaredLogger
}

// NewHub creates a Hub. originPatterns is passed to the websocket handshake;
// an empty list only admits same-origin upgrades.
func NewHub(log *zap.SugaredLogger, originPatterns ...string) *Hub {
	return &Hub{
		clients:        make(map[string]map[*Client]struct{}),
		originPatterns: originPatterns,
		log:            log,
	}
}

// Register adds a client under its user.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
}

// SendToUser queues ev on every connection of userID and returns how many
// connections accepted it. Connections with a full buffer are skipped.
func (h *Hub) SendToUser(userID string, ev Event) (int, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
			delivered++
		default:
			h.log.Warnw("dropping realtime event, client buffer full", "user_id", userID, "type", ev.Type)
		}
	}
	return delivered, nil
}

// ClientCount returns the number of open connections across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Serve upgrades the request and runs the connection for userID until it
// closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warnw("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	NewClient(h, userID, conn).Run(r.Context())
}
