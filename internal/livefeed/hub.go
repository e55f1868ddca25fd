package livefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cheildo/courtside/internal/session"
)

const (
	TypeSessionUpdate = "SESSION_UPDATE"
	TypeSessionClosed = "SESSION_CLOSED"
)

// closedTTL is how long a closed match keeps refusing updates and answering joins with a close.
const closedTTL = 10 * time.Minute

// Message is the envelope written to spectators.
type Message struct {
	Type    string        `json:"type"`
	MatchID string        `json:"matchID"`
	Session *session.View `json:"session,omitempty"`
}

type feed struct {
	clients map[*client]struct{}
	version uint64
	latest  []byte
}

// Hub tracks spectator connections per match and fans session views out to them.
type Hub struct {
	mu     sync.Mutex
	feeds  map[string]*feed
	closed map[string]time.Time
	now    func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		feeds:  make(map[string]*feed),
		closed: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (h *Hub) feedLocked(matchID string) *feed {
	f, ok := h.feeds[matchID]
	if !ok {
		f = &feed{clients: make(map[*client]struct{})}
		h.feeds[matchID] = f
	}
	return f
}

// add registers c and queues the latest known view so late joiners see the court immediately.
func (h *Hub) add(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.closed[matchID]; ok {
		c.send <- closedMessage(matchID)
		close(c.send)
		return
	}
	f := h.feedLocked(matchID)
	f.clients[c] = struct{}{}
	if f.latest != nil {
		c.send <- f.latest
	}
}

func (h *Hub) remove(matchID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.feeds[matchID]
	if !ok {
		return
	}
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
	if len(f.clients) == 0 && f.latest == nil {
		delete(h.feeds, matchID)
	}
}

// Subscribers returns the number of spectators connected to a match.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f, ok := h.feeds[matchID]; ok {
		return len(f.clients)
	}
	return 0
}

// SessionUpdated broadcasts v. Views older than the last broadcast, and any
// view of a match that was already closed, are dropped.
func (h *Hub) SessionUpdated(_ context.Context, v session.View) {
	payload, err := json.Marshal(Message{Type: TypeSessionUpdate, MatchID: v.MatchID, Session: &v})
	if err != nil {
		slog.Error("Failed to encode session view", "matchID", v.MatchID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.closed[v.MatchID]; ok {
		return
	}
	f := h.feedLocked(v.MatchID)
	if v.Version < f.version {
		return
	}
	f.version = v.Version
	f.latest = payload
	h.broadcastLocked(v.MatchID, f, payload)
}

// SessionClosed sends a final message and disconnects every spectator of the match.
func (h *Hub) SessionClosed(_ context.Context, matchID string) {
	payload := closedMessage(matchID)

	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	for id, at := range h.closed {
		if now.Sub(at) > closedTTL {
			delete(h.closed, id)
		}
	}
	h.closed[matchID] = now

	f, ok := h.feeds[matchID]
	if !ok {
		return
	}
	h.broadcastLocked(matchID, f, payload)
	for c := range f.clients {
		close(c.send)
	}
	delete(h.feeds, matchID)
	slog.Info("Live feed closed", "matchID", matchID, "spectators", len(f.clients))
}

func closedMessage(matchID string) []byte {
	// A two-string envelope cannot fail to encode.
	payload, _ := json.Marshal(Message{Type: TypeSessionClosed, MatchID: matchID})
	return payload
}

func (h *Hub) broadcastLocked(matchID string, f *feed, payload []byte) {
	for c := range f.clients {
		select {
		case c.send <- payload:
		default:
			// Broadcasts never block; a full buffer disconnects the spectator.
			slog.Warn("Dropping slow spectator", "matchID", matchID)
			delete(f.clients, c)
			close(c.send)
		}
	}
}
