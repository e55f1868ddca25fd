package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks the sessions hosted by this process, one per court.
// A session that finishes or exits is dropped once Options.Retention has passed.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
	opts     Options
}

// NewRegistry returns a registry whose sessions all share opts.
func NewRegistry(opts Options) (*Registry, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	return &Registry{
		sessions: make(map[string]*Controller),
		opts:     opts,
	}, nil
}

// Create opens a new session in the Setup phase under a fresh match ID.
func (r *Registry) Create() (*Controller, error) {
	id := uuid.NewString()
	opts := r.opts
	opts.Observers = append(append([]Observer(nil), r.opts.Observers...), evictor{r})
	c, err := NewController(id, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[id] = c
	r.mu.Unlock()

	slog.Info("Session created", "matchID", id)
	return c, nil
}

// Get returns the session for matchID.
func (r *Registry) Get(matchID string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[matchID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// Close exits the session and forgets it. A finished match keeps its
// persisted result; an unfinished one is discarded.
func (r *Registry) Close(matchID string) (View, error) {
	r.mu.Lock()
	c, ok := r.sessions[matchID]
	delete(r.sessions, matchID)
	r.mu.Unlock()
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return c.Exit(), nil
}

// List returns a view of every hosted session ordered by match ID.
func (r *Registry) List() []View {
	r.mu.RLock()
	controllers := make([]*Controller, 0, len(r.sessions))
	for _, c := range r.sessions {
		controllers = append(controllers, c)
	}
	r.mu.RUnlock()

	views := make([]View, 0, len(controllers))
	for _, c := range controllers {
		views = append(views, c.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].MatchID < views[j].MatchID })
	return views
}

// Shutdown exits every session. Used on process shutdown so no ticker outlives the server.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	controllers := r.sessions
	r.sessions = make(map[string]*Controller)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Exit()
	}
}

// evict forgets a closed session once its retention has passed.
func (r *Registry) evict(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[matchID]
	if !ok {
		return
	}
	if p := c.Phase(); p != PhaseFinished && p != PhaseExited {
		return
	}
	delete(r.sessions, matchID)
	slog.Info("Closed session evicted", "matchID", matchID)
}

// evictor schedules removal of sessions that finish without an explicit Close.
type evictor struct {
	r *Registry
}

func (evictor) SessionUpdated(context.Context, View) {}

func (e evictor) SessionClosed(_ context.Context, matchID string) {
	time.AfterFunc(e.r.opts.Retention, func() { e.r.evict(matchID) })
}
