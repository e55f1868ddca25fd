package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cheildo/courtside/internal/scoring"
)

// Controller drives one match from team selection through live scoring.
//
// All methods are safe for concurrent use; calls are applied one at a time in
// the order they acquire the controller, which is the order rallies are scored.
// Observer and sink callbacks always run outside the lock.
type Controller struct {
	mu sync.Mutex

	id   string
	opts Options

	phase       Phase
	version     uint64
	teamA       scoring.Team
	teamB       scoring.Team
	firstServer scoring.Side

	clock      *scoring.Clock
	match      *scoring.Match
	stopTicker context.CancelFunc

	// notifyMu orders observer calls. A view older than the last one
	// delivered, or any view after the close, is never delivered.
	notifyMu     sync.Mutex
	notified     uint64
	closedSignal bool
}

// NewController creates a session in the Setup phase.
// Invalid scoring rules are rejected here rather than at the first rally.
func NewController(id string, opts Options) (*Controller, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		id:    id,
		opts:  opts,
		phase: PhaseSetup,
	}, nil
}

// ID returns the match identifier.
func (c *Controller) ID() string {
	return c.id
}

// SetTeams fixes both pairs in their starting court order and moves to the Toss phase.
func (c *Controller) SetTeams(teamA, teamB scoring.Team) (View, error) {
	c.mu.Lock()
	if c.phase != PhaseSetup {
		c.mu.Unlock()
		return View{}, fmt.Errorf("set teams in %s phase: %w", c.phase, ErrWrongPhase)
	}
	if err := validateTeams(teamA, teamB); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	c.teamA, c.teamB = teamA, teamB
	c.phase = PhaseToss
	c.touchLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	slog.Info("Teams selected", "matchID", c.id, "teamA", playerIDs(teamA), "teamB", playerIDs(teamB))
	c.notify(view)
	return view, nil
}

// Toss records which side serves first and starts live scoring.
// The first server is never derived again after this call.
func (c *Controller) Toss(firstServer scoring.Side) (View, error) {
	c.mu.Lock()
	if c.phase != PhaseToss {
		c.mu.Unlock()
		return View{}, fmt.Errorf("toss in %s phase: %w", c.phase, ErrWrongPhase)
	}
	clock := scoring.NewClock(c.opts.Now)
	match, err := scoring.NewMatch(c.opts.Rules, c.teamA, c.teamB, firstServer, clock)
	if err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	c.firstServer = firstServer
	c.clock = clock
	c.match = match
	c.phase = PhaseLive
	clock.Start()
	c.startTickerLocked()
	c.touchLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	slog.Info("Match started", "matchID", c.id, "firstServer", firstServer)
	c.notify(view)
	return view, nil
}

// AddPoint scores a rally for side. Once the match completes the result is
// handed to the sink and further calls return scoring.ErrMatchComplete.
func (c *Controller) AddPoint(side scoring.Side) (View, error) {
	c.mu.Lock()
	if err := c.requireLiveLocked("add point"); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	res, err := c.match.AddPoint(side)
	if err != nil {
		c.mu.Unlock()
		return View{}, err
	}

	var outcome *Outcome
	if res != nil {
		outcome = &Outcome{
			MatchID:     c.id,
			TeamA:       c.teamA,
			TeamB:       c.teamB,
			Result:      *res,
			CompletedAt: c.opts.Now().UTC(),
		}
		c.phase = PhaseFinished
		c.stopTickerLocked()
	}
	c.touchLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	c.notify(view)
	if outcome != nil {
		slog.Info("Match complete", "matchID", c.id, "winner", outcome.Result.Winner, "durationSeconds", outcome.Result.DurationSeconds)
		c.handOff(*outcome)
		c.closed()
	}
	return view, nil
}

// Undo reverts the last rally. It reports false when there was nothing to undo.
func (c *Controller) Undo() (View, bool, error) {
	c.mu.Lock()
	if err := c.requireLiveLocked("undo"); err != nil {
		c.mu.Unlock()
		return View{}, false, err
	}
	undone := c.match.Undo()
	if !undone {
		view := c.viewLocked()
		c.mu.Unlock()
		return view, false, nil
	}
	c.touchLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	c.notify(view)
	return view, true, nil
}

// Pause freezes the match clock.
func (c *Controller) Pause() (View, error) {
	return c.withClock("pause", (*scoring.Clock).Pause)
}

// Resume restarts a paused match clock.
func (c *Controller) Resume() (View, error) {
	return c.withClock("resume", (*scoring.Clock).Resume)
}

func (c *Controller) withClock(action string, fn func(*scoring.Clock)) (View, error) {
	c.mu.Lock()
	if err := c.requireLiveLocked(action); err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	fn(c.clock)
	c.touchLocked()
	view := c.viewLocked()
	c.mu.Unlock()

	c.notify(view)
	return view, nil
}

// Exit abandons the session. Nothing is persisted and the clock is stopped.
// Exiting a finished or already exited session changes nothing.
func (c *Controller) Exit() View {
	c.mu.Lock()
	if c.phase != PhaseFinished && c.phase != PhaseExited {
		slog.Info("Match abandoned", "matchID", c.id, "phase", c.phase)
		c.phase = PhaseExited
		c.touchLocked()
	}
	c.stopTickerLocked()
	if c.clock != nil {
		c.clock.Stop()
	}
	view := c.viewLocked()
	c.mu.Unlock()

	c.closed()
	return view
}

// View returns the current session state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) requireLiveLocked(action string) error {
	switch c.phase {
	case PhaseLive:
		return nil
	case PhaseFinished:
		return scoring.ErrMatchComplete
	default:
		return fmt.Errorf("%s in %s phase: %w", action, c.phase, ErrWrongPhase)
	}
}

// touchLocked marks a state change. Clock ticks alone do not bump the version.
func (c *Controller) touchLocked() {
	c.version++
}

func (c *Controller) viewLocked() View {
	v := View{
		MatchID:     c.id,
		Phase:       c.phase,
		Version:     c.version,
		TeamA:       c.teamA,
		TeamB:       c.teamB,
		FirstServer: c.firstServer,
		CanSetTeams: c.phase == PhaseSetup,
		CanToss:     c.phase == PhaseToss,
	}
	if c.match != nil {
		mv := c.match.View()
		v.Match = &mv
	}
	return v
}

// startTickerLocked pushes a fresh view to observers every tick so live
// clocks keep moving between rallies.
func (c *Controller) startTickerLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopTicker = cancel

	ticker := time.NewTicker(c.opts.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.phase != PhaseLive {
					c.mu.Unlock()
					return
				}
				view := c.viewLocked()
				c.mu.Unlock()
				c.notify(view)
			}
		}
	}()
}

func (c *Controller) stopTickerLocked() {
	if c.stopTicker != nil {
		c.stopTicker()
		c.stopTicker = nil
	}
}

func (c *Controller) notify(view View) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if c.closedSignal || view.Version < c.notified {
		return
	}
	c.notified = view.Version

	for _, o := range c.opts.Observers {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		o.SessionUpdated(ctx, view)
		cancel()
	}
}

// closed tells observers the session is over. Only the first call has an effect.
func (c *Controller) closed() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if c.closedSignal {
		return
	}
	c.closedSignal = true

	for _, o := range c.opts.Observers {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		o.SessionClosed(ctx, c.id)
		cancel()
	}
}

// handOff gives the outcome to the sink without waiting for it.
func (c *Controller) handOff(outcome Outcome) {
	if c.opts.Sink == nil {
		slog.Warn("No result sink configured, match result dropped", "matchID", outcome.MatchID)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), handoffTimeout)
		defer cancel()
		if err := c.opts.Sink.Submit(ctx, outcome); err != nil {
			slog.Error("Failed to hand off match result", "matchID", outcome.MatchID, "error", err)
		}
	}()
}

func validateTeams(teamA, teamB scoring.Team) error {
	if !teamA.Complete() || !teamB.Complete() {
		return ErrIncompleteTeams
	}
	seen := make(map[string]struct{}, 4)
	for _, p := range [...]scoring.Player{teamA[0], teamA[1], teamB[0], teamB[1]} {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func playerIDs(t scoring.Team) []string {
	return []string{t[0].ID, t[1].ID}
}
