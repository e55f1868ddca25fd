package scoring

import (
	"fmt"
	"time"
)

// Clock measures match time with pause support.
//
// Clock does not run a goroutine; elapsed time is derived from the time
// source whenever it is read. Owners that need a periodic tick drive one
// themselves and must stop it together with the clock.
type Clock struct {
	now func() time.Time

	started bool
	running bool
	stopped bool

	accumulated time.Duration
	since       time.Time
}

// NewClock returns a stopped clock reading from now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Start begins counting. Calling it more than once, or after Stop, has no effect.
func (c *Clock) Start() {
	if c.started || c.stopped {
		return
	}
	c.started = true
	c.running = true
	c.since = c.now()
}

// Pause freezes the counter at its current value.
func (c *Clock) Pause() {
	if !c.running {
		return
	}
	c.accumulated += c.now().Sub(c.since)
	c.running = false
}

// Resume continues counting from the paused value.
func (c *Clock) Resume() {
	if !c.started || c.running || c.stopped {
		return
	}
	c.running = true
	c.since = c.now()
}

// Stop freezes the clock permanently.
func (c *Clock) Stop() {
	c.Pause()
	c.stopped = true
}

// Running reports whether the clock is currently counting.
func (c *Clock) Running() bool {
	return c.running
}

// Stopped reports whether Stop has been called.
func (c *Clock) Stopped() bool {
	return c.stopped
}

// Elapsed returns the total counted duration.
func (c *Clock) Elapsed() time.Duration {
	if c.running {
		return c.accumulated + c.now().Sub(c.since)
	}
	return c.accumulated
}

// ElapsedSeconds returns the elapsed time truncated to whole seconds.
func (c *Clock) ElapsedSeconds() int {
	return int(c.Elapsed() / time.Second)
}

// String renders the elapsed time as MM:SS.
func (c *Clock) String() string {
	return FormatElapsed(c.ElapsedSeconds())
}

// FormatElapsed renders seconds as zero-padded MM:SS. Minutes do not roll into hours.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
