package driver

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/loop"
)

// Context is handed to App.Update on every fixed step.
type Context struct {
	// Input is the debounced input state. Poll it from Update.
	Input *input.Tracker

	sched     *loop.Scheduler
	logger    *log.Logger
	frameTime time.Duration
	exit      bool
}

// FrameTime returns the fixed delta of the current update.
func (c *Context) FrameTime() time.Duration {
	return c.frameTime
}

// TargetStep returns the configured update step.
func (c *Context) TargetStep() time.Duration {
	return c.sched.TargetStep()
}

// SetTargetStep sets the desired time between updates. It applies from the
// next idle tick.
func (c *Context) SetTargetStep(d time.Duration) error {
	return checked(c.logger, c.sched, c.sched.SetTargetStep(d))
}

// SetTargetFPS sets the desired update rate. It overrides the target step.
func (c *Context) SetTargetFPS(fps int) error {
	return checked(c.logger, c.sched, c.sched.SetTargetFPS(fps))
}

// MaxFrameTime returns the ceiling applied to a measured frame interval.
func (c *Context) MaxFrameTime() time.Duration {
	return c.sched.MaxFrameTime()
}

// SetMaxFrameTime sets the frame time ceiling. Real frames can take longer,
// but no more than this much time is simulated per idle tick.
func (c *Context) SetMaxFrameTime(d time.Duration) error {
	return checked(c.logger, c.sched, c.sched.SetMaxFrameTime(d))
}

// Stats returns the scheduler counters.
func (c *Context) Stats() loop.Stats {
	return c.sched.Stats()
}

// Exit asks the loop to stop after the current update. No render follows.
func (c *Context) Exit() {
	c.exit = true
}

// Exiting reports whether Exit was called.
func (c *Context) Exiting() bool {
	return c.exit
}
