// Package driver composes the input tracker and the frame scheduler under a
// host. The host delivers raw events through ProcessEvent and idle ticks
// through AdvanceTick; the driver calls the application's Update and Render
// and reports when the host should stop.
package driver

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/loop"
)

// App is the callback set the driver runs.
type App interface {
	// Update advances the simulation by ctx.FrameTime().
	Update(ctx *Context) error
	// Render draws the state. blend in [0, 1) is the fraction of a step
	// elapsed since the last update.
	Render(blend float64) error
}

// EventHandler is implemented by apps that want every raw event, including
// events the input tracker ignores.
type EventHandler interface {
	HandleEvent(ev core.Event) error
}

// Options configures a Driver.
type Options struct {
	TargetStep   time.Duration
	MaxFrameTime time.Duration
	// Window restricts input and close handling to one window. Zero accepts
	// events from any window.
	Window       core.WindowID
	ScrollPolicy input.ScrollPolicy
	Logger       *log.Logger
	// Start anchors the first frame measurement. Zero means time.Now().
	Start time.Time
}

// Driver runs an App on top of a host event loop.
// All methods must be called from the host's event goroutine.
type Driver[A App] struct {
	app     A
	handler EventHandler
	ctx     *Context
	sched   *loop.Scheduler
	window  core.WindowID
	logger  *log.Logger

	// done latches Exit or Failed; nothing runs after it is set.
	done    loop.Signal
	doneErr error
}

// New creates a driver for app. It fails with a *loop.ConfigError when the
// timing options are not positive.
func New[A App](app A, opts Options) (*Driver[A], error) {
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	sched, err := loop.NewScheduler(opts.TargetStep, opts.MaxFrameTime, start)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	warnTiming(logger, sched)

	d := &Driver[A]{
		app:    app,
		sched:  sched,
		window: opts.Window,
		logger: logger,
		ctx: &Context{
			Input:  input.NewTracker(input.WithScrollPolicy(opts.ScrollPolicy)),
			sched:  sched,
			logger: logger,
		},
		done: loop.Continue,
	}
	if h, ok := any(app).(EventHandler); ok {
		d.handler = h
	}
	return d, nil
}

// App returns the driven application.
func (d *Driver[A]) App() A {
	return d.app
}

// Input returns the input tracker.
func (d *Driver[A]) Input() *input.Tracker {
	return d.ctx.Input
}

// Stats returns the scheduler counters.
func (d *Driver[A]) Stats() loop.Stats {
	return d.sched.Stats()
}

// Done returns the latched terminal signal and error, or Continue while the
// loop is running.
func (d *Driver[A]) Done() (loop.Signal, error) {
	return d.done, d.doneErr
}

// TargetStep returns the current update step.
func (d *Driver[A]) TargetStep() time.Duration {
	return d.sched.TargetStep()
}

// SetTargetStep changes the update step between ticks.
func (d *Driver[A]) SetTargetStep(step time.Duration) error {
	return checked(d.logger, d.sched, d.sched.SetTargetStep(step))
}

// SetMaxFrameTime changes the frame time ceiling between ticks.
func (d *Driver[A]) SetMaxFrameTime(limit time.Duration) error {
	return checked(d.logger, d.sched, d.sched.SetMaxFrameTime(limit))
}

// warnTiming logs when a frame can simulate less than one step.
func warnTiming(logger *log.Logger, sched *loop.Scheduler) {
	step, limit := sched.TargetStep(), sched.MaxFrameTime()
	if limit < step {
		logger.Warn("max frame time is shorter than the target step; the simulation will fall behind",
			"target_step", step, "max_frame_time", limit)
	}
}

// checked passes err through, warning about the new timing when a setter
// succeeded.
func checked(logger *log.Logger, sched *loop.Scheduler, err error) error {
	if err == nil {
		warnTiming(logger, sched)
	}
	return err
}

// Resume re-anchors the frame clock after the host was suspended.
func (d *Driver[A]) Resume(now time.Time) {
	d.sched.Reset(now)
}

// ProcessEvent feeds one raw event to the input tracker and the app's
// handler. It returns Exit when the driven window asked to close.
func (d *Driver[A]) ProcessEvent(ev core.Event) (loop.Signal, error) {
	if d.done != loop.Continue {
		return d.done, d.doneErr
	}

	own := d.window == 0 || ev.Window() == 0 || ev.Window() == d.window
	if own {
		d.ctx.Input.ProcessEvent(ev)
	}

	if err := d.handle(ev); err != nil {
		return d.finish(loop.Failed, err)
	}

	if _, ok := ev.(core.CloseRequestedEvent); ok && own {
		d.logger.Debug("close requested", "window", ev.Window())
		return d.finish(loop.Exit, nil)
	}
	return loop.Continue, nil
}

// AdvanceTick runs one idle tick: zero or more fixed updates, each followed
// by a render.
func (d *Driver[A]) AdvanceTick(now time.Time) (loop.Signal, error) {
	if d.done != loop.Continue {
		return d.done, d.doneErr
	}
	if err := d.handle(core.IdleEvent{}); err != nil {
		return d.finish(loop.Failed, err)
	}

	sig, err := d.sched.Advance(now, hooks[A]{d})
	if sig != loop.Continue {
		return d.finish(sig, err)
	}
	return loop.Continue, nil
}

func (d *Driver[A]) handle(ev core.Event) error {
	if d.handler == nil {
		return nil
	}
	return d.handler.HandleEvent(ev)
}

func (d *Driver[A]) finish(sig loop.Signal, err error) (loop.Signal, error) {
	if err != nil {
		d.logger.Error("application error", "error", err)
	}
	d.done = sig
	d.doneErr = err
	return sig, err
}

// hooks adapts the driver to loop.Hooks.
type hooks[A App] struct {
	d *Driver[A]
}

func (h hooks[A]) Update(step time.Duration) (bool, error) {
	ctx := h.d.ctx
	ctx.frameTime = step
	if err := h.d.app.Update(ctx); err != nil {
		return false, err
	}
	return ctx.exit, nil
}

func (h hooks[A]) Decay() {
	h.d.ctx.Input.UpdateKeys()
}

func (h hooks[A]) Render(blend float64) error {
	return h.d.app.Render(blend)
}
