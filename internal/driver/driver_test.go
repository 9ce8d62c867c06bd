package driver

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/loop"
)

var epoch = time.Unix(1_700_000_000, 0)

// fakeApp records what the driver asked of it.
type fakeApp struct {
	updates   int
	renders   int
	blends    []float64
	seen      []input.InputState // state of KeySpace at each update
	events    []core.Event
	exitAfter int
	updateErr error
	renderErr error
	handleErr error
	onUpdate  func(ctx *Context)
}

func (a *fakeApp) Update(ctx *Context) error {
	a.updates++
	if s, ok := ctx.Input.PhysicalKey(core.KeySpace); ok {
		a.seen = append(a.seen, s)
	}
	if a.onUpdate != nil {
		a.onUpdate(ctx)
	}
	if a.exitAfter != 0 && a.updates >= a.exitAfter {
		ctx.Exit()
	}
	return a.updateErr
}

func (a *fakeApp) Render(blend float64) error {
	a.renders++
	a.blends = append(a.blends, blend)
	return a.renderErr
}

func (a *fakeApp) HandleEvent(ev core.Event) error {
	a.events = append(a.events, ev)
	return a.handleErr
}

// renderOnly has no event handler.
type renderOnly struct{ renders int }

func (r *renderOnly) Update(*Context) error { return nil }
func (r *renderOnly) Render(float64) error  { r.renders++; return nil }

func newDriver(t *testing.T, app *fakeApp, window core.WindowID) *Driver[*fakeApp] {
	t.Helper()
	d, err := New(app, Options{
		TargetStep:   10 * time.Millisecond,
		MaxFrameTime: 100 * time.Millisecond,
		Window:       window,
		Start:        epoch,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d
}

// mustContinue returns a checker so it can wrap two-value calls directly:
// mustContinue(t)(d.ProcessEvent(ev)).
func mustContinue(t *testing.T) func(loop.Signal, error) {
	t.Helper()
	return func(sig loop.Signal, err error) {
		t.Helper()
		if sig != loop.Continue || err != nil {
			t.Fatalf("got %v, %v; expected continue", sig, err)
		}
	}
}

func TestNewRejectsInvalidTiming(t *testing.T) {
	_, err := New(&fakeApp{}, Options{TargetStep: 0, MaxFrameTime: time.Second})
	if !errors.Is(err, loop.ErrInvalidTiming) {
		t.Errorf("New() err = %v, expected ErrInvalidTiming", err)
	}
}

func TestTickDrivesUpdateAndRender(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 0)

	sig, err := d.AdvanceTick(epoch.Add(35 * time.Millisecond))
	mustContinue(t)(sig, err)

	if app.updates != 3 || app.renders != 3 {
		t.Errorf("updates=%d renders=%d, expected 3 each", app.updates, app.renders)
	}
	if got := app.blends[0]; got != 0.5 {
		t.Errorf("blend = %v, expected 0.5", got)
	}
	if _, ok := app.events[0].(core.IdleEvent); !ok {
		t.Errorf("first event = %T, expected the idle notification", app.events[0])
	}
	if got := d.Stats(); got.Updates != 3 || got.Renders != 3 || got.Ticks != 1 {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestInputEdgesAcrossTicks(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 0)
	now := epoch

	tick := func() {
		now = now.Add(10 * time.Millisecond)
		sig, err := d.AdvanceTick(now)
		mustContinue(t)(sig, err)
	}

	mustContinue(t)(d.ProcessEvent(core.KeyEvent{Physical: core.KeySpace, State: core.StatePressed}))
	tick()
	tick()
	tick()
	mustContinue(t)(d.ProcessEvent(core.KeyEvent{Physical: core.KeySpace, State: core.StateReleased}))
	tick()
	tick()

	expected := []input.InputState{input.Pressed, input.Down, input.Down, input.Released}
	if len(app.seen) != len(expected) {
		t.Fatalf("seen = %v, expected %v", app.seen, expected)
	}
	for i := range expected {
		if app.seen[i] != expected[i] {
			t.Fatalf("seen = %v, expected %v", app.seen, expected)
		}
	}
}

func TestCatchUpDecaysOnce(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 0)

	mustContinue(t)(d.ProcessEvent(core.KeyEvent{Physical: core.KeySpace, State: core.StatePressed}))
	sig, err := d.AdvanceTick(epoch.Add(30 * time.Millisecond))
	mustContinue(t)(sig, err)

	// Decay runs after the first update only.
	expected := []input.InputState{input.Pressed, input.Down, input.Down}
	for i := range expected {
		if app.seen[i] != expected[i] {
			t.Fatalf("seen = %v, expected %v", app.seen, expected)
		}
	}
}

func TestCloseRequested(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 7)

	// Another window's close request does not stop this loop.
	mustContinue(t)(d.ProcessEvent(core.CloseRequestedEvent{WindowID: 9}))

	sig, err := d.ProcessEvent(core.CloseRequestedEvent{WindowID: 7})
	if sig != loop.Exit || err != nil {
		t.Fatalf("ProcessEvent(close) = %v, %v; expected exit", sig, err)
	}

	sig, _ = d.AdvanceTick(epoch.Add(time.Second))
	if sig != loop.Exit {
		t.Errorf("AdvanceTick after close = %v, expected exit", sig)
	}
	if app.updates != 0 {
		t.Errorf("updates = %d after close, expected 0", app.updates)
	}
}

func TestWindowFilter(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 1)

	mustContinue(t)(d.ProcessEvent(core.KeyEvent{WindowID: 2, Physical: core.KeyA}))
	mustContinue(t)(d.ProcessEvent(core.KeyEvent{WindowID: 1, Physical: core.KeyB}))

	if d.Input().IsPhysicalKeyPressed(core.KeyA) {
		t.Error("foreign window input must not reach the tracker")
	}
	if !d.Input().IsPhysicalKeyPressed(core.KeyB) {
		t.Error("own window input should reach the tracker")
	}
	if len(app.events) != 2 {
		t.Errorf("handler saw %d events, expected both", len(app.events))
	}
}

func TestExitLatches(t *testing.T) {
	app := &fakeApp{exitAfter: 2}
	d := newDriver(t, app, 0)

	sig, err := d.AdvanceTick(epoch.Add(50 * time.Millisecond))
	if sig != loop.Exit || err != nil {
		t.Fatalf("AdvanceTick() = %v, %v; expected exit", sig, err)
	}
	if app.updates != 2 || app.renders != 1 {
		t.Errorf("updates=%d renders=%d, expected 2 and 1", app.updates, app.renders)
	}

	sig, _ = d.AdvanceTick(epoch.Add(100 * time.Millisecond))
	if sig != loop.Exit || app.updates != 2 {
		t.Errorf("loop kept running after exit: %v, updates=%d", sig, app.updates)
	}
	if sig, _ := d.ProcessEvent(core.ResizedEvent{}); sig != loop.Exit {
		t.Errorf("ProcessEvent after exit = %v, expected exit", sig)
	}
	if done, _ := d.Done(); done != loop.Exit {
		t.Errorf("Done() = %v, expected exit", done)
	}
}

func TestApplicationErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		app  *fakeApp
		tick bool
	}{
		{"update error", &fakeApp{updateErr: boom}, true},
		{"render error", &fakeApp{renderErr: boom}, true},
		{"handler error on tick", &fakeApp{handleErr: boom}, true},
		{"handler error on event", &fakeApp{handleErr: boom}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newDriver(t, tc.app, 0)

			var sig loop.Signal
			var err error
			if tc.tick {
				sig, err = d.AdvanceTick(epoch.Add(20 * time.Millisecond))
			} else {
				sig, err = d.ProcessEvent(core.FocusEvent{Focused: true})
			}
			if sig != loop.Failed || !errors.Is(err, boom) {
				t.Fatalf("got %v, %v; expected failed with boom", sig, err)
			}

			renders := tc.app.renders
			sig, err = d.AdvanceTick(epoch.Add(time.Second))
			if sig != loop.Failed || !errors.Is(err, boom) {
				t.Errorf("failure should latch, got %v, %v", sig, err)
			}
			if tc.app.renders != renders {
				t.Error("no render may run after a failure")
			}
		})
	}
}

func TestContextSetters(t *testing.T) {
	app := &fakeApp{}
	app.onUpdate = func(ctx *Context) {
		if ctx.FrameTime() != 10*time.Millisecond {
			t.Errorf("FrameTime() = %v, expected 10ms", ctx.FrameTime())
		}
		if err := ctx.SetTargetFPS(50); err != nil {
			t.Errorf("SetTargetFPS() failed: %v", err)
		}
		if err := ctx.SetMaxFrameTime(-1); err == nil {
			t.Error("SetMaxFrameTime(-1) should fail")
		}
	}
	d := newDriver(t, app, 0)

	sig, err := d.AdvanceTick(epoch.Add(10 * time.Millisecond))
	mustContinue(t)(sig, err)

	if got := d.sched.TargetStep(); got != 20*time.Millisecond {
		t.Errorf("TargetStep() = %v, expected 20ms", got)
	}
	if got := d.sched.MaxFrameTime(); got != 100*time.Millisecond {
		t.Errorf("MaxFrameTime() = %v, expected unchanged 100ms", got)
	}
}

func TestTimingWarning(t *testing.T) {
	tests := []struct {
		name   string
		limit  time.Duration
		change func(d *Driver[*fakeApp]) error
		warn   bool
	}{
		{"at construction", 5 * time.Millisecond, func(*Driver[*fakeApp]) error { return nil }, true},
		{"consistent timing", 100 * time.Millisecond, func(*Driver[*fakeApp]) error { return nil }, false},
		{"driver max frame time", 100 * time.Millisecond, func(d *Driver[*fakeApp]) error {
			return d.SetMaxFrameTime(5 * time.Millisecond)
		}, true},
		{"driver target step", 100 * time.Millisecond, func(d *Driver[*fakeApp]) error {
			return d.SetTargetStep(200 * time.Millisecond)
		}, true},
		{"context target fps", 100 * time.Millisecond, func(d *Driver[*fakeApp]) error {
			return d.ctx.SetTargetFPS(5)
		}, true},
		{"context max frame time still above step", 100 * time.Millisecond, func(d *Driver[*fakeApp]) error {
			return d.ctx.SetMaxFrameTime(50 * time.Millisecond)
		}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			d, err := New(&fakeApp{}, Options{
				TargetStep:   10 * time.Millisecond,
				MaxFrameTime: tc.limit,
				Logger:       log.New(&buf),
				Start:        epoch,
			})
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if err := tc.change(d); err != nil {
				t.Fatalf("setter failed: %v", err)
			}
			if got := strings.Contains(buf.String(), "max frame time is shorter"); got != tc.warn {
				t.Errorf("warned = %v, expected %v; log: %q", got, tc.warn, buf.String())
			}
		})
	}
}

func TestFailedSetterDoesNotWarn(t *testing.T) {
	var buf bytes.Buffer
	d, err := New(&fakeApp{}, Options{
		TargetStep:   10 * time.Millisecond,
		MaxFrameTime: 100 * time.Millisecond,
		Logger:       log.New(&buf),
		Start:        epoch,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := d.SetMaxFrameTime(-1); !errors.Is(err, loop.ErrInvalidTiming) {
		t.Errorf("SetMaxFrameTime(-1) err = %v, expected ErrInvalidTiming", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %q", buf.String())
	}
}

func TestDriverWithoutHandler(t *testing.T) {
	app := &renderOnly{}
	d, err := New(app, Options{TargetStep: time.Millisecond, MaxFrameTime: time.Second, Start: epoch})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	mustContinue(t)(d.ProcessEvent(core.ResumedEvent{}))
	sig, err := d.AdvanceTick(epoch.Add(3 * time.Millisecond))
	mustContinue(t)(sig, err)
	if app.renders != 3 {
		t.Errorf("renders = %d, expected 3", app.renders)
	}
}

func TestResumeSkipsSuspendedTime(t *testing.T) {
	app := &fakeApp{}
	d := newDriver(t, app, 0)

	d.Resume(epoch.Add(time.Hour))
	sig, err := d.AdvanceTick(epoch.Add(time.Hour + 5*time.Millisecond))
	mustContinue(t)(sig, err)
	if app.updates != 0 {
		t.Errorf("updates = %d, expected 0 after resume", app.updates)
	}
}
