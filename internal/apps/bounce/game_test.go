package bounce

import (
	"testing"
	"time"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/driver"
	"github.com/vovakirdan/fixstep/internal/loop"
)

const step = 10 * time.Millisecond

var epoch = time.Unix(1_700_000_000, 0)

// harness drives a Game through a real driver on a synthetic clock.
type harness struct {
	t   *testing.T
	g   *Game
	d   *driver.Driver[*Game]
	now time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	g := New()
	cfg := core.DefaultConfig()
	cfg.TargetStep = step
	cfg.Seed = 42
	if err := g.Init(cfg); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	d, err := driver.New(g, driver.Options{
		TargetStep:   step,
		MaxFrameTime: 250 * time.Millisecond,
		Start:        epoch,
	})
	if err != nil {
		t.Fatalf("driver.New() failed: %v", err)
	}
	return &harness{t: t, g: g, d: d, now: epoch}
}

func (h *harness) send(ev core.Event) {
	h.t.Helper()
	if sig, err := h.d.ProcessEvent(ev); sig != loop.Continue || err != nil {
		h.t.Fatalf("ProcessEvent(%T) = %v, %v", ev, sig, err)
	}
}

// tick advances the clock by one step and runs one idle tick.
func (h *harness) tick() loop.Signal {
	h.t.Helper()
	h.now = h.now.Add(step)
	sig, err := h.d.AdvanceTick(h.now)
	if err != nil {
		h.t.Fatalf("AdvanceTick() error: %v", err)
	}
	return sig
}

func press(code core.KeyCode, logical core.LogicalKey) core.KeyEvent {
	return core.KeyEvent{Physical: code, Logical: logical, State: core.StatePressed}
}

func release(code core.KeyCode, logical core.LogicalKey) core.KeyEvent {
	return core.KeyEvent{Physical: code, Logical: logical, State: core.StateReleased}
}

func TestInitRejectsTinyScreen(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.ScreenW = 5
	if err := New().Init(cfg); err == nil {
		t.Error("Init() should fail for a 5-column screen")
	}
}

func TestBallMovesEachUpdate(t *testing.T) {
	h := newHarness(t)
	start := h.g.Ball()

	h.tick()

	moved := h.g.Ball()
	if moved == start {
		t.Fatal("ball did not move after one update")
	}
	dx := moved.X - start.X
	if dx < 0 {
		dx = -dx
	}
	if want := BallSpeedX * step.Seconds(); dx < want-1e-9 || dx > want+1e-9 {
		t.Errorf("ball moved %v horizontally, expected %v", dx, want)
	}
}

func TestSpaceTogglesPauseOnPress(t *testing.T) {
	h := newHarness(t)

	h.send(press(core.KeySpace, core.Character(" ")))
	h.tick()
	if !h.g.Paused() {
		t.Fatal("space press should pause")
	}

	// Holding the key must not toggle again
	frozen := h.g.Ball()
	h.tick()
	h.tick()
	if !h.g.Paused() {
		t.Error("held space toggled pause again")
	}
	if h.g.Ball() != frozen {
		t.Error("ball moved while paused")
	}

	h.send(release(core.KeySpace, core.Character(" ")))
	h.tick()
	h.send(press(core.KeySpace, core.Character(" ")))
	h.tick()
	if h.g.Paused() {
		t.Error("second press should resume")
	}
}

func TestEscapeExits(t *testing.T) {
	h := newHarness(t)

	h.send(press(core.KeyEscape, core.Named(core.NamedEscape)))
	if sig := h.tick(); sig != loop.Exit {
		t.Errorf("tick after escape = %v, expected exit", sig)
	}
}

func TestPlusMinusChangeRate(t *testing.T) {
	tests := []struct {
		name string
		key  core.KeyCode
		char string
		want time.Duration
	}{
		{"faster", core.KeyEqual, "=", time.Second / 110},
		{"slower", core.KeyMinus, "-", time.Second / 90},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)

			h.send(press(tc.key, core.Character(tc.char)))
			h.tick()
			if h.g.step != tc.want {
				t.Errorf("step = %v, expected %v", h.g.step, tc.want)
			}
		})
	}
}

func TestHeldArrowMovesPaddle(t *testing.T) {
	h := newHarness(t)
	start := h.g.PaddleX()

	h.send(press(core.KeyArrowLeft, core.Named(core.NamedArrowLeft)))
	h.tick()
	afterOne := h.g.PaddleX()
	h.tick()
	afterTwo := h.g.PaddleX()

	if !(afterOne < start && afterTwo < afterOne) {
		t.Errorf("paddle x = %v, %v, %v; expected to keep moving left while held", start, afterOne, afterTwo)
	}

	h.send(release(core.KeyArrowLeft, core.Named(core.NamedArrowLeft)))
	h.tick()
	h.tick()
	stopped := h.g.PaddleX()
	h.tick()
	if h.g.PaddleX() != stopped {
		t.Error("paddle kept moving after release")
	}
}

func TestPhysicalDMovesPaddleRight(t *testing.T) {
	h := newHarness(t)
	start := h.g.PaddleX()

	h.send(press(core.KeyD, core.Character("d")))
	h.tick()
	if h.g.PaddleX() <= start {
		t.Errorf("paddle x = %v, expected more than %v", h.g.PaddleX(), start)
	}
}

func TestClickTeleportsBall(t *testing.T) {
	h := newHarness(t)

	h.send(core.CursorMovedEvent{Position: core.Vec2{X: 5, Y: 6}})
	h.send(core.MouseButtonEvent{Button: core.MouseLeft, State: core.StatePressed})
	h.tick()

	// Teleported to field (5, 5), then moved one step
	if h.g.prevBall != (core.Vec2{X: 5, Y: 5}) {
		t.Errorf("ball teleported to %+v, expected {5 5}", h.g.prevBall)
	}
}

func TestRenderInterpolates(t *testing.T) {
	g := New()
	if err := g.Init(core.DefaultConfig()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	g.prevBall = core.Vec2{X: 10, Y: 4}
	g.ball = core.Vec2{X: 20, Y: 4}

	tests := []struct {
		blend float64
		x     int
	}{
		{0, 10},
		{0.5, 15},
		{0.99, 19},
	}

	for _, tc := range tests {
		if err := g.Render(tc.blend); err != nil {
			t.Fatalf("Render() failed: %v", err)
		}
		if r := g.Frame().Get(tc.x, 4+hudRows); r != BallChar {
			t.Errorf("blend %v: cell (%d, %d) = %q, expected ball", tc.blend, tc.x, 4+hudRows, r)
		}
	}
}

func TestResizeFollowsTerminal(t *testing.T) {
	h := newHarness(t)

	h.send(core.ResizedEvent{Width: 40, Height: 12})
	if w, hh := h.g.Frame().Width(), h.g.Frame().Height(); w != 40 || hh != 12 {
		t.Errorf("screen = %dx%d, expected 40x12", w, hh)
	}
	if x := h.g.PaddleX(); x < 0 || x > 40-PaddleWidth {
		t.Errorf("paddle x = %v, outside the resized field", x)
	}
}
