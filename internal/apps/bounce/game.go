// Package bounce implements a ball-and-paddle demo that shows fixed-step
// simulation with interpolated rendering.
// The ball integrates at the target step while frames are drawn at whatever
// rate the host ticks, blending between the last two simulated positions.
package bounce

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/driver"
	"github.com/vovakirdan/fixstep/internal/loop"
	"github.com/vovakirdan/fixstep/internal/registry"
)

// Tuning constants, in cells per second
const (
	BallSpeedX  = 30.0
	BallSpeedY  = 12.0
	PaddleSpeed = 45.0
	PaddleWidth = 10
)

// Update rate bounds for the +/- keys
const (
	MinFPS  = 10
	MaxFPS  = 240
	FPSStep = 10
)

// Visual characters
const (
	BallChar   = 'O'
	PaddleChar = '='
)

// hudRows is the number of screen rows above the playfield.
const hudRows = 1

// Game is the bounce demo.
type Game struct {
	cfg    core.RuntimeConfig
	screen *core.Screen
	rng    *rand.Rand

	// Playfield size in cells (the screen minus the HUD)
	fieldW float64
	fieldH float64

	ball     core.Vec2
	prevBall core.Vec2
	vel      core.Vec2

	paddleX     float64
	prevPaddleX float64

	paused  bool
	bounces int
	misses  int

	// Mirrored from the context on every update for the HUD
	step  time.Duration
	stats loop.Stats
}

// New creates a new bounce instance. Init must be called before use.
func New() *Game {
	return &Game{}
}

// ID returns the unique identifier for this app.
func (g *Game) ID() string {
	return "bounce"
}

// Title returns the display name for this app.
func (g *Game) Title() string {
	return "Bounce"
}

// Init sizes the playfield and serves the ball.
func (g *Game) Init(cfg core.RuntimeConfig) error {
	if cfg.ScreenW < PaddleWidth+2 || cfg.ScreenH < hudRows+4 {
		return fmt.Errorf("bounce: screen %dx%d is too small", cfg.ScreenW, cfg.ScreenH)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g.cfg = cfg
	g.rng = rand.New(rand.NewSource(seed))
	g.screen = core.NewScreen(cfg.ScreenW, cfg.ScreenH)
	g.step = cfg.TargetStep
	g.paused = false
	g.bounces = 0
	g.misses = 0
	g.resize(cfg.ScreenW, cfg.ScreenH)
	g.paddleX = (g.fieldW - PaddleWidth) / 2
	g.prevPaddleX = g.paddleX
	g.serve()
	return nil
}

// serve puts the ball in the middle of the field with a random horizontal
// direction.
func (g *Game) serve() {
	g.ball = core.Vec2{X: g.fieldW / 2, Y: g.fieldH / 3}
	g.prevBall = g.ball

	vx := BallSpeedX
	if g.rng.Intn(2) == 0 {
		vx = -vx
	}
	g.vel = core.Vec2{X: vx, Y: BallSpeedY}
}

func (g *Game) resize(w, h int) {
	g.fieldW = float64(w)
	g.fieldH = float64(h - hudRows)
	g.paddleX = core.ClampF(g.paddleX, 0, g.fieldW-PaddleWidth)
	g.prevPaddleX = g.paddleX
	g.ball.X = core.ClampF(g.ball.X, 0, g.fieldW-1)
	g.ball.Y = core.ClampF(g.ball.Y, 0, g.paddleRow()-1)
	g.prevBall = g.ball
}

// paddleRow is the field row the paddle occupies.
func (g *Game) paddleRow() float64 {
	return g.fieldH - 1
}

// HandleEvent follows terminal resizes.
func (g *Game) HandleEvent(ev core.Event) error {
	if r, ok := ev.(core.ResizedEvent); ok && g.screen != nil {
		if r.Width < PaddleWidth+2 || r.Height < hudRows+4 {
			return nil
		}
		g.screen.Resize(r.Width, r.Height)
		g.resize(r.Width, r.Height)
	}
	return nil
}

// Update advances the simulation by one fixed step.
func (g *Game) Update(ctx *driver.Context) error {
	in := ctx.Input

	if in.IsLogicalKeyPressed(core.NamedEscape) {
		ctx.Exit()
		return nil
	}

	if in.IsPhysicalKeyPressed(core.KeySpace) {
		g.paused = !g.paused
	}

	switch {
	case in.IsPhysicalKeyPressed(core.KeyEqual):
		if err := g.changeRate(ctx, FPSStep); err != nil {
			return err
		}
	case in.IsPhysicalKeyPressed(core.KeyMinus):
		if err := g.changeRate(ctx, -FPSStep); err != nil {
			return err
		}
	}

	g.step = ctx.TargetStep()
	g.stats = ctx.Stats()

	g.prevBall = g.ball
	g.prevPaddleX = g.paddleX

	if in.IsMouseButtonPressed(core.MouseLeft) {
		g.teleport(in.CursorPos())
	}

	if g.paused {
		return nil
	}

	dt := ctx.FrameTime().Seconds()

	// Paddle
	dir := 0.0
	if in.IsLogicalKeyDown(core.NamedArrowLeft) || in.IsPhysicalKeyDown(core.KeyA) {
		dir--
	}
	if in.IsLogicalKeyDown(core.NamedArrowRight) || in.IsPhysicalKeyDown(core.KeyD) {
		dir++
	}
	g.paddleX = core.ClampF(g.paddleX+dir*PaddleSpeed*dt, 0, g.fieldW-PaddleWidth)

	// Ball
	g.ball = g.ball.Add(g.vel.Scale(dt))

	if g.ball.X < 0 {
		g.ball.X = -g.ball.X
		g.vel.X = -g.vel.X
	}
	if right := g.fieldW - 1; g.ball.X > right {
		g.ball.X = 2*right - g.ball.X
		g.vel.X = -g.vel.X
	}
	if g.ball.Y < 0 {
		g.ball.Y = -g.ball.Y
		g.vel.Y = -g.vel.Y
	}

	if floor := g.paddleRow() - 1; g.ball.Y >= floor {
		if g.ball.X+1 >= g.paddleX && g.ball.X <= g.paddleX+PaddleWidth {
			g.ball.Y = 2*floor - g.ball.Y
			g.vel.Y = -g.vel.Y
			g.bounces++
		} else {
			g.misses++
			g.serve()
		}
	}

	return nil
}

// changeRate moves the target update rate by delta FPS within the bounds.
func (g *Game) changeRate(ctx *driver.Context, delta int) error {
	fps := int(time.Second/ctx.TargetStep()) + delta
	fps = max(MinFPS, min(MaxFPS, fps))
	if err := ctx.SetTargetFPS(fps); err != nil {
		return fmt.Errorf("bounce: %w", err)
	}
	return nil
}

// teleport moves the ball to a screen position without interpolating the jump.
func (g *Game) teleport(p core.Vec2) {
	g.ball = core.Vec2{
		X: core.ClampF(p.X, 0, g.fieldW-1),
		Y: core.ClampF(p.Y-hudRows, 0, g.paddleRow()-1),
	}
	g.prevBall = g.ball
}

// Render draws the state blended between the last two updates.
func (g *Game) Render(blend float64) error {
	s := g.screen
	s.Clear()

	hud := fmt.Sprintf(" %.0f fps  upd %d  rnd %d  blend %.2f  hits %d  miss %d",
		float64(time.Second)/float64(g.step), g.stats.Updates, g.stats.Renders,
		blend, g.bounces, g.misses)
	s.DrawText(0, 0, hud, core.ColorCyan)

	// Paddle
	px := int(g.prevPaddleX + (g.paddleX-g.prevPaddleX)*blend + 0.5)
	row := int(g.paddleRow()) + hudRows
	for i := range PaddleWidth {
		s.SetColor(px+i, row, PaddleChar, core.ColorGreen)
	}

	// Ball
	bx, by := g.prevBall.Lerp(g.ball, blend).Cell()
	s.SetColor(bx, by+hudRows, BallChar, core.ColorYellow)

	if g.paused {
		msg := "PAUSED"
		s.DrawText((s.Width()-len(msg))/2, s.Height()/2, msg, core.ColorMagenta)
	}

	return nil
}

// Frame returns the screen drawn by the last Render.
func (g *Game) Frame() *core.Screen {
	return g.screen
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Ball returns the simulated ball position in field coordinates.
func (g *Game) Ball() core.Vec2 {
	return g.ball
}

// PaddleX returns the paddle's left edge in field coordinates.
func (g *Game) PaddleX() float64 {
	return g.paddleX
}

// Register the app with the global registry.
func init() {
	registry.Register("bounce", func() registry.App {
		return New()
	})
}
