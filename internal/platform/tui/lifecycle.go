package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/driver"
	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/registry"
)

// launchState is the host's view of the hosted app.
type launchState interface {
	launchState()
}

// uninitialized holds the app until the terminal reports its size.
type uninitialized struct {
	pending registry.App
}

// ready holds the running driver.
type ready struct {
	driver *driver.Driver[registry.App]
}

func (uninitialized) launchState() {}
func (ready) launchState()         {}

// launchConfig is what the launcher needs to build a driver.
type launchConfig struct {
	TargetStep   time.Duration
	MaxFrameTime time.Duration
	ScrollPolicy input.ScrollPolicy
	Window       core.WindowID
	User         string
	Seed         int64
	Logger       *log.Logger
}

// launcher defers building the driver until the surface exists.
type launcher struct {
	cfg   launchConfig
	state launchState
}

func newLauncher(app registry.App, cfg launchConfig) *launcher {
	return &launcher{cfg: cfg, state: uninitialized{pending: app}}
}

// Driver returns the running driver, or nil before the first resume.
func (l *launcher) Driver() *driver.Driver[registry.App] {
	if r, ok := l.state.(ready); ok {
		return r.driver
	}
	return nil
}

// Resume initializes the pending app for a surface of width x height and
// builds its driver. Later calls return the existing driver.
func (l *launcher) Resume(width, height int, now time.Time) (*driver.Driver[registry.App], error) {
	switch s := l.state.(type) {
	case ready:
		return s.driver, nil

	case uninitialized:
		rc := core.RuntimeConfig{
			ScreenW:    width,
			ScreenH:    height,
			TargetStep: l.cfg.TargetStep,
			Window:     l.cfg.Window,
			User:       l.cfg.User,
			Seed:       l.cfg.Seed,
		}
		if err := s.pending.Init(rc); err != nil {
			return nil, fmt.Errorf("tui: init %s: %w", s.pending.ID(), err)
		}

		d, err := driver.New(s.pending, driver.Options{
			TargetStep:   l.cfg.TargetStep,
			MaxFrameTime: l.cfg.MaxFrameTime,
			Window:       l.cfg.Window,
			ScrollPolicy: l.cfg.ScrollPolicy,
			Logger:       l.cfg.Logger,
			Start:        now,
		})
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}

		l.state = ready{driver: d}
		if l.cfg.Logger != nil {
			l.cfg.Logger.Debug("app started", "app", s.pending.ID(), "width", width, "height", height)
		}
		return d, nil
	}

	return nil, fmt.Errorf("tui: unknown launch state %T", l.state)
}
