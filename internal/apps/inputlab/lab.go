// Package inputlab implements a diagnostic app that shows the input tracker's
// state as the application sees it on every fixed update.
package inputlab

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/driver"
	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/registry"
)

// HistorySize is the number of recent edges kept on screen.
const HistorySize = 8

// Lab is the input diagnostic app.
type Lab struct {
	screen *core.Screen

	// Snapshot taken at the last update
	physical map[core.KeyCode]input.InputState
	logical  map[core.NamedKey]input.InputState
	buttons  map[core.MouseButton]input.InputState
	mods     core.KeyMods
	cursor   core.Vec2
	scroll   core.ScrollDelta

	history []string
	updates int
	focused bool
	events  int
}

// New creates a new lab instance.
func New() *Lab {
	return &Lab{focused: true}
}

// ID returns the unique identifier for this app.
func (l *Lab) ID() string {
	return "inputlab"
}

// Title returns the display name for this app.
func (l *Lab) Title() string {
	return "Input Lab"
}

// Init allocates the screen.
func (l *Lab) Init(cfg core.RuntimeConfig) error {
	if cfg.ScreenW <= 0 || cfg.ScreenH <= 0 {
		return fmt.Errorf("inputlab: invalid screen %dx%d", cfg.ScreenW, cfg.ScreenH)
	}
	l.screen = core.NewScreen(cfg.ScreenW, cfg.ScreenH)
	l.history = l.history[:0]
	l.updates = 0
	return nil
}

// HandleEvent counts raw events and follows focus and size changes.
func (l *Lab) HandleEvent(ev core.Event) error {
	switch e := ev.(type) {
	case core.IdleEvent:
		return nil
	case core.FocusEvent:
		l.focused = e.Focused
	case core.ResizedEvent:
		if l.screen != nil && e.Width > 0 && e.Height > 0 {
			l.screen.Resize(e.Width, e.Height)
		}
	}
	l.events++
	return nil
}

// Update snapshots the tracker and records new edges.
func (l *Lab) Update(ctx *driver.Context) error {
	in := ctx.Input
	l.updates++

	if in.IsLogicalKeyPressed(core.NamedEscape) {
		ctx.Exit()
		return nil
	}

	l.physical = in.PhysicalKeys()
	l.logical = in.LogicalKeys()
	l.buttons = in.MouseButtons()
	l.mods = in.KeyMods()
	l.cursor = in.CursorPos()
	l.scroll = in.MouseScroll()

	for _, k := range slices.Sorted(maps.Keys(l.physical)) {
		l.edge(k.String(), l.physical[k])
	}
	for _, b := range slices.Sorted(maps.Keys(l.buttons)) {
		l.edge("Mouse"+b.String(), l.buttons[b])
	}
	return nil
}

// edge appends a history line for Pressed and Released states.
func (l *Lab) edge(name string, s input.InputState) {
	if s == input.Down {
		return
	}
	l.history = append(l.history, fmt.Sprintf("#%d %s %s", l.updates, name, s))
	if len(l.history) > HistorySize {
		l.history = l.history[len(l.history)-HistorySize:]
	}
}

// Render draws the last snapshot.
func (l *Lab) Render(float64) error {
	s := l.screen
	s.Clear()

	y := 0
	line := func(text string, c core.Color) {
		s.DrawText(1, y, text, c)
		y++
	}

	focus := "focused"
	if !l.focused {
		focus = "unfocused"
	}
	line(fmt.Sprintf("INPUT LAB  update %d  events %d  %s  (esc to exit)", l.updates, l.events, focus), core.ColorCyan)
	y++

	line("keys:    "+formatStates(l.physical), core.ColorDefault)
	line("named:   "+formatStates(l.logical), core.ColorDefault)
	line("buttons: "+formatStates(l.buttons), core.ColorDefault)
	line("mods:    "+l.mods.String(), core.ColorYellow)
	line(fmt.Sprintf("cursor:  %.0f,%.0f", l.cursor.X, l.cursor.Y), core.ColorYellow)
	line("scroll:  "+l.scroll.String(), core.ColorYellow)
	y++

	line("recent:", core.ColorGray)
	for _, h := range l.history {
		line("  "+h, core.ColorGray)
	}

	// Cursor marker
	cx, cy := l.cursor.Cell()
	if cy >= y {
		s.SetColor(cx, cy, '+', core.ColorRed)
	}
	return nil
}

// formatStates renders a state map in key order, e.g. "A:down Space:pressed".
func formatStates[K interface {
	~int
	fmt.Stringer
}](m map[K]input.InputState) string {
	if len(m) == 0 {
		return "-"
	}
	out := ""
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if out != "" {
			out += " "
		}
		out += k.String() + ":" + m[k].String()
	}
	return out
}

// Frame returns the screen drawn by the last Render.
func (l *Lab) Frame() *core.Screen {
	return l.screen
}

// History returns the recorded edges, oldest first.
func (l *Lab) History() []string {
	return slices.Clone(l.history)
}

// Register the app with the global registry.
func init() {
	registry.Register("inputlab", func() registry.App {
		return New()
	})
}
