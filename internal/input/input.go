// Package input turns the host's edge-triggered key and button notifications
// into a per-control tri-state model (pressed, down, released) that
// application code polls once per fixed update.
//
// A control reads Pressed during exactly one update after its physical press,
// Down while it stays held, and Released during exactly one update after its
// physical release. Afterwards it is absent from the maps again. The transition
// is driven by UpdateKeys, which the frame loop calls once per idle tick that
// ran at least one update.
package input

import (
	"maps"

	"github.com/vovakirdan/fixstep/internal/core"
)

// InputState is the phase of a tracked key or mouse button.
type InputState int

const (
	// Pressed means the control has just been pressed.
	Pressed InputState = iota
	// Down means the control is being held.
	Down
	// Released means the control has just been released. It does not mean
	// the control is merely up.
	Released
)

// IsPressed reports whether the state is Pressed.
func (s InputState) IsPressed() bool {
	return s == Pressed
}

// IsAnyDown reports whether the state is Pressed or Down.
func (s InputState) IsAnyDown() bool {
	return s == Pressed || s == Down
}

// IsReleased reports whether the state is Released.
func (s InputState) IsReleased() bool {
	return s == Released
}

func (s InputState) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Down:
		return "down"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

func stateOf(s core.ElementState) InputState {
	if s == core.StatePressed {
		return Pressed
	}
	return Released
}

// ScrollPolicy decides how several scroll events within one tick combine.
type ScrollPolicy int

const (
	// ScrollAccumulate sums deltas of the same unit; a delta in a different
	// unit replaces the pending one.
	ScrollAccumulate ScrollPolicy = iota
	// ScrollLatest keeps only the most recent delta.
	ScrollLatest
)

// ParseScrollPolicy maps "accumulate" and "latest" to a policy.
func ParseScrollPolicy(s string) (ScrollPolicy, bool) {
	switch s {
	case "", "accumulate":
		return ScrollAccumulate, true
	case "latest":
		return ScrollLatest, true
	}
	return ScrollAccumulate, false
}

func (p ScrollPolicy) String() string {
	if p == ScrollLatest {
		return "latest"
	}
	return "accumulate"
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithScrollPolicy sets how scroll events within a tick are combined.
func WithScrollPolicy(p ScrollPolicy) Option {
	return func(t *Tracker) {
		t.scrollPolicy = p
	}
}

// Tracker holds the debounced view of raw input.
// It is owned by a single goroutine and is not safe for concurrent use.
type Tracker struct {
	mods         core.KeyMods
	physicalKeys map[core.KeyCode]InputState
	logicalKeys  map[core.NamedKey]InputState
	mouseButtons map[core.MouseButton]InputState
	cursorPos    core.Vec2
	mouseScroll  core.ScrollDelta
	scrollPolicy ScrollPolicy
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		physicalKeys: make(map[core.KeyCode]InputState),
		logicalKeys:  make(map[core.NamedKey]InputState),
		mouseButtons: make(map[core.MouseButton]InputState),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ProcessEvent folds one raw notification into the tracker.
// Unknown event kinds are ignored.
func (t *Tracker) ProcessEvent(ev core.Event) {
	switch ev := ev.(type) {
	case core.KeyEvent:
		// Only the first physical transition counts: auto-repeat would
		// otherwise turn a held key back into Pressed.
		if ev.Repeat || ev.Synthetic {
			return
		}
		state := stateOf(ev.State)
		if ev.Physical != core.KeyUnidentified {
			t.physicalKeys[ev.Physical] = state
		}
		if ev.Logical.IsNamed() {
			t.logicalKeys[ev.Logical.Named] = state
		}

	case core.ModifiersEvent:
		t.mods = ev.Mods

	case core.CursorMovedEvent:
		t.cursorPos = ev.Position

	case core.ScrollEvent:
		t.scroll(ev.Delta)

	case core.MouseButtonEvent:
		t.mouseButtons[ev.Button] = stateOf(ev.State)
	}
}

func (t *Tracker) scroll(d core.ScrollDelta) {
	if t.scrollPolicy == ScrollLatest || t.mouseScroll.IsZero() || t.mouseScroll.Unit != d.Unit {
		t.mouseScroll = d
		return
	}
	t.mouseScroll.X += d.X
	t.mouseScroll.Y += d.Y
}

// UpdateKeys runs the decay pass: Pressed becomes Down, Down is kept and
// Released entries are dropped. The pending scroll delta is reset.
func (t *Tracker) UpdateKeys() {
	decay(t.physicalKeys)
	decay(t.logicalKeys)
	decay(t.mouseButtons)
	t.mouseScroll = core.ScrollDelta{}
}

func decay[K comparable](m map[K]InputState) {
	for k, s := range m {
		switch s {
		case Pressed:
			m[k] = Down
		case Released:
			delete(m, k)
		}
	}
}

// CursorPos returns the last reported cursor position.
func (t *Tracker) CursorPos() core.Vec2 {
	return t.cursorPos
}

// MouseScroll returns the scroll delta observed since the last decay pass.
func (t *Tracker) MouseScroll() core.ScrollDelta {
	return t.mouseScroll
}

// KeyMods returns the current modifier snapshot.
func (t *Tracker) KeyMods() core.KeyMods {
	return t.mods
}

// PhysicalKey returns the state of a physical key and whether it is tracked.
func (t *Tracker) PhysicalKey(code core.KeyCode) (InputState, bool) {
	s, ok := t.physicalKeys[code]
	return s, ok
}

// PhysicalKeys returns a copy of all tracked physical keys.
func (t *Tracker) PhysicalKeys() map[core.KeyCode]InputState {
	return maps.Clone(t.physicalKeys)
}

// IsPhysicalKeyPressed reports whether the physical key has just been pressed.
func (t *Tracker) IsPhysicalKeyPressed(code core.KeyCode) bool {
	s, ok := t.physicalKeys[code]
	return ok && s.IsPressed()
}

// IsPhysicalKeyDown reports whether the physical key is pressed or held.
func (t *Tracker) IsPhysicalKeyDown(code core.KeyCode) bool {
	s, ok := t.physicalKeys[code]
	return ok && s.IsAnyDown()
}

// IsPhysicalKeyReleased reports whether the physical key has just been released.
func (t *Tracker) IsPhysicalKeyReleased(code core.KeyCode) bool {
	s, ok := t.physicalKeys[code]
	return ok && s.IsReleased()
}

// LogicalKey returns the state of a named logical key and whether it is tracked.
func (t *Tracker) LogicalKey(key core.NamedKey) (InputState, bool) {
	s, ok := t.logicalKeys[key]
	return s, ok
}

// LogicalKeys returns a copy of all tracked logical keys.
func (t *Tracker) LogicalKeys() map[core.NamedKey]InputState {
	return maps.Clone(t.logicalKeys)
}

// IsLogicalKeyPressed reports whether the logical key has just been pressed.
func (t *Tracker) IsLogicalKeyPressed(key core.NamedKey) bool {
	s, ok := t.logicalKeys[key]
	return ok && s.IsPressed()
}

// IsLogicalKeyDown reports whether the logical key is pressed or held.
func (t *Tracker) IsLogicalKeyDown(key core.NamedKey) bool {
	s, ok := t.logicalKeys[key]
	return ok && s.IsAnyDown()
}

// IsLogicalKeyReleased reports whether the logical key has just been released.
func (t *Tracker) IsLogicalKeyReleased(key core.NamedKey) bool {
	s, ok := t.logicalKeys[key]
	return ok && s.IsReleased()
}

// MouseButton returns the state of a mouse button and whether it is tracked.
func (t *Tracker) MouseButton(b core.MouseButton) (InputState, bool) {
	s, ok := t.mouseButtons[b]
	return s, ok
}

// MouseButtons returns a copy of all tracked mouse buttons.
func (t *Tracker) MouseButtons() map[core.MouseButton]InputState {
	return maps.Clone(t.mouseButtons)
}

// IsMouseButtonPressed reports whether the button has just been pressed.
func (t *Tracker) IsMouseButtonPressed(b core.MouseButton) bool {
	s, ok := t.mouseButtons[b]
	return ok && s.IsPressed()
}

// IsMouseButtonDown reports whether the button is pressed or held.
func (t *Tracker) IsMouseButtonDown(b core.MouseButton) bool {
	s, ok := t.mouseButtons[b]
	return ok && s.IsAnyDown()
}

// IsMouseButtonReleased reports whether the button has just been released.
func (t *Tracker) IsMouseButtonReleased(b core.MouseButton) bool {
	s, ok := t.mouseButtons[b]
	return ok && s.IsReleased()
}
