package core

import "fmt"

// WindowID identifies the window (or terminal session) an event belongs to.
// The zero value means "no particular window".
type WindowID uint64

// Event is a raw notification delivered by the host. Events are plain values;
// the host owns their construction and delivery order.
type Event interface {
	// Window returns the window the event belongs to, or 0 for events that
	// are not tied to a window (lifecycle, idle).
	Window() WindowID
}

// KeyEvent reports a physical key transition.
type KeyEvent struct {
	WindowID WindowID
	// Physical is KeyUnidentified when the host cannot resolve the key position.
	Physical KeyCode
	Logical  LogicalKey
	State    ElementState
	// Repeat is set for auto-repeat notifications while the key is held.
	Repeat bool
	// Synthetic is set for events the host generated rather than observed,
	// e.g. keys already held when the window gained focus.
	Synthetic bool
}

// ModifiersEvent carries a full snapshot of the modifier keys.
type ModifiersEvent struct {
	WindowID WindowID
	Mods     KeyMods
}

// CursorMovedEvent reports the new cursor position.
type CursorMovedEvent struct {
	WindowID WindowID
	Position Vec2
}

// ScrollEvent reports wheel or touchpad movement.
type ScrollEvent struct {
	WindowID WindowID
	Delta    ScrollDelta
}

// MouseButtonEvent reports a mouse button transition.
type MouseButtonEvent struct {
	WindowID WindowID
	Button   MouseButton
	State    ElementState
}

// CloseRequestedEvent is sent when the user asks to close the window.
type CloseRequestedEvent struct {
	WindowID WindowID
}

// ResizedEvent reports the new inner size of the window.
type ResizedEvent struct {
	WindowID      WindowID
	Width, Height int
}

// FocusEvent reports that the window gained or lost input focus.
type FocusEvent struct {
	WindowID WindowID
	Focused  bool
}

// ResumedEvent is sent when the host (re)acquires its surface.
type ResumedEvent struct{}

// SuspendedEvent is sent when the host loses its surface.
type SuspendedEvent struct{}

// IdleEvent is sent once per idle tick, before the frame is advanced.
type IdleEvent struct{}

func (e KeyEvent) Window() WindowID            { return e.WindowID }
func (e ModifiersEvent) Window() WindowID      { return e.WindowID }
func (e CursorMovedEvent) Window() WindowID    { return e.WindowID }
func (e ScrollEvent) Window() WindowID         { return e.WindowID }
func (e MouseButtonEvent) Window() WindowID    { return e.WindowID }
func (e CloseRequestedEvent) Window() WindowID { return e.WindowID }
func (e ResizedEvent) Window() WindowID        { return e.WindowID }
func (e FocusEvent) Window() WindowID          { return e.WindowID }
func (ResumedEvent) Window() WindowID          { return 0 }
func (SuspendedEvent) Window() WindowID        { return 0 }
func (IdleEvent) Window() WindowID             { return 0 }

// KeyMods is a snapshot of the eight modifier keys.
type KeyMods struct {
	LShift   bool
	RShift   bool
	LAlt     bool
	RAlt     bool
	LControl bool
	RControl bool
	// LSuper and RSuper are the "windows" key on PC and "command" key on Mac.
	LSuper bool
	RSuper bool
}

// Shift reports whether either shift key is held.
func (m KeyMods) Shift() bool { return m.LShift || m.RShift }

// Alt reports whether either alt key is held.
func (m KeyMods) Alt() bool { return m.LAlt || m.RAlt }

// Control reports whether either control key is held.
func (m KeyMods) Control() bool { return m.LControl || m.RControl }

// Super reports whether either super key is held.
func (m KeyMods) Super() bool { return m.LSuper || m.RSuper }

// String renders the held modifiers as "ctrl+alt+shift+super", or "none".
func (m KeyMods) String() string {
	s := ""
	add := func(on bool, name string) {
		if !on {
			return
		}
		if s != "" {
			s += "+"
		}
		s += name
	}
	add(m.Control(), "ctrl")
	add(m.Alt(), "alt")
	add(m.Shift(), "shift")
	add(m.Super(), "super")
	if s == "" {
		return "none"
	}
	return s
}

// ScrollUnit tells how a scroll delta is measured.
type ScrollUnit int

const (
	ScrollLines ScrollUnit = iota
	ScrollPixels
)

// ScrollDelta is the wheel movement observed during one tick.
// The zero value is neutral.
type ScrollDelta struct {
	Unit ScrollUnit
	X, Y float64
}

// IsZero reports whether the delta carries no movement.
func (d ScrollDelta) IsZero() bool {
	return d.X == 0 && d.Y == 0
}

func (d ScrollDelta) String() string {
	unit := "lines"
	if d.Unit == ScrollPixels {
		unit = "px"
	}
	return fmt.Sprintf("(%g, %g) %s", d.X, d.Y, unit)
}
