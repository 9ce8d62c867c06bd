package core

import "fmt"

// ElementState is the edge reported by a raw key or button notification.
type ElementState int

const (
	StatePressed ElementState = iota
	StateReleased
)

// String returns "pressed" or "released".
func (s ElementState) String() string {
	if s == StatePressed {
		return "pressed"
	}
	return "released"
}

// KeyCode identifies a physical key by its position on the keyboard,
// independent of the active layout.
type KeyCode int

// KeyUnidentified is reported when the host cannot resolve the physical key.
const KeyUnidentified KeyCode = 0

const (
	KeyA KeyCode = iota + 1
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight

	KeyShiftLeft
	KeyShiftRight
	KeyControlLeft
	KeyControlRight
	KeyAltLeft
	KeyAltRight
	KeySuperLeft  // Windows key on PC, Command key on Mac
	KeySuperRight // Windows key on PC, Command key on Mac

	KeyMinus
	KeyEqual
	KeyComma
	KeyPeriod
	KeySlash
)

var keyCodeNames = map[KeyCode]string{
	KeyUnidentified: "Unidentified",
	KeySpace:        "Space",
	KeyEnter:        "Enter",
	KeyEscape:       "Escape",
	KeyTab:          "Tab",
	KeyBackspace:    "Backspace",
	KeyDelete:       "Delete",
	KeyInsert:       "Insert",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyPageUp:       "PageUp",
	KeyPageDown:     "PageDown",
	KeyArrowUp:      "ArrowUp",
	KeyArrowDown:    "ArrowDown",
	KeyArrowLeft:    "ArrowLeft",
	KeyArrowRight:   "ArrowRight",
	KeyShiftLeft:    "ShiftLeft",
	KeyShiftRight:   "ShiftRight",
	KeyControlLeft:  "ControlLeft",
	KeyControlRight: "ControlRight",
	KeyAltLeft:      "AltLeft",
	KeyAltRight:     "AltRight",
	KeySuperLeft:    "SuperLeft",
	KeySuperRight:   "SuperRight",
	KeyMinus:        "Minus",
	KeyEqual:        "Equal",
	KeyComma:        "Comma",
	KeyPeriod:       "Period",
	KeySlash:        "Slash",
}

// String returns the key name, e.g. "KeyW", "Digit3", "F5" or "ArrowUp".
func (k KeyCode) String() string {
	switch {
	case k >= KeyA && k <= KeyZ:
		return "Key" + string(rune('A'+int(k-KeyA)))
	case k >= Digit0 && k <= Digit9:
		return "Digit" + string(rune('0'+int(k-Digit0)))
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	}
	if name, ok := keyCodeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyCode(%d)", int(k))
}

// NamedKey is a logical key that has a name rather than a printable character.
// Printable characters are never tracked by logical identity.
type NamedKey int

const (
	NamedNone NamedKey = iota
	NamedEnter
	NamedEscape
	NamedTab
	NamedBackspace
	NamedSpace
	NamedDelete
	NamedInsert
	NamedHome
	NamedEnd
	NamedPageUp
	NamedPageDown
	NamedArrowUp
	NamedArrowDown
	NamedArrowLeft
	NamedArrowRight
	NamedShift
	NamedControl
	NamedAlt
	NamedSuper
	NamedF1
	NamedF2
	NamedF3
	NamedF4
	NamedF5
	NamedF6
	NamedF7
	NamedF8
	NamedF9
	NamedF10
	NamedF11
	NamedF12
	NamedF13
	NamedF14
	NamedF15
	NamedF16
	NamedF17
	NamedF18
	NamedF19
	NamedF20
)

var namedKeyNames = [...]string{
	NamedNone:       "None",
	NamedEnter:      "Enter",
	NamedEscape:     "Escape",
	NamedTab:        "Tab",
	NamedBackspace:  "Backspace",
	NamedSpace:      "Space",
	NamedDelete:     "Delete",
	NamedInsert:     "Insert",
	NamedHome:       "Home",
	NamedEnd:        "End",
	NamedPageUp:     "PageUp",
	NamedPageDown:   "PageDown",
	NamedArrowUp:    "ArrowUp",
	NamedArrowDown:  "ArrowDown",
	NamedArrowLeft:  "ArrowLeft",
	NamedArrowRight: "ArrowRight",
	NamedShift:      "Shift",
	NamedControl:    "Control",
	NamedAlt:        "Alt",
	NamedSuper:      "Super",
}

// String returns the name of the key.
func (k NamedKey) String() string {
	if k >= NamedF1 && k <= NamedF20 {
		return fmt.Sprintf("F%d", int(k-NamedF1)+1)
	}
	if k >= 0 && int(k) < len(namedKeyNames) {
		return namedKeyNames[k]
	}
	return fmt.Sprintf("NamedKey(%d)", int(k))
}

// LogicalKey is the layout-dependent meaning of a key press: either a named
// key or the text the key produces.
type LogicalKey struct {
	Named NamedKey
	Char  string
}

// Named returns a logical key for a named symbol.
func Named(k NamedKey) LogicalKey {
	return LogicalKey{Named: k}
}

// Character returns a logical key for printable text.
func Character(s string) LogicalKey {
	return LogicalKey{Char: s}
}

// IsNamed reports whether the key is a named symbol.
func (k LogicalKey) IsNamed() bool {
	return k.Named != NamedNone
}

func (k LogicalKey) String() string {
	if k.IsNamed() {
		return k.Named.String()
	}
	if k.Char == "" {
		return "Unidentified"
	}
	return fmt.Sprintf("%q", k.Char)
}

// MouseButton identifies a mouse button. Values above MouseForward are
// additional device buttons.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
)

// MouseOther returns the identity of an additional button n (n >= 0).
func MouseOther(n int) MouseButton {
	return MouseForward + 1 + MouseButton(n)
}

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "Left"
	case MouseRight:
		return "Right"
	case MouseMiddle:
		return "Middle"
	case MouseBack:
		return "Back"
	case MouseForward:
		return "Forward"
	default:
		return fmt.Sprintf("Other(%d)", int(b-MouseForward-1))
	}
}
