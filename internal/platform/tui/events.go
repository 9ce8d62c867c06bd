package tui

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/fixstep/internal/core"
)

// DefaultKeyReleaseDelay is how long a key counts as held after its last
// press or auto-repeat when the configuration sets no delay.
const DefaultKeyReleaseDelay = 500 * time.Millisecond

// heldKey identifies a key the terminal reported as pressed: its physical
// code, or its logical key when the physical code is unknown. Shifted and
// unshifted presses of one physical key share an entry.
type heldKey struct {
	physical core.KeyCode
	logical  core.LogicalKey
}

// holding is the state of one held key.
type holding struct {
	logical  core.LogicalKey // as first pressed
	deadline time.Time
}

func holdKey(info keyInfo) heldKey {
	if info.physical != core.KeyUnidentified {
		return heldKey{physical: info.physical}
	}
	return heldKey{logical: info.logical}
}

// translator converts Bubble Tea messages to core events for one window.
//
// Terminals report key presses and auto-repeats but never releases. A key is
// considered held until no press for it has arrived within releaseDelay; the
// release is then synthesized by Expire. Presses of a held key are reported
// as repeats.
type translator struct {
	window       core.WindowID
	releaseDelay time.Duration
	reservedRows int
	keys         KeyMap

	held      map[heldKey]holding
	mods      core.KeyMods
	buttons   map[core.MouseButton]bool
	cursor    core.Vec2
	hasCursor bool
}

func newTranslator(window core.WindowID, releaseDelay time.Duration, reservedRows int, keys KeyMap) *translator {
	if releaseDelay <= 0 {
		releaseDelay = DefaultKeyReleaseDelay
	}
	return &translator{
		window:       window,
		releaseDelay: releaseDelay,
		reservedRows: reservedRows,
		keys:         keys,
		held:         make(map[heldKey]holding),
		buttons:      make(map[core.MouseButton]bool),
	}
}

// Translate returns the events msg stands for, in delivery order.
// Messages with no core equivalent yield nil.
func (t *translator) Translate(msg tea.Msg, now time.Time) []core.Event {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.key(msg, now)

	case tea.MouseMsg:
		return t.mouse(tea.MouseEvent(msg))

	case tea.WindowSizeMsg:
		w, h := t.surface(msg)
		return []core.Event{core.ResizedEvent{WindowID: t.window, Width: w, Height: h}}

	case tea.FocusMsg:
		return []core.Event{core.FocusEvent{WindowID: t.window, Focused: true}}

	case tea.BlurMsg:
		// Nothing reports what is released while unfocused.
		out := t.ReleaseAll()
		return append(out, core.FocusEvent{WindowID: t.window, Focused: false})

	case tea.ResumeMsg:
		return []core.Event{core.ResumedEvent{}}
	}
	return nil
}

// surface returns the app's share of the terminal.
func (t *translator) surface(msg tea.WindowSizeMsg) (int, int) {
	return msg.Width, max(msg.Height-t.reservedRows, 1)
}

func (t *translator) key(msg tea.KeyMsg, now time.Time) []core.Event {
	if key.Matches(msg, t.keys.Close) {
		return []core.Event{core.CloseRequestedEvent{WindowID: t.window}}
	}

	info, ok := parseKey(msg)
	if !ok {
		return nil
	}

	var out []core.Event
	if info.mods != t.mods {
		t.mods = info.mods
		out = append(out, core.ModifiersEvent{WindowID: t.window, Mods: info.mods})
	}

	hk := holdKey(info)
	h, repeat := t.held[hk]
	if !repeat {
		h.logical = info.logical
	}
	h.deadline = now.Add(t.releaseDelay)
	t.held[hk] = h

	return append(out, core.KeyEvent{
		WindowID: t.window,
		Physical: info.physical,
		Logical:  info.logical,
		State:    core.StatePressed,
		Repeat:   repeat,
	})
}

// Expire synthesizes releases for keys whose deadline passed by now.
// When no key is held any more, the modifier snapshot is cleared as well.
func (t *translator) Expire(now time.Time) []core.Event {
	var out []core.Event
	for _, hk := range t.sortedHeld() {
		h := t.held[hk]
		if now.Before(h.deadline) {
			continue
		}
		delete(t.held, hk)
		out = append(out, t.release(hk, h))
	}
	if len(t.held) == 0 && t.mods != (core.KeyMods{}) {
		t.mods = core.KeyMods{}
		out = append(out, core.ModifiersEvent{WindowID: t.window})
	}
	return out
}

// ReleaseAll releases every held key and mouse button.
func (t *translator) ReleaseAll() []core.Event {
	var out []core.Event
	for _, hk := range t.sortedHeld() {
		out = append(out, t.release(hk, t.held[hk]))
		delete(t.held, hk)
	}
	if t.mods != (core.KeyMods{}) {
		t.mods = core.KeyMods{}
		out = append(out, core.ModifiersEvent{WindowID: t.window})
	}
	return append(out, t.releaseButtons()...)
}

// Held returns the number of keys currently considered held.
func (t *translator) Held() int {
	return len(t.held)
}

// release is a stand-in for the release the terminal never sent, so it is
// not marked synthetic.
func (t *translator) release(hk heldKey, h holding) core.Event {
	return core.KeyEvent{
		WindowID: t.window,
		Physical: hk.physical,
		Logical:  h.logical,
		State:    core.StateReleased,
	}
}

func (t *translator) sortedHeld() []heldKey {
	keys := slices.Collect(maps.Keys(t.held))
	slices.SortFunc(keys, func(a, b heldKey) int {
		return cmp.Or(
			cmp.Compare(a.physical, b.physical),
			cmp.Compare(a.logical.Named, b.logical.Named),
			cmp.Compare(a.logical.Char, b.logical.Char),
		)
	})
	return keys
}

func (t *translator) mouse(m tea.MouseEvent) []core.Event {
	var out []core.Event

	pos := core.Vec2{X: float64(m.X), Y: float64(m.Y)}
	if !t.hasCursor || pos != t.cursor {
		t.cursor = pos
		t.hasCursor = true
		out = append(out, core.CursorMovedEvent{WindowID: t.window, Position: pos})
	}

	if m.IsWheel() {
		if m.Action == tea.MouseActionPress {
			if d, ok := wheelDelta(m.Button); ok {
				out = append(out, core.ScrollEvent{WindowID: t.window, Delta: d})
			}
		}
		return out
	}

	switch m.Action {
	case tea.MouseActionPress:
		if b, ok := mouseButton(m.Button); ok {
			t.buttons[b] = true
			out = append(out, core.MouseButtonEvent{WindowID: t.window, Button: b, State: core.StatePressed})
		}

	case tea.MouseActionRelease:
		// Some encodings do not say which button was released.
		b, ok := mouseButton(m.Button)
		if !ok {
			return append(out, t.releaseButtons()...)
		}
		if t.buttons[b] {
			delete(t.buttons, b)
			out = append(out, core.MouseButtonEvent{WindowID: t.window, Button: b, State: core.StateReleased})
		}
	}
	return out
}

func (t *translator) releaseButtons() []core.Event {
	var out []core.Event
	for _, b := range slices.Sorted(maps.Keys(t.buttons)) {
		delete(t.buttons, b)
		out = append(out, core.MouseButtonEvent{WindowID: t.window, Button: b, State: core.StateReleased})
	}
	return out
}

// wheelDelta returns one line of scroll per wheel notch. Positive Y scrolls
// content down (wheel up), positive X scrolls content right (wheel left).
func wheelDelta(b tea.MouseButton) (core.ScrollDelta, bool) {
	switch b {
	case tea.MouseButtonWheelUp:
		return core.ScrollDelta{Unit: core.ScrollLines, Y: 1}, true
	case tea.MouseButtonWheelDown:
		return core.ScrollDelta{Unit: core.ScrollLines, Y: -1}, true
	case tea.MouseButtonWheelLeft:
		return core.ScrollDelta{Unit: core.ScrollLines, X: 1}, true
	case tea.MouseButtonWheelRight:
		return core.ScrollDelta{Unit: core.ScrollLines, X: -1}, true
	}
	return core.ScrollDelta{}, false
}

func mouseButton(b tea.MouseButton) (core.MouseButton, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return core.MouseLeft, true
	case tea.MouseButtonRight:
		return core.MouseRight, true
	case tea.MouseButtonMiddle:
		return core.MouseMiddle, true
	case tea.MouseButtonBackward:
		return core.MouseBack, true
	case tea.MouseButtonForward:
		return core.MouseForward, true
	case tea.MouseButton10:
		return core.MouseOther(0), true
	case tea.MouseButton11:
		return core.MouseOther(1), true
	}
	return 0, false
}

// keyInfo is a terminal key resolved to core identities.
type keyInfo struct {
	physical core.KeyCode
	logical  core.LogicalKey
	mods     core.KeyMods
}

type namedEntry struct {
	physical core.KeyCode
	named    core.NamedKey
}

// namedKeys maps Bubble Tea key names (without modifier prefixes) to core keys.
var namedKeys = func() map[string]namedEntry {
	m := map[string]namedEntry{
		" ":         {core.KeySpace, core.NamedSpace},
		"space":     {core.KeySpace, core.NamedSpace},
		"enter":     {core.KeyEnter, core.NamedEnter},
		"esc":       {core.KeyEscape, core.NamedEscape},
		"tab":       {core.KeyTab, core.NamedTab},
		"backspace": {core.KeyBackspace, core.NamedBackspace},
		"delete":    {core.KeyDelete, core.NamedDelete},
		"insert":    {core.KeyInsert, core.NamedInsert},
		"home":      {core.KeyHome, core.NamedHome},
		"end":       {core.KeyEnd, core.NamedEnd},
		"pgup":      {core.KeyPageUp, core.NamedPageUp},
		"pgdown":    {core.KeyPageDown, core.NamedPageDown},
		"up":        {core.KeyArrowUp, core.NamedArrowUp},
		"down":      {core.KeyArrowDown, core.NamedArrowDown},
		"left":      {core.KeyArrowLeft, core.NamedArrowLeft},
		"right":     {core.KeyArrowRight, core.NamedArrowRight},
	}
	for i := range 20 {
		physical := core.KeyUnidentified
		if i < 12 {
			physical = core.KeyF1 + core.KeyCode(i)
		}
		m[fmt.Sprintf("f%d", i+1)] = namedEntry{physical, core.NamedF1 + core.NamedKey(i)}
	}
	return m
}()

// parseKey resolves a Bubble Tea key message. Pasted text and keys with no
// known identity are rejected.
func parseKey(msg tea.KeyMsg) (keyInfo, bool) {
	if msg.Paste {
		return keyInfo{}, false
	}

	name := msg.String()
	var mods core.KeyMods
prefixes:
	for {
		switch {
		case strings.HasPrefix(name, "ctrl+") && len(name) > len("ctrl+"):
			mods.LControl = true
			name = name[len("ctrl+"):]
		case strings.HasPrefix(name, "alt+") && len(name) > len("alt+"):
			mods.LAlt = true
			name = name[len("alt+"):]
		case strings.HasPrefix(name, "shift+") && len(name) > len("shift+"):
			mods.LShift = true
			name = name[len("shift+"):]
		default:
			break prefixes
		}
	}

	if e, ok := namedKeys[name]; ok {
		return keyInfo{physical: e.physical, logical: core.Named(e.named), mods: mods}, true
	}

	runes := []rune(name)
	if len(runes) != 1 {
		return keyInfo{}, false
	}
	code, shifted := runeKey(runes[0])
	if shifted {
		mods.LShift = true
	}
	return keyInfo{physical: code, logical: core.Character(name), mods: mods}, true
}

// runeKey guesses the physical key of a printable rune on a US layout and
// whether shift produced it.
func runeKey(r rune) (core.KeyCode, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return core.KeyA + core.KeyCode(r-'a'), false
	case r >= 'A' && r <= 'Z':
		return core.KeyA + core.KeyCode(r-'A'), true
	case r >= '0' && r <= '9':
		return core.Digit0 + core.KeyCode(r-'0'), false
	}

	switch r {
	case '-':
		return core.KeyMinus, false
	case '_':
		return core.KeyMinus, true
	case '=':
		return core.KeyEqual, false
	case '+':
		return core.KeyEqual, true
	case ',':
		return core.KeyComma, false
	case '<':
		return core.KeyComma, true
	case '.':
		return core.KeyPeriod, false
	case '>':
		return core.KeyPeriod, true
	case '/':
		return core.KeySlash, false
	case '?':
		return core.KeySlash, true
	}
	return core.KeyUnidentified, false
}
