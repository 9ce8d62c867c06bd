package tui

import (
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/input"
)

var epoch = time.Unix(1_700_000_000, 0)

func newTestTranslator() *translator {
	return newTranslator(7, 100*time.Millisecond, footerRows, NewKeyMap(nil, false))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		physical core.KeyCode
		logical  core.LogicalKey
		mods     core.KeyMods
	}{
		{"letter", runes("a"), core.KeyA, core.Character("a"), core.KeyMods{}},
		{"upper case implies shift", runes("W"), core.KeyW, core.Character("W"), core.KeyMods{LShift: true}},
		{"digit", runes("7"), core.Digit7, core.Character("7"), core.KeyMods{}},
		{"plus is shifted equal", runes("+"), core.KeyEqual, core.Character("+"), core.KeyMods{LShift: true}},
		{"unknown symbol", runes("é"), core.KeyUnidentified, core.Character("é"), core.KeyMods{}},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, core.KeySpace, core.Named(core.NamedSpace), core.KeyMods{}},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, core.KeyEscape, core.Named(core.NamedEscape), core.KeyMods{}},
		{"arrow", tea.KeyMsg{Type: tea.KeyUp}, core.KeyArrowUp, core.Named(core.NamedArrowUp), core.KeyMods{}},
		{"alt arrow", tea.KeyMsg{Type: tea.KeyLeft, Alt: true}, core.KeyArrowLeft, core.Named(core.NamedArrowLeft), core.KeyMods{LAlt: true}},
		{"ctrl letter", tea.KeyMsg{Type: tea.KeyCtrlA}, core.KeyA, core.Character("a"), core.KeyMods{LControl: true}},
		{"shift tab", tea.KeyMsg{Type: tea.KeyShiftTab}, core.KeyTab, core.Named(core.NamedTab), core.KeyMods{LShift: true}},
		{"f5", tea.KeyMsg{Type: tea.KeyF5}, core.KeyF5, core.Named(core.NamedF5), core.KeyMods{}},
		{"f15 has no physical code", tea.KeyMsg{Type: tea.KeyF15}, core.KeyUnidentified, core.Named(core.NamedF15), core.KeyMods{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := parseKey(tc.msg)
			if !ok {
				t.Fatalf("parseKey(%q) rejected", tc.msg.String())
			}
			if info.physical != tc.physical {
				t.Errorf("physical = %v, expected %v", info.physical, tc.physical)
			}
			if info.logical != tc.logical {
				t.Errorf("logical = %v, expected %v", info.logical, tc.logical)
			}
			if info.mods != tc.mods {
				t.Errorf("mods = %v, expected %v", info.mods, tc.mods)
			}
		})
	}
}

func TestParseKeyRejectsPaste(t *testing.T) {
	if _, ok := parseKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello"), Paste: true}); ok {
		t.Error("pasted text should be rejected")
	}
	if _, ok := parseKey(runes("ab")); ok {
		t.Error("multi-rune input should be rejected")
	}
}

func TestKeyHoldRepeatAndRelease(t *testing.T) {
	tr := newTestTranslator()

	first := tr.Translate(runes("a"), epoch)
	if len(first) != 1 {
		t.Fatalf("first press = %v, expected one key event", first)
	}
	if ev := first[0].(core.KeyEvent); ev.Repeat || ev.State != core.StatePressed || ev.WindowID != 7 {
		t.Errorf("first press = %+v", ev)
	}

	// Auto-repeat within the delay
	second := tr.Translate(runes("a"), epoch.Add(50*time.Millisecond))
	if ev := second[0].(core.KeyEvent); !ev.Repeat {
		t.Errorf("second press = %+v, expected repeat", ev)
	}

	// Deadline extends from the last repeat
	if got := tr.Expire(epoch.Add(120 * time.Millisecond)); len(got) != 0 {
		t.Errorf("Expire() before deadline = %v, expected nothing", got)
	}

	got := tr.Expire(epoch.Add(150 * time.Millisecond))
	want := []core.Event{core.KeyEvent{
		WindowID: 7,
		Physical: core.KeyA,
		Logical:  core.Character("a"),
		State:    core.StateReleased,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expire() = %+v, expected %+v", got, want)
	}
	if tr.Held() != 0 {
		t.Errorf("Held() = %d after release", tr.Held())
	}

	// A press after the release is a fresh press
	third := tr.Translate(runes("a"), epoch.Add(200*time.Millisecond))
	if ev := third[0].(core.KeyEvent); ev.Repeat {
		t.Error("press after release should not be a repeat")
	}
}

func TestShiftedPressOfHeldKeyRepeats(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		second   string
		physical core.KeyCode
	}{
		{"letter", "a", "A", core.KeyA},
		{"symbol", "=", "+", core.KeyEqual},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestTranslator()
			tracker := input.NewTracker()
			feed := func(events []core.Event) {
				for _, ev := range events {
					tracker.ProcessEvent(ev)
				}
			}

			feed(tr.Translate(runes(tc.first), epoch))
			tracker.UpdateKeys()
			feed(tr.Translate(runes(tc.second), epoch.Add(50*time.Millisecond)))

			if st, ok := tracker.PhysicalKey(tc.physical); !ok || st != input.Down {
				t.Errorf("PhysicalKey(%v) = %v, %v; expected still held", tc.physical, st, ok)
			}
			if tr.Held() != 1 {
				t.Errorf("Held() = %d, expected 1", tr.Held())
			}

			var releases []core.KeyEvent
			for _, ev := range tr.Expire(epoch.Add(time.Second)) {
				if ke, ok := ev.(core.KeyEvent); ok {
					releases = append(releases, ke)
				}
			}
			want := []core.KeyEvent{{
				WindowID: 7,
				Physical: tc.physical,
				Logical:  core.Character(tc.first),
				State:    core.StateReleased,
			}}
			if !reflect.DeepEqual(releases, want) {
				t.Errorf("Expire() releases = %+v, expected %+v", releases, want)
			}
		})
	}
}

func TestModifierSnapshot(t *testing.T) {
	tr := newTestTranslator()

	got := tr.Translate(tea.KeyMsg{Type: tea.KeyCtrlA}, epoch)
	if len(got) != 2 {
		t.Fatalf("Translate(ctrl+a) = %v, expected modifiers then key", got)
	}
	mods, ok := got[0].(core.ModifiersEvent)
	if !ok || !mods.Mods.Control() {
		t.Errorf("first event = %+v, expected control modifiers", got[0])
	}

	// Same modifiers: no new snapshot
	if again := tr.Translate(tea.KeyMsg{Type: tea.KeyCtrlA}, epoch); len(again) != 1 {
		t.Errorf("repeat ctrl+a = %v, expected only the key", again)
	}

	// Modifiers clear once nothing is held
	expired := tr.Expire(epoch.Add(time.Second))
	last, ok := expired[len(expired)-1].(core.ModifiersEvent)
	if !ok || last.Mods != (core.KeyMods{}) {
		t.Errorf("Expire() = %+v, expected trailing empty modifiers", expired)
	}
}

func TestCloseKeyRequestsClose(t *testing.T) {
	tr := newTestTranslator()

	got := tr.Translate(tea.KeyMsg{Type: tea.KeyCtrlC}, epoch)
	want := []core.Event{core.CloseRequestedEvent{WindowID: 7}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Translate(ctrl+c) = %v, expected %v", got, want)
	}
	if tr.Held() != 0 {
		t.Error("close key should not be tracked as held")
	}
}

func TestMouseTranslation(t *testing.T) {
	tests := []struct {
		name string
		msgs []tea.MouseMsg
		want []core.Event
	}{
		{
			name: "press and release",
			msgs: []tea.MouseMsg{
				{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
				{X: 3, Y: 4, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
			},
			want: []core.Event{
				core.CursorMovedEvent{WindowID: 7, Position: core.Vec2{X: 3, Y: 4}},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseLeft, State: core.StatePressed},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseLeft, State: core.StateReleased},
			},
		},
		{
			name: "anonymous release frees every button",
			msgs: []tea.MouseMsg{
				{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonRight},
				{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
				{X: 1, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone},
			},
			want: []core.Event{
				core.CursorMovedEvent{WindowID: 7, Position: core.Vec2{X: 1, Y: 1}},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseRight, State: core.StatePressed},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseLeft, State: core.StatePressed},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseLeft, State: core.StateReleased},
				core.MouseButtonEvent{WindowID: 7, Button: core.MouseRight, State: core.StateReleased},
			},
		},
		{
			name: "wheel scrolls one line per notch",
			msgs: []tea.MouseMsg{
				{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp},
				{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelRight},
			},
			want: []core.Event{
				core.CursorMovedEvent{WindowID: 7},
				core.ScrollEvent{WindowID: 7, Delta: core.ScrollDelta{Unit: core.ScrollLines, Y: 1}},
				core.ScrollEvent{WindowID: 7, Delta: core.ScrollDelta{Unit: core.ScrollLines, X: -1}},
			},
		},
		{
			name: "motion only moves the cursor",
			msgs: []tea.MouseMsg{
				{X: 2, Y: 2, Action: tea.MouseActionMotion},
				{X: 2, Y: 2, Action: tea.MouseActionMotion},
				{X: 5, Y: 2, Action: tea.MouseActionMotion},
			},
			want: []core.Event{
				core.CursorMovedEvent{WindowID: 7, Position: core.Vec2{X: 2, Y: 2}},
				core.CursorMovedEvent{WindowID: 7, Position: core.Vec2{X: 5, Y: 2}},
			},
		},
		{
			name: "release of an unheld button is dropped",
			msgs: []tea.MouseMsg{
				{X: 0, Y: 0, Action: tea.MouseActionRelease, Button: tea.MouseButtonMiddle},
			},
			want: []core.Event{
				core.CursorMovedEvent{WindowID: 7},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestTranslator()
			var got []core.Event
			for _, msg := range tc.msgs {
				got = append(got, tr.Translate(msg, epoch)...)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("events = %+v\nexpected %+v", got, tc.want)
			}
		})
	}
}

func TestWindowAndFocusTranslation(t *testing.T) {
	tr := newTestTranslator()

	got := tr.Translate(tea.WindowSizeMsg{Width: 100, Height: 30}, epoch)
	want := []core.Event{core.ResizedEvent{WindowID: 7, Width: 100, Height: 30 - footerRows}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resize = %v, expected %v", got, want)
	}

	tr.Translate(runes("x"), epoch)
	tr.Translate(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}, epoch)

	got = tr.Translate(tea.BlurMsg{}, epoch)
	want = []core.Event{
		core.KeyEvent{WindowID: 7, Physical: core.KeyX, Logical: core.Character("x"), State: core.StateReleased},
		core.MouseButtonEvent{WindowID: 7, Button: core.MouseLeft, State: core.StateReleased},
		core.FocusEvent{WindowID: 7, Focused: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("blur = %+v\nexpected %+v", got, want)
	}

	got = tr.Translate(tea.FocusMsg{}, epoch)
	if !reflect.DeepEqual(got, []core.Event{core.FocusEvent{WindowID: 7, Focused: true}}) {
		t.Errorf("focus = %v", got)
	}

	if got := tr.Translate("unrelated", epoch); got != nil {
		t.Errorf("unknown message = %v, expected nil", got)
	}
}
