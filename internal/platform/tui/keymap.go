package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// DefaultCloseKeys are used when the configuration names none.
var DefaultCloseKeys = []string{"ctrl+c"}

// KeyMap holds the keys the host intercepts before the app sees them.
// It implements help.KeyMap for the footer.
type KeyMap struct {
	// Close asks the window to close. The app sees a close request, not a key.
	Close key.Binding
	// Suspend backgrounds the program (local terminals only).
	Suspend key.Binding
	// Exit is the app-level exit key. It is not intercepted; it is listed
	// for the footer.
	Exit key.Binding
}

// NewKeyMap creates the host key map. An empty closeKeys uses DefaultCloseKeys.
func NewKeyMap(closeKeys []string, suspend bool) KeyMap {
	if len(closeKeys) == 0 {
		closeKeys = DefaultCloseKeys
	}

	km := KeyMap{
		Close: key.NewBinding(
			key.WithKeys(closeKeys...),
			key.WithHelp(strings.Join(closeKeys, "/"), "close"),
		),
		Suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "suspend"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "exit app"),
		),
	}
	km.Suspend.SetEnabled(suspend)
	return km
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Exit, k.Close, k.Suspend}
}

// FullHelp returns all bindings grouped in columns.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
