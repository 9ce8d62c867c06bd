// Package tui hosts fixstep apps in a terminal with Bubble Tea, locally or
// over SSH. It turns terminal messages into input events and poll ticks
// into idle ticks for the driver.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPollInterval is used when Options leaves PollInterval unset.
const DefaultPollInterval = 4 * time.Millisecond

// TickMsg is sent to deliver an idle tick.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends one tick after interval.
// The interval sets how often frames are measured, not the update rate.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
