package components

import (
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// Button is a styled button. A disabled button renders dimmed; Busy swaps
// the label for BusyLabel.
type Button struct {
	Label     string
	BusyLabel string
	Enabled   bool
	Busy      bool
}

// NewButton creates a new button.
func NewButton(label, busyLabel string) Button {
	return Button{Label: label, BusyLabel: busyLabel}
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Busy && b.BusyLabel != "" {
		label = b.BusyLabel
	}
	label = " ▸ " + label + " "
	if b.Enabled && !b.Busy {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
