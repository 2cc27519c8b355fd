package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// CodeInput wraps bubbles/textinput for entering a shared result code.
type CodeInput struct {
	Model   textinput.Model
	invalid bool
}

// NewCodeInput creates a focused code input.
func NewCodeInput() CodeInput {
	ti := textinput.New()
	ti.Placeholder = "partner's code"
	ti.CharLimit = 36
	ti.Focus()
	return CodeInput{Model: ti}
}

// Init returns the initial command.
func (c CodeInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// Update handles messages.
func (c CodeInput) Update(msg tea.Msg) (CodeInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		c.invalid = false
	}
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the input.
func (c CodeInput) View() string {
	view := c.Model.View()
	if c.invalid {
		view += " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ not a valid code")
	}
	return view
}

// Value returns the trimmed input.
func (c CodeInput) Value() string {
	return strings.TrimSpace(c.Model.Value())
}

// Validate reports whether the value is a well-formed code and marks the
// input invalid when it is not.
func (c *CodeInput) Validate() bool {
	if _, err := uuid.Parse(c.Value()); err != nil {
		c.invalid = true
		return false
	}
	return true
}
