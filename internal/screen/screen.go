package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kmatcher/internal/ui/layout"
)

// Screen is one page on the router stack. The root model draws the header
// and footer around View.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ProgressReporter is implemented by screens whose header shows how many
// known questions have an answer.
type ProgressReporter interface {
	Progress() (answered, known int)
}
