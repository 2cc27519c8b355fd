// Package notfound is shown for unknown result codes and routes.
package notfound

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/router"
	"github.com/abhisek/kmatcher/internal/screen"
	"github.com/abhisek/kmatcher/internal/ui/layout"
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// Screen is the not-found view.
type Screen struct{}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a not-found screen.
func New() *Screen {
	return &Screen{}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, router.Navigate(router.Route{Kind: router.RouteQuestionnaire})
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render("╌╌ 404 ╌╌\n\nThis code does not exist.\nAsk your partner to check it.")
}

func (s *Screen) Title() string {
	return "Not Found"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start a questionnaire"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
