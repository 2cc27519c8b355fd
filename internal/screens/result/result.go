// Package result shows the matches of a shared result.
package result

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/results"
	"github.com/abhisek/kmatcher/internal/router"
	"github.com/abhisek/kmatcher/internal/screen"
	"github.com/abhisek/kmatcher/internal/ui/layout"
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// loadedMsg carries the renderer's view.
type loadedMsg struct {
	View results.View
}

// Screen implements screen.Screen for a result id.
type Screen struct {
	renderer *results.Renderer
	resultID string

	spinner spinner.Model
	loading bool
	view    *results.View
	offset  int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates a result screen for resultID.
func New(renderer *results.Renderer, resultID string) *Screen {
	return &Screen{
		renderer: renderer,
		resultID: resultID,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *Screen) Init() tea.Cmd {
	s.loading = true
	return tea.Batch(s.spinner.Tick, s.load())
}

func (s *Screen) Title() string {
	return "Matching Results"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.view != nil && s.view.Kind == results.KindError {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) load() tea.Cmd {
	r, id := s.renderer, s.resultID
	return func() tea.Msg {
		return loadedMsg{View: r.Load(context.Background(), id)}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg.View)

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "r", "R":
			if s.loading {
				return s, nil
			}
			s.loading = true
			return s, tea.Batch(s.spinner.Tick, s.load())
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

// handleLoaded routes away from terminal states and keeps the rest.
func (s *Screen) handleLoaded(v results.View) (screen.Screen, tea.Cmd) {
	s.loading = false
	switch v.Kind {
	case results.KindNotFound:
		return s, router.Navigate(router.Route{Kind: router.RouteNotFound})
	case results.KindPending:
		return s, router.Navigate(router.Route{Kind: router.RouteQuestionnaire, PartnerID: v.ResultID})
	}
	s.view = &v
	s.offset = 0
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.loading || s.view == nil {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render(s.spinner.View() + " Loading result...")
	}

	if s.view.Kind == results.KindError {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.ErrorPanel.Render(s.view.Message+"\n\nPress R to retry."))
	}

	table := results.RenderTable(s.view.Table, min(width-2, 120))
	lines := strings.Split(table, "\n")
	maxOffset := max(len(lines)-height, 0)
	if s.offset > maxOffset {
		s.offset = maxOffset
	}
	end := min(s.offset+height, len(lines))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(lines[s.offset:end], "\n"))
}
