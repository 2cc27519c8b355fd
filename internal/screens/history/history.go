// Package history lists the codes submitted from this machine.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/router"
	"github.com/abhisek/kmatcher/internal/screen"
	"github.com/abhisek/kmatcher/internal/store"
	"github.com/abhisek/kmatcher/internal/ui/layout"
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Records []store.SubmissionRecord
	Err     error
}

// HistoryScreen displays past submissions.
type HistoryScreen struct {
	repo     store.HistoryRepo
	records  []store.SubmissionRecord
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.HistoryRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		recs, err := s.repo.Submissions(context.Background(), store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{Records: recs, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open result"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Records
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if s.selected < len(s.records) {
				return s, router.Navigate(router.Route{
					Kind:     router.RouteResult,
					ResultID: s.records[s.selected].ResultID,
				})
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No submissions yet.")
	}

	start, end := window(len(s.records), s.selected, height-2)

	var b strings.Builder
	b.WriteString("\n")

	for i := start; i < end; i++ {
		rec := s.records[i]
		role := "started"
		if rec.PartnerID != "" {
			role = "joined "
		}
		status := theme.Unanswered.Render("waiting")
		if rec.Combined {
			status = theme.Answered.Render("matched")
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %s  %3d answers  ",
			prefix, rec.CreatedAt.Local().Format("Jan 02, 2006 15:04"), rec.ResultID, role, rec.AnswerCount)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)+status))
		b.WriteString("\n")
	}

	return b.String()
}

// window returns the [start, end) slice of n rows that keeps selected
// visible in rows lines.
func window(n, selected, rows int) (int, int) {
	if rows < 1 {
		rows = 1
	}
	if n <= rows {
		return 0, n
	}
	start := selected - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}
