package questionnaire

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/submission"
	"github.com/abhisek/kmatcher/internal/ui/components"
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.joining {
		return s.renderJoin(width, height)
	}
	if s.categoriesErr != "" {
		return renderError(width, height, s.categoriesErr)
	}
	if s.loadingCategories {
		return s.renderLoading(width, height, "Loading categories...")
	}
	if _, ok := s.q.Current(); !ok {
		return renderError(width, height, msgNoCategories)
	}

	var b strings.Builder
	b.WriteString(s.renderCategories(width))
	b.WriteString("\n\n")

	answered, known := s.q.Progress()
	barWidth := min(width-4, 60)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.NewProgressBar(answered, known, barWidth).View()))
	b.WriteString("\n\n")

	footer := s.renderSubmit(width)
	listHeight := height - lipgloss.Height(b.String()) - lipgloss.Height(footer) - 1
	switch {
	case s.loadingQuestions:
		b.WriteString(s.renderLoading(width, 3, "Loading questions..."))
	case s.questionsErr != "":
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(s.questionsErr + "  (R to retry)"))
	default:
		b.WriteString(s.renderQuestions(width, listHeight))
	}
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

func (s *Screen) renderCategories(width int) string {
	cats := s.q.Catalog.Categories()
	cur, _ := s.q.Current()

	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		if c.ID == cur.ID {
			parts = append(parts, theme.Selected.Render("["+c.Name+"]"))
		} else {
			parts = append(parts, theme.Unselected.Render(" "+c.Name+" "))
		}
	}
	line := strings.Join(parts, " ")
	if lipgloss.Width(line) > width-4 {
		// Too many tabs; show the current one with its position.
		line = theme.Selected.Render(fmt.Sprintf("◂ %s (%d/%d) ▸", cur.Name, cur.Rank+1, len(cats)))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}

func (s *Screen) renderQuestions(width, height int) string {
	if len(s.questions) == 0 {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("No questions in this category.")
	}

	// Each question takes one line; the selected one adds its picker.
	rows := max(height-2, 1)
	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(start+rows, len(s.questions))

	textWidth := max(width-20, 10)
	var b strings.Builder
	for i := start; i < end; i++ {
		aq := s.questions[i]
		answer := theme.Unanswered.Render("·")
		if aq.Answer != nil {
			answer = theme.Answered.Render(aq.Answer.Grade.Label())
			if aq.Answer.IfForced {
				answer += theme.Forced.Render(" (forced)")
			}
		}

		text := truncate(aq.Text, textWidth)
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("  ▸ "+text) + "  " + answer + "\n")
			b.WriteString("     " + s.picker().View() + "\n")
		} else {
			b.WriteString(theme.Body.Render("    "+text) + "  " + answer + "\n")
		}
	}
	if s.answerErr != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("    "+s.answerErr) + "\n")
	}
	return b.String()
}

func (s *Screen) renderSubmit(width int) string {
	st := s.ctrl.Status()
	if s.outcome != nil && !s.outcome.Combined {
		msg := fmt.Sprintf("Your code is: %s\n\nGive it to your partner. Results will be available\nafter both of you submit answers.", s.outcome.Result.ID)
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.SuccessPanel.Render(msg))
	}

	btn := components.NewButton("Submit", "Submitting...")
	btn.Enabled = s.q.AllAnswered()
	btn.Busy = st.State == submission.Submitting
	view := btn.View()
	if btn.Busy {
		view = s.spinner.View() + " " + view
	}
	if s.failure != "" {
		view += "\n\n" + theme.ErrorPanel.Render(s.failure)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, view)
}

func (s *Screen) renderLoading(width, height int, label string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render(s.spinner.View() + " " + label)
}

func (s *Screen) renderJoin(width, height int) string {
	body := theme.Body.Bold(true).Render("Open a shared code") + "\n\n" + s.code.View()
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Render(body))
}

func renderError(width, height int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(theme.ErrorPanel.Render(msg + "\n\nPress R to retry."))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
