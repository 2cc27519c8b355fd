package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/grade"
	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// GradePicker shows the five grades for one question with the chosen grade
// highlighted and a forced checkbox.
type GradePicker struct {
	Chosen   *grade.Grade
	Forced   bool
	Cursor   grade.Grade
	Focused  bool
	Disabled bool
}

// NewGradePicker creates a picker for a question's current answer.
func NewGradePicker(chosen *grade.Grade, forced bool) GradePicker {
	p := GradePicker{Chosen: chosen, Forced: forced, Cursor: grade.Maybe}
	if chosen != nil {
		p.Cursor = *chosen
	}
	return p
}

// GradeChosenMsg is emitted when the user picks a grade.
type GradeChosenMsg struct {
	Grade  grade.Grade
	Forced bool
}

// ForcedToggledMsg is emitted when the forced checkbox changes.
type ForcedToggledMsg struct {
	Forced bool
}

// Update handles keys: 1-5 pick directly, left/right move the cursor and
// enter picks it, f toggles forced.
func (p GradePicker) Update(msg tea.Msg) (GradePicker, tea.Cmd) {
	if !p.Focused || p.Disabled {
		return p, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch key := kmsg.String(); key {
	case "left", "h":
		if p.Cursor > grade.Never {
			p.Cursor--
		}
	case "right", "l":
		if p.Cursor < grade.Need {
			p.Cursor++
		}
	case "1", "2", "3", "4", "5":
		p.Cursor = grade.Grade(key[0] - '1')
		return p.choose()
	case "enter", "space", " ":
		return p.choose()
	case "f":
		p.Forced = !p.Forced
		forced := p.Forced
		return p, func() tea.Msg { return ForcedToggledMsg{Forced: forced} }
	}
	return p, nil
}

func (p GradePicker) choose() (GradePicker, tea.Cmd) {
	g := p.Cursor
	p.Chosen = &g
	forced := p.Forced
	return p, func() tea.Msg { return GradeChosenMsg{Grade: g, Forced: forced} }
}

// View renders the grade row.
func (p GradePicker) View() string {
	parts := make([]string, 0, len(grade.All())+1)
	for _, g := range grade.All() {
		label := g.Label()
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(theme.TextDim)
		switch {
		case p.Chosen != nil && *p.Chosen == g:
			style = theme.GradeBadge(g).Reverse(true)
		case p.Focused && p.Cursor == g:
			style = style.Foreground(theme.Primary).Bold(true).Underline(true)
		}
		parts = append(parts, style.Render(label))
	}

	box := "[ ]"
	if p.Forced {
		box = "[x]"
	}
	forced := lipgloss.NewStyle().Foreground(theme.TextDim).Render(box + " If forced")
	if p.Forced {
		forced = theme.Forced.Render(box + " If forced")
	}
	return strings.Join(parts, " ") + "   " + forced
}
