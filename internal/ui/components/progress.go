package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/ui/theme"
)

// ProgressBar shows how many known questions are answered.
type ProgressBar struct {
	Answered int
	Total    int
	Width    int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(answered, total, width int) ProgressBar {
	return ProgressBar{Answered: answered, Total: total, Width: width}
}

// Percent returns the answered fraction in [0, 1].
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Answered) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	count := fmt.Sprintf("  %d/%d", p.Answered, p.Total)
	countWidth := lipgloss.Width(count)

	barWidth := p.Width - countWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent())
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
}
