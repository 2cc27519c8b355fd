package results

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/kmatcher/internal/ui/theme"
)

const forcedMark = " (forced)"

var headers = []string{"Question", "Answer A", "Answer B", "Min answer"}

// RenderTable draws t as a bordered table at most width columns wide. A
// non-positive width lets the table size itself.
func RenderTable(t Table, width int) string {
	var (
		rows   [][]string
		badges []Group
	)
	for _, g := range t.Groups {
		for _, row := range g.Rows {
			rows = append(rows, []string{
				row.Question,
				cellText(row.A),
				cellText(row.B),
				g.Label,
			})
			badges = append(badges, g)
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Align(lipgloss.Center).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)
	dimStyle := cellStyle.Foreground(theme.TextDim)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3 && row >= 0 && row < len(badges):
				return theme.GradeBadge(badges[row].Badge)
			case row%2 == 1:
				return dimStyle
			default:
				return cellStyle
			}
		})
	if width > 0 {
		tbl = tbl.Width(width)
	}
	return tbl.Render()
}

func cellText(c Cell) string {
	if c.Forced {
		return c.Label + forcedMark
	}
	return c.Label
}
