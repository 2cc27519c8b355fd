package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kmatcher/internal/grade"
)

// Color palette, dark background with a warm red accent
var (
	Primary   = lipgloss.Color("#F87171") // Soft Red
	Secondary = lipgloss.Color("#DC2626") // Deep Red
	Accent    = lipgloss.Color("#FACC15") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#111827") // Near Black
	BgCard    = lipgloss.Color("#1F2937") // Dark Gray
	Border    = lipgloss.Color("#4B5563") // Gray
)

// Grade badge colors
var (
	GradeRed    = lipgloss.Color("#EF4444")
	GradeOrange = lipgloss.Color("#F97316")
	GradeYellow = lipgloss.Color("#EAB308")
	GradeGreen  = lipgloss.Color("#22C55E")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Forced = lipgloss.NewStyle().
		Foreground(Accent).
		Italic(true)
)

// Layout
var (
	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	SuccessPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Success).
			Foreground(Success).
			Padding(1, 2)

	ErrorPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Foreground(Error).
			Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Answered = lipgloss.NewStyle().
			Foreground(Success)

	Unanswered = lipgloss.NewStyle().
			Foreground(TextDim)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Secondary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// GradeBadge returns the badge style for a grade. Values outside the scale
// get the Never color.
func GradeBadge(g grade.Grade) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)
	switch g {
	case grade.Need:
		return base.Foreground(GradeGreen).Bold(true)
	case grade.Yes:
		return base.Foreground(GradeGreen)
	case grade.Maybe:
		return base.Foreground(GradeYellow)
	case grade.NoDesire:
		return base.Foreground(GradeOrange)
	default:
		return base.Foreground(GradeRed)
	}
}
