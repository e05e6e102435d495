package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// cram's color palette — late-night desk lamp tones.
var (
	// Primary colors
	Ink      = lipgloss.Color("#2B2B2B")
	Paper    = lipgloss.Color("#F5F0E6")
	Lamp     = lipgloss.Color("#FFB347")
	Ember    = lipgloss.Color("#E86A33")
	Ocean    = lipgloss.Color("#2E86AB")
	Moss     = lipgloss.Color("#7FB069")
	Crimson  = lipgloss.Color("#D64545")
	Violet   = lipgloss.Color("#8E7CC3")
	Dim      = lipgloss.Color("#6B6B6B")
	Bright   = lipgloss.Color("#FFFFFF")
	Subtle   = lipgloss.Color("#A8A8A8")
	Midnight = lipgloss.Color("#1A1A2E")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Lamp)

	Subtitle = lipgloss.NewStyle().
			Foreground(Ember)

	Success = lipgloss.NewStyle().
		Foreground(Moss)

	Error = lipgloss.NewStyle().
		Foreground(Crimson)

	Warning = lipgloss.NewStyle().
		Foreground(Ember)

	Info = lipgloss.NewStyle().
		Foreground(Ocean)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Lamp).
		Bold(true)

	// Component styles
	Banner = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Lamp).
		Padding(0, 1)

	Tag = lipgloss.NewStyle().
		Foreground(Bright).
		Background(Ocean).
		Padding(0, 1).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Ember).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)

	// Urgency bands for rendered priority scores.
	ScoreHot  = lipgloss.NewStyle().Foreground(Crimson).Bold(true)
	ScoreWarm = lipgloss.NewStyle().Foreground(Ember)
	ScoreCool = lipgloss.NewStyle().Foreground(Ocean)
)

// Icon constants — consistent emoji language.
const (
	IconBook    = "📚"
	IconTask    = "📋"
	IconDone    = "✅"
	IconOverdue = "🔴"
	IconDue     = "⏰"
	IconRank    = "🔥"
	IconMarks   = "📊"
	IconVault   = "🔑"
	IconStar    = "⭐"
	IconWarn    = "⚠️ "
	IconError   = "✗ "
	IconOk      = "✓ "
	IconArrow   = "→"
	IconDot     = "·"
	IconPencil  = "✏️ "
)

func init() {
	// Honor NO_COLOR and drop styling entirely when stdout is piped.
	if os.Getenv("NO_COLOR") != "" ||
		(!isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ScoreStyle picks a style for a priority score by urgency band.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 60:
		return ScoreHot
	case score >= 30:
		return ScoreWarm
	default:
		return ScoreCool
	}
}
