// Package tui holds the interactive terminal views.
package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rnwolfe/cram/internal/priority"
	"github.com/rnwolfe/cram/internal/ui"
)

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// RankAction represents an action taken in the rank browser.
type RankAction struct {
	Type string // "done", "remove", "quit"
	ID   string
}

// RankModel is an interactive Bubbletea model for browsing a computed
// priority ranking.
type RankModel struct {
	tasks    []priority.ScoredTask
	cursor   int
	filter   string
	filtered []priority.ScoredTask
	mode     rankMode

	// breakdown toggles the per-task score detail pane.
	breakdown bool

	// terminal dimensions
	width  int
	height int

	// pending actions to apply after quitting
	Actions []RankAction

	quitting bool
}

type rankMode int

const (
	rankModeNormal rankMode = iota
	rankModeFilter
)

// NewRankModel creates a RankModel over an already-sorted ranking.
func NewRankModel(tasks []priority.ScoredTask) *RankModel {
	m := &RankModel{
		tasks:  tasks,
		width:  80,
		height: 24,
	}
	m.applyFilter()
	return m
}

// RunRank launches the rank browser. Returns actions for the caller to apply.
func RunRank(tasks []priority.ScoredTask) ([]RankAction, error) {
	m := NewRankModel(tasks)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	result, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("rank tui: %w", err)
	}
	final := result.(*RankModel)
	return final.Actions, nil
}

func (m *RankModel) Init() tea.Cmd {
	return nil
}

func (m *RankModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == rankModeFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m *RankModel) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "g":
		m.cursor = 0

	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}

	case "b", "tab":
		m.breakdown = !m.breakdown

	case "x", " ", "enter":
		if len(m.filtered) > 0 {
			t := m.filtered[m.cursor]
			m.Actions = append(m.Actions, RankAction{Type: "done", ID: t.ID})
			m.removeLocal(t.ID)
		}

	case "d":
		if len(m.filtered) > 0 {
			t := m.filtered[m.cursor]
			m.Actions = append(m.Actions, RankAction{Type: "remove", ID: t.ID})
			m.removeLocal(t.ID)
		}

	case "/":
		m.mode = rankModeFilter
		m.filter = ""
		m.applyFilter()
		m.cursor = 0
	}

	return m, nil
}

func (m *RankModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = rankModeNormal
		m.filter = ""
		m.applyFilter()
		m.cursor = 0

	case "enter":
		m.mode = rankModeNormal

	case "backspace":
		if len(m.filter) > 0 {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
			m.applyFilter()
			m.cursor = 0
		}

	default:
		if len(msg.Runes) > 0 {
			m.filter += string(msg.Runes)
			m.applyFilter()
			m.cursor = 0
		}
	}
	return m, nil
}

// removeLocal drops a task from the local copy so the view updates
// immediately; the caller applies the real mutation after quit.
func (m *RankModel) removeLocal(id string) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	m.applyFilter()
	if m.cursor >= len(m.filtered) && m.cursor > 0 {
		m.cursor = len(m.filtered) - 1
	}
}

func (m *RankModel) applyFilter() {
	m.filtered = nil
	q := strings.ToLower(m.filter)
	for _, t := range m.tasks {
		if q == "" {
			m.filtered = append(m.filtered, t)
			continue
		}
		if ok, _ := FuzzyMatch(q, t.Title+" "+t.ProjectID+" "+t.ProjectName); ok {
			m.filtered = append(m.filtered, t)
		}
	}
}

func (m *RankModel) View() string {
	var b strings.Builder

	header := ui.Title.Render("  " + ui.IconRank + " Priority")
	if m.filter != "" {
		header += ui.Muted.Render(fmt.Sprintf("  filter: %q", m.filter))
	}
	b.WriteString(header + "\n\n")

	visHeight := m.height - 8
	if m.breakdown {
		visHeight -= 4
	}
	if visHeight < 3 {
		visHeight = 3
	}

	offset := 0
	if m.cursor >= visHeight {
		offset = m.cursor - visHeight + 1
	}

	if len(m.filtered) == 0 {
		if m.filter != "" {
			b.WriteString("  " + ui.Muted.Render("No matches. Press esc to clear filter.") + "\n")
		} else {
			b.WriteString("  " + ui.Muted.Render("Nothing to study. Enjoy it while it lasts.") + "\n")
		}
	} else {
		end := offset + visHeight
		if end > len(m.filtered) {
			end = len(m.filtered)
		}
		for i := offset; i < end; i++ {
			b.WriteString(m.renderTask(i, m.filtered[i], i == m.cursor) + "\n")
		}
	}

	b.WriteString("\n")

	if m.breakdown && len(m.filtered) > 0 {
		b.WriteString(m.renderBreakdown(m.filtered[m.cursor]))
	}

	if m.mode == rankModeFilter {
		prompt := lipgloss.NewStyle().Foreground(ui.Lamp).Bold(true).Render("/")
		b.WriteString("  " + prompt + " " + m.filter + "█\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n")

	countStr := ui.Muted.Render(fmt.Sprintf("  %d/%d shown", len(m.filtered), len(m.tasks)))
	b.WriteString(countStr + "\n")

	var help string
	if m.mode == rankModeFilter {
		help = ui.Muted.Render("  esc clear · enter confirm")
	} else {
		help = ui.Muted.Render("  j/k move · x done · d delete · b breakdown · / filter · q quit")
	}
	b.WriteString(help + "\n")

	return b.String()
}

func (m *RankModel) renderTask(rank int, t priority.ScoredTask, selected bool) string {
	pointer := "  "
	titleStyle := lipgloss.NewStyle()
	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		titleStyle = lipgloss.NewStyle().Foreground(ui.Lamp).Bold(true)
	}

	pos := ui.Muted.Render(fmt.Sprintf("%2d.", rank+1))
	score := ui.ScoreStyle(t.PriorityScore).Render(fmt.Sprintf("%6.1f", t.PriorityScore))
	subj := ui.Tag.Render(t.ProjectID)
	title := titleStyle.Render(t.Title)

	line := fmt.Sprintf("  %s%s %s %s %s", pointer, pos, score, subj, title)
	if t.DueDate != "" {
		line += ui.Muted.Render("  due " + t.DueDate)
	}
	return line
}

func (m *RankModel) renderBreakdown(t priority.ScoredTask) string {
	var b strings.Builder
	b.WriteString(ui.Muted.Render("  ── breakdown ──") + "\n")
	b.WriteString(ui.Muted.Render(fmt.Sprintf("  subject %s (%s) · section %s",
		t.ProjectID, t.ProjectName, t.Section)) + "\n")
	b.WriteString(ui.Muted.Render(fmt.Sprintf("  score %.2f", t.PriorityScore)) + "\n")
	b.WriteString("\n")
	return b.String()
}
