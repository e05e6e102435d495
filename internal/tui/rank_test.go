package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rnwolfe/cram/internal/priority"
)

func makeRanking(titles ...string) []priority.ScoredTask {
	out := make([]priority.ScoredTask, len(titles))
	for i, title := range titles {
		out[i] = priority.ScoredTask{
			Task: priority.Task{
				ID:      strings.Repeat("0", 7) + string(rune('a'+i)),
				Title:   title,
				Section: "quiz",
			},
			ProjectID:     "CS101",
			ProjectName:   "Intro to CS",
			PriorityScore: float64(100 - i*10),
		}
	}
	return out
}

func TestNewRankModel_Defaults(t *testing.T) {
	m := NewRankModel(makeRanking("one", "two", "three"))

	if m.cursor != 0 {
		t.Fatalf("cursor should start at 0, got %d", m.cursor)
	}
	if len(m.filtered) != 3 {
		t.Fatalf("all tasks should be visible initially, got %d", len(m.filtered))
	}
	if m.mode != rankModeNormal {
		t.Fatalf("initial mode should be normal, got %d", m.mode)
	}
}

func TestRankModel_Navigate(t *testing.T) {
	m := NewRankModel(makeRanking("one", "two", "three"))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.cursor != 1 {
		t.Fatalf("cursor should be 1 after j, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.cursor != 2 {
		t.Fatalf("cursor should clamp at 2, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if m.cursor != 1 {
		t.Fatalf("cursor should be 1 after k, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	if m.cursor != 0 {
		t.Fatalf("g should jump to top, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.cursor != 2 {
		t.Fatalf("G should jump to bottom, got %d", m.cursor)
	}
}

func TestRankModel_DoneRecordsAction(t *testing.T) {
	tasks := makeRanking("one", "two")
	m := NewRankModel(tasks)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	if len(m.Actions) != 1 || m.Actions[0].Type != "done" || m.Actions[0].ID != tasks[0].ID {
		t.Fatalf("unexpected actions: %+v", m.Actions)
	}
	// Task disappears locally for immediate feedback.
	if len(m.filtered) != 1 || m.filtered[0].Title != "two" {
		t.Fatalf("filtered = %+v, want only 'two'", m.filtered)
	}
}

func TestRankModel_RemoveClampsCursor(t *testing.T) {
	m := NewRankModel(makeRanking("one", "two"))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})

	if len(m.Actions) != 1 || m.Actions[0].Type != "remove" {
		t.Fatalf("unexpected actions: %+v", m.Actions)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor should clamp after removing last item, got %d", m.cursor)
	}
}

func TestRankModel_Filter(t *testing.T) {
	m := NewRankModel(makeRanking("lab report", "reading quiz", "final review"))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if m.mode != rankModeFilter {
		t.Fatal("/ should enter filter mode")
	}
	for _, r := range "quiz" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(m.filtered) != 1 || m.filtered[0].Title != "reading quiz" {
		t.Fatalf("filtered = %+v, want only 'reading quiz'", m.filtered)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != rankModeNormal || len(m.filtered) != 3 {
		t.Fatal("esc should clear the filter")
	}
}

func TestRankModel_BreakdownToggle(t *testing.T) {
	m := NewRankModel(makeRanking("one"))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	if !m.breakdown {
		t.Fatal("b should enable the breakdown pane")
	}
	if !strings.Contains(m.View(), "breakdown") {
		t.Fatal("breakdown pane should render")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.breakdown {
		t.Fatal("tab should toggle the breakdown pane off")
	}
}

func TestRankModel_QuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		m := NewRankModel(makeRanking("one"))
		var msg tea.KeyMsg
		if key == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("%s should quit", key)
		}
	}
}

func TestRankModel_ViewEmpty(t *testing.T) {
	m := NewRankModel(nil)
	if !strings.Contains(m.View(), "Nothing to study") {
		t.Fatal("empty view should render the empty-state line")
	}
}
