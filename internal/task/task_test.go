package task

import (
	"testing"
	"time"

	"github.com/rnwolfe/cram/internal/store"
	"github.com/rnwolfe/cram/internal/subject"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	subjects := subject.NewStore(db.Conn())
	for _, tag := range []string{"CS101", "MATH202"} {
		if err := subjects.Add(tag, tag, 3, 50); err != nil {
			t.Fatalf("seeding subject %s: %v", tag, err)
		}
	}
	return NewStore(db.Conn())
}

func TestAdd(t *testing.T) {
	s := testStore(t)

	tk, err := s.Add("CS101", "Lab report", "Assignments", "2026-03-15")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tk.ID == "" {
		t.Error("task should get an ID")
	}
	if tk.Section != "assignment" {
		t.Errorf("section = %q, want normalized %q", tk.Section, "assignment")
	}
	if tk.DueDate != "2026-03-15" {
		t.Errorf("due date = %q, want raw input preserved", tk.DueDate)
	}

	got, err := s.Get(tk.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Lab report" || got.SubjectTag != "CS101" {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestAdd_Validation(t *testing.T) {
	s := testStore(t)

	if _, err := s.Add("CS101", "  ", "quiz", ""); err == nil {
		t.Error("blank title should fail")
	}
	if _, err := s.Add("CS101", "ok", "quiz", "not a date"); err == nil {
		t.Error("unparseable due date should fail")
	}
	if _, err := s.Add("GHOST", "ok", "quiz", ""); err == nil {
		t.Error("unknown subject should fail")
	}

	// Empty section defaults to assignment; empty due date is allowed.
	tk, err := s.Add("CS101", "ok", "", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tk.Section != "assignment" {
		t.Errorf("default section = %q, want assignment", tk.Section)
	}
}

func TestGet_Prefix(t *testing.T) {
	s := testStore(t)
	tk, err := s.Add("CS101", "Lab report", "assignment", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := s.Get(tk.ID[:8])
	if err != nil {
		t.Fatalf("Get by prefix: %v", err)
	}
	if got.ID != tk.ID {
		t.Errorf("prefix lookup returned %q, want %q", got.ID, tk.ID)
	}

	if _, err := s.Get("nope"); err == nil {
		t.Error("unknown ID should fail")
	}
}

func TestList_Filters(t *testing.T) {
	s := testStore(t)
	a, _ := s.Add("CS101", "one", "quiz", "")
	if _, err := s.Add("MATH202", "two", "quiz", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Done(a.ID); err != nil {
		t.Fatalf("Done: %v", err)
	}

	pending, err := s.List(ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "two" {
		t.Errorf("pending = %+v, want only 'two'", pending)
	}

	all, _ := s.List(ListOptions{ShowDone: true})
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	cs, _ := s.List(ListOptions{SubjectTag: "CS101", ShowDone: true})
	if len(cs) != 1 || cs[0].Title != "one" {
		t.Errorf("subject filter = %+v, want only 'one'", cs)
	}
}

func TestDoneAndReopen(t *testing.T) {
	s := testStore(t)
	tk, _ := s.Add("CS101", "one", "quiz", "")

	done, err := s.Done(tk.ID)
	if err != nil {
		t.Fatalf("Done: %v", err)
	}
	if !done.Done {
		t.Error("task should be marked done")
	}
	if _, err := s.Done(tk.ID); err == nil {
		t.Error("completing twice should fail")
	}

	got, _ := s.Get(tk.ID)
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}

	if _, err := s.Reopen(tk.ID); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	got, _ = s.Get(tk.ID)
	if got.Done || got.CompletedAt != nil {
		t.Errorf("reopened task = %+v", got)
	}
	if _, err := s.Reopen(tk.ID); err == nil {
		t.Error("reopening a pending task should fail")
	}
}

func TestEdit(t *testing.T) {
	s := testStore(t)
	tk, _ := s.Add("CS101", "one", "quiz", "")

	title := "one, revised"
	due := "2026-04-01"
	got, err := s.Edit(tk.ID, &title, nil, &due)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.Title != title || got.DueDate != due || got.Section != "quiz" {
		t.Errorf("edit not applied: %+v", got)
	}

	bad := "never"
	if _, err := s.Edit(tk.ID, nil, nil, &bad); err == nil {
		t.Error("invalid due date should fail")
	}

	// Clearing the due date is allowed.
	empty := ""
	got, err = s.Edit(tk.ID, nil, nil, &empty)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.DueDate != "" {
		t.Errorf("due date = %q, want cleared", got.DueDate)
	}
}

func TestCounts(t *testing.T) {
	s := testStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if _, err := s.Add("CS101", "overdue", "quiz", "2026-03-01"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add("CS101", "today", "quiz", "2026-03-10"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Add("MATH202", "future", "quiz", "2026-03-20"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if n, _ := s.Count(""); n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
	if n, _ := s.Count("CS101"); n != 2 {
		t.Errorf("Count(CS101) = %d, want 2", n)
	}
	// Due today is not overdue.
	if n, _ := s.OverdueCount(now); n != 1 {
		t.Errorf("OverdueCount = %d, want 1", n)
	}
}

func TestBySubject(t *testing.T) {
	s := testStore(t)
	if _, err := s.Add("CS101", "one", "quiz", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	tk, _ := s.Add("CS101", "two", "final", "2026-05-01")
	if _, err := s.Add("MATH202", "three", "assignment", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := s.Done(tk.ID); err != nil {
		t.Fatalf("Done: %v", err)
	}

	grouped, err := s.BySubject()
	if err != nil {
		t.Fatalf("BySubject: %v", err)
	}
	if len(grouped["CS101"]) != 1 || len(grouped["MATH202"]) != 1 {
		t.Errorf("grouped = %+v", grouped)
	}
	if grouped["CS101"][0].Title != "one" {
		t.Error("completed tasks must not reach the engine")
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	tk, _ := s.Add("CS101", "one", "quiz", "")

	if err := s.Remove(tk.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get(tk.ID); err == nil {
		t.Error("removed task should not be found")
	}
	if err := s.Remove(tk.ID); err == nil {
		t.Error("removing twice should fail")
	}
}
