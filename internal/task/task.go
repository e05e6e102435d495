// Package task persists study tasks and exposes them to the scoring engine.
package task

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rnwolfe/cram/internal/priority"
)

// Task represents a single deliverable tied to a subject.
type Task struct {
	ID          string
	SubjectTag  string
	Title       string
	Section     string
	DueDate     string
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// ListOptions configures which tasks to return from List.
type ListOptions struct {
	// SubjectTag filters to one subject. Empty means all subjects.
	SubjectTag string
	// ShowDone includes completed tasks in the result.
	ShowDone bool
}

// Store handles task persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new task store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add creates a new task and returns it. The section label is normalized
// to its canonical category name; the due date is kept as entered and
// validated against the accepted layouts only when non-empty.
func (s *Store) Add(subjectTag, title, section, dueDate string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}
	if section == "" {
		section = string(priority.CategoryAssignment)
	}
	section = string(priority.NormalizeSection(section))
	if dueDate != "" {
		if _, ok := priority.ParseDueDate(dueDate); !ok {
			return nil, fmt.Errorf("invalid due date %q (try YYYY-MM-DD)", dueDate)
		}
	}

	t := &Task{
		ID:         uuid.New().String(),
		SubjectTag: subjectTag,
		Title:      title,
		Section:    section,
		DueDate:    dueDate,
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, subject_tag, title, section, due_date) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.SubjectTag, t.Title, t.Section, t.DueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("adding task: %w", err)
	}
	return t, nil
}

// Get fetches a task by ID. A unique ID prefix is accepted.
func (s *Store) Get(id string) (*Task, error) {
	rows, err := s.db.Query(
		`SELECT id, subject_tag, title, section, due_date, done, created_at, updated_at, completed_at
		 FROM tasks WHERE id LIKE ? || '%' LIMIT 2`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task %q not found", id)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("task ID %q is ambiguous", id)
	}
}

// List returns tasks ordered by creation time.
func (s *Store) List(opts ListOptions) ([]Task, error) {
	query := `SELECT id, subject_tag, title, section, due_date, done, created_at, updated_at, completed_at FROM tasks`
	var conds []string
	var args []any
	if !opts.ShowDone {
		conds = append(conds, "done = 0")
	}
	if opts.SubjectTag != "" {
		conds = append(conds, "subject_tag = ?")
		args = append(args, opts.SubjectTag)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Done marks a task as completed.
func (s *Store) Done(id string) (*Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET done = 1, completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND done = 0`, t.ID,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("task %q already done", id)
	}
	t.Done = true
	return t, nil
}

// Reopen clears the done flag on a completed task.
func (s *Store) Reopen(id string) (*Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET done = 0, completed_at = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND done = 1`, t.ID,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("task %q is not done", id)
	}
	t.Done = false
	return t, nil
}

// Remove deletes a task.
func (s *Store) Remove(id string) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`DELETE FROM tasks WHERE id = ?`, t.ID)
	return err
}

// Edit updates the given fields on a task. Nil fields are left unchanged.
func (s *Store) Edit(id string, title, section, dueDate *string) (*Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, fmt.Errorf("task title is required")
		}
		t.Title = trimmed
	}
	if section != nil {
		t.Section = string(priority.NormalizeSection(*section))
	}
	if dueDate != nil {
		if *dueDate != "" {
			if _, ok := priority.ParseDueDate(*dueDate); !ok {
				return nil, fmt.Errorf("invalid due date %q (try YYYY-MM-DD)", *dueDate)
			}
		}
		t.DueDate = *dueDate
	}
	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, section = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Title, t.Section, t.DueDate, t.ID,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Count returns the number of pending tasks, optionally for one subject.
func (s *Store) Count(subjectTag string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE done = 0`
	var args []any
	if subjectTag != "" {
		query += " AND subject_tag = ?"
		args = append(args, subjectTag)
	}
	var n int
	err := s.db.QueryRow(query, args...).Scan(&n)
	return n, err
}

// OverdueCount returns how many pending tasks have a due date strictly
// before today.
func (s *Store) OverdueCount(now time.Time) (int, error) {
	tasks, err := s.List(ListOptions{})
	if err != nil {
		return 0, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	n := 0
	for _, t := range tasks {
		due, ok := priority.ParseDueDate(t.DueDate)
		if !ok {
			continue
		}
		dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
		if dueDay.Before(today) {
			n++
		}
	}
	return n, nil
}

// BySubject groups all pending tasks by subject tag in engine form.
func (s *Store) BySubject() (map[string][]priority.Task, error) {
	tasks, err := s.List(ListOptions{})
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]priority.Task)
	for _, t := range tasks {
		grouped[t.SubjectTag] = append(grouped[t.SubjectTag], t.Engine())
	}
	return grouped, nil
}

// Engine converts a stored task to its scoring-engine form.
func (t Task) Engine() priority.Task {
	return priority.Task{
		ID:      t.ID,
		Title:   t.Title,
		Section: t.Section,
		DueDate: t.DueDate,
	}
}

func scanTask(rows *sql.Rows) (*Task, error) {
	var t Task
	var done int
	var created, updated string
	var completed sql.NullString
	if err := rows.Scan(&t.ID, &t.SubjectTag, &t.Title, &t.Section, &t.DueDate, &done, &created, &updated, &completed); err != nil {
		return nil, err
	}
	t.Done = done != 0
	t.CreatedAt = parseTimestamp(created)
	t.UpdatedAt = parseTimestamp(updated)
	if completed.Valid {
		at := parseTimestamp(completed.String)
		t.CompletedAt = &at
	}
	return &t, nil
}

// parseTimestamp handles both SQLite's default format and RFC3339.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
