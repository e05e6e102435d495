package subject

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rnwolfe/cram/internal/priority"
)

// Subject represents an academic course being tracked.
type Subject struct {
	Tag                 string
	Name                string
	CreditHours         float64
	RelativeScore       float64
	CognitiveDifficulty float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Store handles subject persistence.
type Store struct {
	db *sql.DB
}

// NewStore creates a new subject store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add creates a subject and rebalances relative credit-hour scores.
// Tags are the primary key; adding an existing tag is an error.
func (s *Store) Add(tag, name string, creditHours, cognitiveDifficulty float64) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("subject tag must not be empty")
	}
	if creditHours <= 0 {
		return fmt.Errorf("credit hours must be positive, got %v", creditHours)
	}
	if cognitiveDifficulty < 0 || cognitiveDifficulty > 100 {
		return fmt.Errorf("cognitive difficulty %v out of range [0,100]", cognitiveDifficulty)
	}

	_, err := s.db.Exec(
		`INSERT INTO subjects (tag, name, credit_hours, cognitive_difficulty) VALUES (?, ?, ?, ?)`,
		tag, name, creditHours, cognitiveDifficulty,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("subject %q already exists", tag)
		}
		return err
	}

	return s.Rebalance()
}

// Get returns a single subject by tag.
func (s *Store) Get(tag string) (*Subject, error) {
	row := s.db.QueryRow(
		`SELECT tag, name, credit_hours, relative_score, cognitive_difficulty, created_at, updated_at
		 FROM subjects WHERE tag = ?`, tag,
	)
	subj, err := scanSubject(row)
	if err != nil {
		return nil, fmt.Errorf("subject %q not found", tag)
	}
	return subj, nil
}

// List returns all subjects in creation order.
func (s *Store) List() ([]Subject, error) {
	rows, err := s.db.Query(
		`SELECT tag, name, credit_hours, relative_score, cognitive_difficulty, created_at, updated_at
		 FROM subjects ORDER BY created_at ASC, tag ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []Subject
	for rows.Next() {
		subj, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *subj)
	}
	return subjects, rows.Err()
}

// Remove deletes a subject. Tasks, weights, and performance rows cascade.
func (s *Store) Remove(tag string) error {
	res, err := s.db.Exec(`DELETE FROM subjects WHERE tag = ?`, tag)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("subject %q not found", tag)
	}
	return s.Rebalance()
}

// Edit updates a subject's name, credit hours, and/or difficulty.
// Nil fields are left unchanged. Credit-hour changes trigger a rebalance.
func (s *Store) Edit(tag string, name *string, creditHours, cognitiveDifficulty *float64) error {
	sets := []string{}
	args := []any{}

	if name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *name)
	}
	if creditHours != nil {
		if *creditHours <= 0 {
			return fmt.Errorf("credit hours must be positive, got %v", *creditHours)
		}
		sets = append(sets, "credit_hours = ?")
		args = append(args, *creditHours)
	}
	if cognitiveDifficulty != nil {
		if *cognitiveDifficulty < 0 || *cognitiveDifficulty > 100 {
			return fmt.Errorf("cognitive difficulty %v out of range [0,100]", *cognitiveDifficulty)
		}
		sets = append(sets, "cognitive_difficulty = ?")
		args = append(args, *cognitiveDifficulty)
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, tag)

	query := fmt.Sprintf("UPDATE subjects SET %s WHERE tag = ?", strings.Join(sets, ", "))
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("subject %q not found", tag)
	}

	if creditHours != nil {
		return s.Rebalance()
	}
	return nil
}

// Rebalance recomputes every subject's relative credit-hour score: the
// heaviest subject scores 100 and the rest scale proportionally.
func (s *Store) Rebalance() error {
	var max float64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(credit_hours), 0) FROM subjects`).Scan(&max)
	if err != nil {
		return fmt.Errorf("finding max credit hours: %w", err)
	}
	if max == 0 {
		return nil
	}

	_, err = s.db.Exec(`UPDATE subjects SET relative_score = credit_hours / ? * 100`, max)
	if err != nil {
		return fmt.Errorf("rebalancing relative scores: %w", err)
	}
	return nil
}

// Count returns the number of tracked subjects.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subjects`).Scan(&n)
	return n, err
}

// Engine converts a stored subject into its engine representation.
func (sub Subject) Engine() priority.Subject {
	return priority.Subject{
		Tag:                 sub.Tag,
		Name:                sub.Name,
		CreditHours:         sub.CreditHours,
		RelativeScore:       sub.RelativeScore,
		CognitiveDifficulty: sub.CognitiveDifficulty,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*Subject, error) {
	var sub Subject
	var createdStr, updatedStr string

	err := row.Scan(&sub.Tag, &sub.Name, &sub.CreditHours, &sub.RelativeScore,
		&sub.CognitiveDifficulty, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt = parseTimestamp(createdStr)
	sub.UpdatedAt = parseTimestamp(updatedStr)
	return &sub, nil
}

// parseTimestamp handles both SQLite-native and RFC3339 timestamp strings.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
