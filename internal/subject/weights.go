package subject

import (
	"database/sql"
	"fmt"

	"github.com/rnwolfe/cram/internal/priority"
)

// SetWeight stores a subject-level weight for a category. The section
// label is normalized to its canonical category before storage.
func (s *Store) SetWeight(tag, section string, weight float64) error {
	if weight < 0 || weight > 100 {
		return fmt.Errorf("weight %v out of range [0,100]", weight)
	}
	if _, err := s.Get(tag); err != nil {
		return err
	}

	category := priority.NormalizeSection(section)
	_, err := s.db.Exec(
		`INSERT INTO subject_weights (subject_tag, category, weight) VALUES (?, ?, ?)
		 ON CONFLICT(subject_tag, category) DO UPDATE SET weight = excluded.weight`,
		tag, string(category), weight,
	)
	return err
}

// RemoveWeight deletes a subject-level weight entry.
func (s *Store) RemoveWeight(tag, section string) error {
	category := priority.NormalizeSection(section)
	res, err := s.db.Exec(
		`DELETE FROM subject_weights WHERE subject_tag = ? AND category = ?`,
		tag, string(category),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("no %q weight set for subject %q", category, tag)
	}
	return nil
}

// SetProjectAvg stores an imported class-average weight under its
// original section label (not normalized — the engine matches these
// case-insensitively against raw task sections).
func (s *Store) SetProjectAvg(tag, section string, avg float64) error {
	if _, err := s.Get(tag); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO project_weights (subject_tag, section, avg) VALUES (?, ?, ?)
		 ON CONFLICT(subject_tag, section) DO UPDATE SET avg = excluded.avg`,
		tag, section, avg,
	)
	return err
}

// WeightTables loads both weight table sources for all subjects in the
// shape the scoring engine consumes.
func (s *Store) WeightTables() (priority.Tables, error) {
	tables := priority.Tables{
		Subject: make(map[string]map[priority.Category]float64),
		Project: make(map[string]map[string]priority.ProjectWeight),
	}

	rows, err := s.db.Query(`SELECT subject_tag, category, weight FROM subject_weights`)
	if err != nil {
		return tables, err
	}
	defer rows.Close()
	for rows.Next() {
		var tag, category string
		var weight float64
		if err := rows.Scan(&tag, &category, &weight); err != nil {
			return tables, err
		}
		if tables.Subject[tag] == nil {
			tables.Subject[tag] = make(map[priority.Category]float64)
		}
		tables.Subject[tag][priority.Category(category)] = weight
	}
	if err := rows.Err(); err != nil {
		return tables, err
	}

	prows, err := s.db.Query(`SELECT subject_tag, section, avg FROM project_weights`)
	if err != nil {
		return tables, err
	}
	defer prows.Close()
	for prows.Next() {
		var tag, section string
		var avg float64
		if err := prows.Scan(&tag, &section, &avg); err != nil {
			return tables, err
		}
		if tables.Project[tag] == nil {
			tables.Project[tag] = make(map[string]priority.ProjectWeight)
		}
		tables.Project[tag][section] = priority.ProjectWeight{Avg: avg}
	}
	return tables, prows.Err()
}

// SyncProjectWeights copies project-level averages into the subject-level
// table for every subject that has project data but no table of its own.
// Returns the tags that were synced.
func (s *Store) SyncProjectWeights() ([]string, error) {
	tables, err := s.WeightTables()
	if err != nil {
		return nil, err
	}

	subjects, err := s.List()
	if err != nil {
		return nil, err
	}

	var synced []string
	for _, sub := range subjects {
		if len(tables.Subject[sub.Tag]) > 0 {
			continue
		}
		project, ok := tables.Project[sub.Tag]
		if !ok || len(project) == 0 {
			continue
		}

		for section, w := range project {
			if w.Avg == 0 {
				continue
			}
			if err := s.SetWeight(sub.Tag, section, w.Avg); err != nil {
				return synced, fmt.Errorf("syncing %q/%q: %w", sub.Tag, section, err)
			}
		}
		synced = append(synced, sub.Tag)
	}
	return synced, nil
}

// SubjectWeights returns one subject's stored weight table keyed by category.
func (s *Store) SubjectWeights(tag string) (map[priority.Category]float64, error) {
	rows, err := s.db.Query(
		`SELECT category, weight FROM subject_weights WHERE subject_tag = ? ORDER BY category ASC`, tag,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := make(map[priority.Category]float64)
	for rows.Next() {
		var category string
		var weight float64
		if err := rows.Scan(&category, &weight); err != nil {
			return nil, err
		}
		weights[priority.Category(category)] = weight
	}
	return weights, rows.Err()
}

// SetPerformance records the current grade standing for a subject.
// The percentage is clamped to [0,100] before storage.
func (s *Store) SetPerformance(tag string, pct float64) error {
	if _, err := s.Get(tag); err != nil {
		return err
	}
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	_, err := s.db.Exec(
		`INSERT INTO performance (subject_tag, pct, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(subject_tag) DO UPDATE SET pct = excluded.pct, updated_at = CURRENT_TIMESTAMP`,
		tag, pct,
	)
	return err
}

// PerformanceMap returns every subject's recorded performance percentage.
// Subjects with no recorded performance are simply absent (treated as 0
// by the engine).
func (s *Store) PerformanceMap() (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT subject_tag, pct FROM performance`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perf := make(map[string]float64)
	for rows.Next() {
		var tag string
		var pct float64
		if err := rows.Scan(&tag, &pct); err != nil {
			return nil, err
		}
		perf[tag] = pct
	}
	return perf, rows.Err()
}

// Performance returns one subject's recorded standing, or 0 when unset.
func (s *Store) Performance(tag string) (float64, error) {
	var pct float64
	err := s.db.QueryRow(`SELECT pct FROM performance WHERE subject_tag = ?`, tag).Scan(&pct)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return pct, err
}
