// Package backup exports and restores the full study database as a
// single age-encrypted archive.
//
// The archive is passphrase-encrypted (age scrypt) and ASCII-armored so
// it survives copy-paste and cloud sync. Restores are validated before
// anything is touched, and file writes are atomic: temp file, fsync,
// rename.
package backup

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// ErrWrongPassphrase is returned when decryption fails due to a bad passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrCorruptedArchive is returned when the archive cannot be decrypted or parsed.
var ErrCorruptedArchive = errors.New("backup archive is corrupted or unreadable")

// Archive is the plaintext JSON payload inside the age file.
type Archive struct {
	ExportedAt time.Time          `json:"exportedAt"`
	Subjects   []SubjectRecord    `json:"subjects"`
	Tasks      []TaskRecord       `json:"tasks"`
	Weights    []WeightRecord     `json:"subjectWeights"`
	ProjectW   []ProjectWeight    `json:"projectWeights"`
	Marks      map[string]float64 `json:"performance"`
}

// SubjectRecord mirrors one row of the subjects table.
type SubjectRecord struct {
	Tag                 string  `json:"tag"`
	Name                string  `json:"name"`
	CreditHours         float64 `json:"creditHours"`
	RelativeScore       float64 `json:"relativeScore"`
	CognitiveDifficulty float64 `json:"cognitiveDifficulty"`
}

// TaskRecord mirrors one row of the tasks table.
type TaskRecord struct {
	ID         string `json:"id"`
	SubjectTag string `json:"subjectTag"`
	Title      string `json:"title"`
	Section    string `json:"section"`
	DueDate    string `json:"dueDate"`
	Done       bool   `json:"done"`
}

// WeightRecord mirrors one row of the subject_weights table.
type WeightRecord struct {
	SubjectTag string  `json:"subjectTag"`
	Category   string  `json:"category"`
	Weight     float64 `json:"weight"`
}

// ProjectWeight mirrors one row of the project_weights table.
type ProjectWeight struct {
	SubjectTag string  `json:"subjectTag"`
	Section    string  `json:"section"`
	Avg        float64 `json:"avg"`
}

// Export collects the full database state and writes an encrypted
// archive to w.
func Export(db *sql.DB, passphrase string, w io.Writer) error {
	arch, err := collect(db)
	if err != nil {
		return err
	}
	raw, err := encryptArchive(arch, passphrase)
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ExportFile writes an encrypted archive to path atomically.
func ExportFile(db *sql.DB, passphrase, path string) error {
	arch, err := collect(db)
	if err != nil {
		return err
	}
	raw, err := encryptArchive(arch, passphrase)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	return atomicWrite(path, raw)
}

// Import replaces the database contents with the archive read from r.
// The archive is fully decrypted and parsed before any table is
// modified; the replacement itself runs in one transaction.
func Import(db *sql.DB, passphrase string, r io.Reader) (*Archive, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	arch, err := decryptArchive(raw, passphrase)
	if err != nil {
		return nil, err
	}
	if err := restore(db, arch); err != nil {
		return nil, err
	}
	return arch, nil
}

// ImportFile restores the database from an encrypted archive on disk.
func ImportFile(db *sql.DB, passphrase, path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()
	return Import(db, passphrase, f)
}

func collect(db *sql.DB) (*Archive, error) {
	arch := &Archive{
		ExportedAt: time.Now().UTC(),
		Marks:      make(map[string]float64),
	}

	rows, err := db.Query(`SELECT tag, name, credit_hours, relative_score, cognitive_difficulty FROM subjects ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("collecting subjects: %w", err)
	}
	for rows.Next() {
		var s SubjectRecord
		if err := rows.Scan(&s.Tag, &s.Name, &s.CreditHours, &s.RelativeScore, &s.CognitiveDifficulty); err != nil {
			rows.Close()
			return nil, err
		}
		arch.Subjects = append(arch.Subjects, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT id, subject_tag, title, section, due_date, done FROM tasks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("collecting tasks: %w", err)
	}
	for rows.Next() {
		var t TaskRecord
		var done int
		if err := rows.Scan(&t.ID, &t.SubjectTag, &t.Title, &t.Section, &t.DueDate, &done); err != nil {
			rows.Close()
			return nil, err
		}
		t.Done = done != 0
		arch.Tasks = append(arch.Tasks, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT subject_tag, category, weight FROM subject_weights`)
	if err != nil {
		return nil, fmt.Errorf("collecting weights: %w", err)
	}
	for rows.Next() {
		var wr WeightRecord
		if err := rows.Scan(&wr.SubjectTag, &wr.Category, &wr.Weight); err != nil {
			rows.Close()
			return nil, err
		}
		arch.Weights = append(arch.Weights, wr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT subject_tag, section, avg FROM project_weights`)
	if err != nil {
		return nil, fmt.Errorf("collecting project weights: %w", err)
	}
	for rows.Next() {
		var pw ProjectWeight
		if err := rows.Scan(&pw.SubjectTag, &pw.Section, &pw.Avg); err != nil {
			rows.Close()
			return nil, err
		}
		arch.ProjectW = append(arch.ProjectW, pw)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT subject_tag, pct FROM performance`)
	if err != nil {
		return nil, fmt.Errorf("collecting performance: %w", err)
	}
	for rows.Next() {
		var tag string
		var pct float64
		if err := rows.Scan(&tag, &pct); err != nil {
			rows.Close()
			return nil, err
		}
		arch.Marks[tag] = pct
	}
	rows.Close()
	return arch, rows.Err()
}

// restore replaces all study data in one transaction. No merge is
// performed: existing rows are deleted first.
func restore(db *sql.DB, arch *Archive) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting restore: %w", err)
	}
	defer tx.Rollback()

	// Child tables cascade from subjects, but clear them explicitly so a
	// backup restores cleanly even onto a database with orphaned rows.
	for _, table := range []string{"performance", "project_weights", "subject_weights", "tasks", "subjects"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, s := range arch.Subjects {
		if _, err := tx.Exec(
			`INSERT INTO subjects (tag, name, credit_hours, relative_score, cognitive_difficulty) VALUES (?, ?, ?, ?, ?)`,
			s.Tag, s.Name, s.CreditHours, s.RelativeScore, s.CognitiveDifficulty,
		); err != nil {
			return fmt.Errorf("restoring subject %s: %w", s.Tag, err)
		}
	}
	for _, t := range arch.Tasks {
		done := 0
		if t.Done {
			done = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO tasks (id, subject_tag, title, section, due_date, done) VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.SubjectTag, t.Title, t.Section, t.DueDate, done,
		); err != nil {
			return fmt.Errorf("restoring task %q: %w", t.Title, err)
		}
	}
	for _, wr := range arch.Weights {
		if _, err := tx.Exec(
			`INSERT INTO subject_weights (subject_tag, category, weight) VALUES (?, ?, ?)`,
			wr.SubjectTag, wr.Category, wr.Weight,
		); err != nil {
			return fmt.Errorf("restoring weights for %s: %w", wr.SubjectTag, err)
		}
	}
	for _, pw := range arch.ProjectW {
		if _, err := tx.Exec(
			`INSERT INTO project_weights (subject_tag, section, avg) VALUES (?, ?, ?)`,
			pw.SubjectTag, pw.Section, pw.Avg,
		); err != nil {
			return fmt.Errorf("restoring project weights for %s: %w", pw.SubjectTag, err)
		}
	}
	for tag, pct := range arch.Marks {
		if _, err := tx.Exec(
			`INSERT INTO performance (subject_tag, pct) VALUES (?, ?)`, tag, pct,
		); err != nil {
			return fmt.Errorf("restoring performance for %s: %w", tag, err)
		}
	}

	return tx.Commit()
}

func encryptArchive(arch *Archive, passphrase string) ([]byte, error) {
	jsonBytes, err := json.Marshal(arch)
	if err != nil {
		return nil, fmt.Errorf("serializing backup: %w", err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age recipient: %w", err)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing age encryption: %w", err)
	}
	if _, err := w.Write(jsonBytes); err != nil {
		return nil, fmt.Errorf("encrypting backup: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}

	return buf.Bytes(), nil
}

func decryptArchive(raw []byte, passphrase string) (*Archive, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age identity: %w", err)
	}

	armorReader := armor.NewReader(bytes.NewReader(raw))
	r, err := age.Decrypt(armorReader, identity)
	if err != nil {
		// age does not export a typed wrong-passphrase error, so match on
		// the known message text.
		msg := err.Error()
		if strings.Contains(msg, "no identity matched") || strings.Contains(msg, "incorrect") {
			return nil, fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptedArchive, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading decrypted data: %v", ErrCorruptedArchive, err)
	}

	var arch Archive
	if err := json.Unmarshal(plaintext, &arch); err != nil {
		return nil, fmt.Errorf("%w: parsing backup JSON: %v", ErrCorruptedArchive, err)
	}
	if arch.Marks == nil {
		arch.Marks = make(map[string]float64)
	}
	return &arch, nil
}

// atomicWrite writes data to path atomically: temp file, fsync, rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cram-backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing backup data: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing backup data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing backup file: %w", err)
	}

	success = true
	return nil
}
