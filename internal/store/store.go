package store

import (
	"database/sql"
	"fmt"

	"github.com/rnwolfe/cram/internal/config"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the cram database.
func Open() (*DB, error) {
	paths := config.GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data dirs: %w", err)
	}

	return openPath(paths.DBFile + "?_journal_mode=WAL&_busy_timeout=5000")
}

// OpenMemory opens a fresh in-memory database. Used in tests.
func OpenMemory() (*DB, error) {
	return openPath(":memory:")
}

func openPath(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Performance pragmas
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the raw sql.DB for direct queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// migrate runs all schema migrations.
func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Academic subjects. relative_score is the credit-hour weight on a
		// 0-100 scale, recomputed whenever credit hours change.
		`CREATE TABLE IF NOT EXISTS subjects (
			tag TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			credit_hours REAL NOT NULL DEFAULT 3,
			relative_score REAL NOT NULL DEFAULT 0,
			cognitive_difficulty REAL NOT NULL DEFAULT 50,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Tasks. due_date keeps the raw user input; the scoring engine
		// parses it tolerantly.
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			subject_tag TEXT NOT NULL REFERENCES subjects(tag) ON DELETE CASCADE,
			title TEXT NOT NULL,
			section TEXT NOT NULL DEFAULT 'assignment',
			due_date TEXT DEFAULT '',
			done INTEGER DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_subject ON tasks(subject_tag)`,
		// Per-subject grading weight tables (the authoritative source).
		`CREATE TABLE IF NOT EXISTS subject_weights (
			subject_tag TEXT NOT NULL REFERENCES subjects(tag) ON DELETE CASCADE,
			category TEXT NOT NULL,
			weight REAL NOT NULL,
			PRIMARY KEY (subject_tag, category)
		)`,
		// Imported class-average weights, keyed by the label as imported
		// (fallback source when a subject has no table of its own).
		`CREATE TABLE IF NOT EXISTS project_weights (
			subject_tag TEXT NOT NULL REFERENCES subjects(tag) ON DELETE CASCADE,
			section TEXT NOT NULL,
			avg REAL NOT NULL,
			PRIMARY KEY (subject_tag, section)
		)`,
		// Current grade standing per subject, 0-100.
		`CREATE TABLE IF NOT EXISTS performance (
			subject_tag TEXT PRIMARY KEY REFERENCES subjects(tag) ON DELETE CASCADE,
			pct REAL NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		// Key-value store for misc state (last computed ranking lives here).
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	return nil
}

// SetKV stores a value in the kv table, replacing any previous value.
func (db *DB) SetKV(key, value string) error {
	_, err := db.conn.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

// GetKV fetches a value from the kv table. Missing keys return "" with no error.
func (db *DB) GetKV(key string) (string, error) {
	var value sql.NullString
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}
