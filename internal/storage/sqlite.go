// Package storage provides SQLite-based persistence for frame loop run
// statistics. Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Exit reasons recorded for a run.
const (
	ReasonExit       = "exit"       // The app asked to exit
	ReasonClosed     = "closed"     // The window was closed
	ReasonFailed     = "failed"     // An app callback returned an error
	ReasonDisconnect = "disconnect" // The host went away (SSH session ended)
)

// Store manages the SQLite database connection for run statistics.
type Store struct {
	db *sql.DB
}

// RunRecord is the summary of one hosted run.
type RunRecord struct {
	ID           int64
	AppID        string
	User         string
	Ticks        int64
	Updates      int64
	Renders      int64
	ClampedTicks int64
	TargetStep   time.Duration
	Duration     time.Duration
	Reason       string
	Error        string // Empty unless Reason is ReasonFailed
	CreatedAt    time.Time
}

// RunTotals aggregates all runs of one app.
type RunTotals struct {
	Runs     int64
	Updates  int64
	Renders  int64
	Failures int64
	Duration time.Duration
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			app_id TEXT NOT NULL,
			user TEXT NOT NULL DEFAULT '',
			ticks INTEGER NOT NULL DEFAULT 0,
			updates INTEGER NOT NULL DEFAULT 0,
			renders INTEGER NOT NULL DEFAULT 0,
			clamped_ticks INTEGER NOT NULL DEFAULT 0,
			target_step_ns INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_app_id ON runs(app_id);
		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run and returns its ID.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (app_id, user, ticks, updates, renders, clamped_ticks,
			target_step_ns, duration_ns, reason, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.AppID, r.User, r.Ticks, r.Updates, r.Renders, r.ClampedTicks,
		int64(r.TargetStep), int64(r.Duration), r.Reason, r.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentRuns returns the latest runs, newest first. An empty appID returns
// runs of every app.
func (s *Store) RecentRuns(appID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, app_id, user, ticks, updates, renders, clamped_ticks,
			target_step_ns, duration_ns, reason, error, created_at
		 FROM runs
		 WHERE ? = '' OR app_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		appID, appID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var step, dur int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.AppID, &r.User, &r.Ticks, &r.Updates, &r.Renders,
			&r.ClampedTicks, &step, &dur, &r.Reason, &r.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.TargetStep = time.Duration(step)
		r.Duration = time.Duration(dur)

		// Parse the datetime - handle both time.Time and string
		switch v := createdAt.(type) {
		case time.Time:
			r.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				r.CreatedAt = parsed
			}
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// Totals aggregates every run of the given app.
func (s *Store) Totals(appID string) (RunTotals, error) {
	var t RunTotals
	var dur int64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(updates), 0), COALESCE(SUM(renders), 0),
			COALESCE(SUM(CASE WHEN reason = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(duration_ns), 0)
		 FROM runs WHERE app_id = ?`,
		ReasonFailed, appID,
	).Scan(&t.Runs, &t.Updates, &t.Renders, &t.Failures, &dur)
	if err != nil {
		return t, fmt.Errorf("storage: cannot query totals: %w", err)
	}
	t.Duration = time.Duration(dur)
	return t, nil
}

// ClearRuns deletes all runs of the given app.
func (s *Store) ClearRuns(appID string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE app_id = ?", appID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}
