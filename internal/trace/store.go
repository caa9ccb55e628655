// Package trace provides the append-only execution audit store.
// Traces live in an SQLite database under the XDG data directory
// (~/.local/share/hive/hive.db) unless a path is given.
package trace

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Store wraps an SQLite database holding execution traces.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// GlobalDBPath returns the path to the global hive trace database.
func GlobalDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "hive", "hive.db")
}

// Open opens the trace database at the given path, creating parent
// directories as needed. WAL mode is enabled for concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{
		conn: conn,
		path: path,
	}

	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

// OpenGlobal opens the global hive trace database.
func OpenGlobal() (*Store, error) {
	return Open(GlobalDBPath())
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// migrate applies all pending schema migrations.
func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Traces},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}

	return nil
}

const migrationV1Traces = `
CREATE TABLE IF NOT EXISTS traces (
	execution_id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	goal TEXT,
	subtask_count INTEGER NOT NULL DEFAULT 0,
	outcome_count INTEGER NOT NULL DEFAULT 0,
	failed_count INTEGER NOT NULL DEFAULT 0,
	success INTEGER NOT NULL DEFAULT 0,
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_traces_task_id ON traces(task_id);
CREATE INDEX IF NOT EXISTS idx_traces_recorded_at ON traces(recorded_at);
`

// Append writes a single execution trace.
func (s *Store) Append(trace models.ExecutionTrace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO traces
			(execution_id, task_id, goal, subtask_count, outcome_count, failed_count, success, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, trace.ExecutionID, trace.TaskID, trace.Goal,
		trace.SubtaskCount, trace.OutcomeCount, trace.FailedCount,
		boolToInt(trace.Success), formatTime(trace.RecordedAt))
	if err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	return nil
}

// Recent returns up to n traces, newest first.
func (s *Store) Recent(n int) ([]models.ExecutionTrace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(`
		SELECT execution_id, task_id, goal, subtask_count, outcome_count, failed_count, success, recorded_at
		FROM traces
		ORDER BY recorded_at DESC, execution_id
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	var traces []models.ExecutionTrace
	for rows.Next() {
		var t models.ExecutionTrace
		var success int
		var recordedAt string
		if err := rows.Scan(&t.ExecutionID, &t.TaskID, &t.Goal,
			&t.SubtaskCount, &t.OutcomeCount, &t.FailedCount,
			&success, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		t.Success = success != 0
		if ts, err := parseTime(recordedAt); err == nil {
			t.RecordedAt = ts
		}
		traces = append(traces, t)
	}

	return traces, rows.Err()
}

// Purge deletes traces older than the specified duration.
// Returns the number of traces deleted.
func (s *Store) Purge(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := s.conn.Exec(`DELETE FROM traces WHERE recorded_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge old traces: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
