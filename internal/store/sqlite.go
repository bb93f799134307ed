// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Opens the database, applies pragmas, and creates the schema on start

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. The special path ":memory:"
// opens a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	memory := path == ":memory:"
	if !memory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	// foreign_keys and busy_timeout are per-connection, so they go in the DSN
	// to apply to every connection in the pool.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if memory {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,

			-- foldText(title) and foldText(description), searched instead of
			-- LOWER(), which only folds ASCII
			title_fold       TEXT NOT NULL DEFAULT '',
			description_fold TEXT NOT NULL DEFAULT '',

			CHECK (status IN ('pending', 'completed')),
			CHECK (title <> ''),
			CHECK (description <> '')
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_owner_created ON tasks(owner_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_tasks_owner_status ON tasks(owner_id, status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times.
func (s *SQLiteStore) runMigrations() error {
	// SQLite doesn't support ADD COLUMN IF NOT EXISTS, so we check first
	migrations := []struct {
		check  string // Query to check if migration is needed
		apply  string // Query to apply the migration
		column string // Column name for logging
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('tasks') WHERE name = 'title_fold'`,
			apply:  `ALTER TABLE tasks ADD COLUMN title_fold TEXT NOT NULL DEFAULT ''`,
			column: "title_fold",
		},
		{
			check:  `SELECT 1 FROM pragma_table_info('tasks') WHERE name = 'description_fold'`,
			apply:  `ALTER TABLE tasks ADD COLUMN description_fold TEXT NOT NULL DEFAULT ''`,
			column: "description_fold",
		},
	}

	applied := false
	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == nil {
			// Column already exists, skip
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to tasks: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "tasks")
		applied = true
	}

	if applied {
		return s.backfillFolds()
	}
	return nil
}

// backfillFolds fills the search columns of rows written before they existed.
// Titles are never empty, so an empty title_fold marks an unfilled row.
func (s *SQLiteStore) backfillFolds() error {
	rows, err := s.db.Query(`SELECT id, title, description FROM tasks WHERE title_fold = ''`)
	if err != nil {
		return fmt.Errorf("selecting tasks to backfill: %w", err)
	}

	type pending struct{ id, title, description string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.title, &p.description); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scanning task to backfill: %w", err)
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterating tasks to backfill: %w", err)
	}
	_ = rows.Close()

	for _, p := range todo {
		if _, err := s.db.Exec(`UPDATE tasks SET title_fold = ?, description_fold = ? WHERE id = ?`,
			foldText(p.title), foldText(p.description), p.id); err != nil {
			return fmt.Errorf("backfilling task %s: %w", p.id, err)
		}
	}
	if len(todo) > 0 {
		s.logger.Info("backfilled search columns", "tasks", len(todo))
	}
	return nil
}

// Ping checks that the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
