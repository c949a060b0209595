package tasks

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteSeed reads an initial collection out of a SQLite database. The
// running service never writes back; ExportSQLiteSeed (the -export-seed
// flag) is the only writer.
type SQLiteSeed struct {
	db *sql.DB
}

func OpenSQLiteSeed(dsn string) (*SQLiteSeed, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSeed{db: db}, nil
}

func (s *SQLiteSeed) Close() error { return s.db.Close() }

// ApplyMigrations ensures schema exists
func (s *SQLiteSeed) ApplyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT,
	created_at INTEGER
);
	`)
	return err
}

// Load returns every row ordered by id. NULL priority and created_at map to
// the zero value, the same as a seed record that omits them.
func (s *SQLiteSeed) Load(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, completed, priority, created_at
		FROM tasks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var (
			t        Task
			priority sql.NullString
			created  sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &priority, &created); err != nil {
			return nil, err
		}
		t.Priority = Priority(priority.String)
		t.CreatedAt = created.Int64
		out = append(out, t)
	}
	return out, rows.Err()
}

// Replace swaps the table contents for ts in one transaction. Unset
// priority and createdAt are stored as NULL.
func (s *SQLiteSeed) Replace(ctx context.Context, ts []Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (id, title, description, completed, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ts {
		priority := sql.NullString{String: string(t.Priority), Valid: t.Priority != ""}
		created := sql.NullInt64{Int64: t.CreatedAt, Valid: t.CreatedAt != 0}
		if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Description, t.Completed, priority, created); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ExportSQLiteSeed writes ts to a SQLite seed file at path, creating the
// file and schema when missing and replacing any existing rows.
func ExportSQLiteSeed(ctx context.Context, path string, ts []Task) error {
	dsn, err := SQLiteFileDSN(path, false)
	if err != nil {
		return err
	}
	s, err := OpenSQLiteSeed(dsn)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ApplyMigrations(ctx); err != nil {
		return err
	}
	return s.Replace(ctx, ts)
}

func loadSQLiteSeed(ctx context.Context, path string) ([]Task, error) {
	dsn, err := SQLiteFileDSN(path, true)
	if err != nil {
		return nil, err
	}
	s, err := OpenSQLiteSeed(dsn)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// SQLiteFileDSN builds a DSN like file:/absolute/path?_pragma=busy_timeout(5000).
// Read-only DSNs require the file to exist; writable ones create its directory.
func SQLiteFileDSN(path string, readOnly bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if readOnly {
		if _, err := os.Stat(abs); err != nil {
			return "", err
		}
		return "file:" + filepath.ToSlash(abs) + "?mode=ro&_pragma=busy_timeout(5000)", nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
