package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/hookrelay/internal/journal"
)

// Sink appends dispatch events to a SQLite database.
type Sink struct {
	db *sql.DB
}

// New creates a SQLite journal sink.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:"
func New(dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	sink := &Sink{db: db}
	if err := sink.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	// Append-only audit table, no primary key.
	stmt := `CREATE TABLE IF NOT EXISTS dispatch_history(
		occurred_at TIMESTAMP NOT NULL DEFAULT (CURRENT_TIMESTAMP),
		session_id TEXT NOT NULL,
		project_key TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT,
		pid INTEGER NOT NULL DEFAULT 0,
		output_dir TEXT
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e journal.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatch_history(occurred_at, session_id, project_key, status, reason, pid, output_dir)
		VALUES(?, ?, ?, ?, ?, ?, ?);`,
		e.OccurredAt.UTC(), e.SessionID, e.ProjectKey, e.Status, e.Reason, e.PID, e.OutputDir)
	return err
}

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
