package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/loykin/hookrelay/internal/journal"
)

// Sink appends dispatch events to ClickHouse using the official client.
type Sink struct {
	conn  driver.Conn
	table string
}

// New connects to addr (host:port, native protocol) and targets table.
// The table is created if missing.
func New(addr, table string) (*Sink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
			Password: "",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	s := &Sink{conn: conn, table: table}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		occurred_at DateTime,
		session_id String,
		project_key String,
		status String,
		reason String,
		pid Int64,
		output_dir String
	) ENGINE = MergeTree() ORDER BY occurred_at`, s.table)
	return s.conn.Exec(ctx, stmt)
}

func (s *Sink) Send(ctx context.Context, e journal.Event) error {
	query := fmt.Sprintf(`INSERT INTO %s (occurred_at, session_id, project_key, status, reason, pid, output_dir) VALUES (?, ?, ?, ?, ?, ?, ?)`, s.table)
	err := s.conn.Exec(ctx, query,
		e.OccurredAt,
		e.SessionID,
		e.ProjectKey,
		e.Status,
		e.Reason,
		int64(e.PID),
		e.OutputDir,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
