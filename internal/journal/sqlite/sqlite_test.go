package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/hookrelay/internal/journal"
)

func TestSQLiteSinkAppend(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	sink, err := New("sqlite://" + dbPath)
	if err != nil {
		t.Fatalf("Failed to create sink: %v", err)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			t.Errorf("Failed to close sink: %v", err)
		}
	}()

	ctx := context.Background()

	events := []journal.Event{
		{
			OccurredAt: time.Now().UTC(),
			SessionID:  "2026-08-26-standup",
			ProjectKey: "proj",
			Status:     "started",
			PID:        4242,
			OutputDir:  "/out/proj",
		},
		{
			OccurredAt: time.Now().UTC(),
			SessionID:  "2026-08-26-standup",
			ProjectKey: "proj",
			Status:     "skipped",
			Reason:     "gateway not running",
		},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	var n int
	row := sink.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatch_history WHERE session_id = ?`, "2026-08-26-standup")
	if err := row.Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
}

func TestSQLiteSinkEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
