package journal

import (
	"context"
	"time"
)

// Event is one dispatch outcome. Events are append-only observability
// data: the dispatcher writes them and never reads them back, so the
// journal cannot influence a dispatch decision.
type Event struct {
	OccurredAt time.Time `json:"occurred_at"`
	SessionID  string    `json:"session_id"`
	ProjectKey string    `json:"project_key"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	PID        int       `json:"pid,omitempty"`
	OutputDir  string    `json:"output_dir,omitempty"`
}

// Sink is a destination for dispatch events (audit/analytics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
