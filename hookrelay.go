package hookrelay

import (
	"context"
	"io"
	"net/http"
	"time"

	cfg "github.com/loykin/hookrelay/internal/config"
	"github.com/loykin/hookrelay/internal/detector"
	"github.com/loykin/hookrelay/internal/dispatcher"
	"github.com/loykin/hookrelay/internal/journal"
	"github.com/loykin/hookrelay/internal/journal/factory"
	"github.com/loykin/hookrelay/internal/metrics"
	iapi "github.com/loykin/hookrelay/internal/server"
	"github.com/loykin/hookrelay/internal/task"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Payload = dispatcher.Payload

type Result = dispatcher.Result

type Config = dispatcher.Config

type FileConfig = cfg.FileConfig

type Detector = detector.Detector

type TCPDetector = detector.TCPDetector

type JournalSink = journal.Sink

type JournalEvent = journal.Event

// Dispatch result statuses.
const (
	StatusStarted = dispatcher.StatusStarted
	StatusSkipped = dispatcher.StatusSkipped
	StatusError   = dispatcher.StatusError
)

// Dispatcher is a thin facade over internal/dispatcher.Dispatcher.
// It provides a stable public API for embedding.

type Dispatcher struct{ inner *dispatcher.Dispatcher }

// New builds a dispatcher with the default detached-task launcher.
func New(c Config) *Dispatcher {
	return &Dispatcher{inner: dispatcher.New(c, nil)}
}

func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) Result {
	return d.inner.Dispatch(ctx, p)
}

// ParsePayload decodes one hook event payload from r.
func ParsePayload(r io.Reader) (Payload, error) {
	return dispatcher.ParsePayload(r)
}

// Task facade: the hidden run subcommand executes specs built by the
// dispatcher inside the detached child.

type TaskSpec = task.Spec

type TaskResult = task.Result

func RunTask(spec TaskSpec) (TaskResult, error) {
	return task.Runner{}.Run(spec)
}

func LoadConfig(path string) (*FileConfig, error) {
	return cfg.Load(path)
}

// NewJournalSink opens an append-only audit sink from a DSN
// (sqlite path, postgres:// or clickhouse:// URL).
func NewJournalSink(dsn string) (JournalSink, error) {
	return factory.NewSinkFromDSN(dsn)
}

// NewHTTPServer starts an HTTP server exposing the dispatch API using the given dispatcher.
func NewHTTPServer(addr, basePath string, d *Dispatcher) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, d.inner)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.RegisterDefault() }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
