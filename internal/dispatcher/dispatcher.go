package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/loykin/hookrelay/internal/detector"
	"github.com/loykin/hookrelay/internal/journal"
	"github.com/loykin/hookrelay/internal/metrics"
	"github.com/loykin/hookrelay/internal/task"
)

// Dispatch result statuses.
const (
	StatusStarted = "started"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Defaults applied by New when the config leaves fields zero.
const (
	DefaultMinDuration = 120 // seconds
	DefaultGatewayAddr = "localhost:8800"
	DefaultExtractor   = "minutes"
	DefaultEndpointVar = "AUTOMEM_ENDPOINT"
	DefaultProjectKey  = "default"
)

// Result is the synchronous answer to one dispatch. It is produced
// once and reflects only the validation phase; the background task's
// eventual outcome is visible solely in the task log.
type Result struct {
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	PID       int    `json:"pid,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
}

// Config carries everything the dispatcher would otherwise have to
// read from ambient environment: output root, gateway probe, duration
// threshold and the external collaborators' paths.
type Config struct {
	OutputRoot  string            // per-project output dirs live under here
	MinDuration int64             // seconds; sessions shorter than this are skipped
	Extractor   string            // extraction CLI binary, resolved on PATH
	InstallHint string            // appended to the missing-extractor reason
	PipeScript  string            // optional secondary script
	EndpointVar string            // env var gating the pipe step
	Gateway     detector.Detector // availability probe for the dependency service
	TaskEnv     []string          // environment for spawned tasks; OS env when nil
	Journal     journal.Sink      // optional append-only audit sink
	Logger      *slog.Logger
}

// Dispatcher validates session-end events and launches detached
// extraction tasks. Each Dispatch call is independent; no state is
// carried across invocations beyond filesystem side effects.
type Dispatcher struct {
	cfg      Config
	launcher task.Launcher
}

// New applies defaults and binds the dispatcher to a task launcher.
func New(cfg Config, launcher task.Launcher) *Dispatcher {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.Extractor == "" {
		cfg.Extractor = DefaultExtractor
	}
	if cfg.EndpointVar == "" {
		cfg.EndpointVar = DefaultEndpointVar
	}
	if cfg.Gateway == nil {
		cfg.Gateway = detector.TCPDetector{Addr: DefaultGatewayAddr}
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = defaultOutputRoot()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if launcher == nil {
		launcher = task.ReexecLauncher{}
	}
	return &Dispatcher{cfg: cfg, launcher: launcher}
}

// Dispatch runs the short-circuit validation chain and, when all
// checks pass, launches the detached extraction task. It never
// retries: a transient failure simply skips this invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) Result {
	begin := time.Now()
	res := d.dispatch(p)
	metrics.ObserveValidation(time.Since(begin).Seconds())
	metrics.IncDispatch(res.Status)
	d.record(ctx, p, res)
	return res
}

func (d *Dispatcher) dispatch(p Payload) Result {
	log := d.cfg.Logger

	// 1. the session transcript must exist
	if p.SessionFile == "" {
		return Result{Status: StatusSkipped, Reason: "no session file"}
	}
	info, err := os.Stat(p.SessionFile)
	if err != nil || !info.Mode().IsRegular() {
		log.Debug("session file missing", "path", p.SessionFile)
		return Result{Status: StatusSkipped, Reason: "no session file"}
	}

	// 2. short sessions are not worth extracting
	if p.Duration < d.cfg.MinDuration {
		return Result{
			Status: StatusSkipped,
			Reason: fmt.Sprintf("session too short: %d seconds (minimum %d)", p.Duration, d.cfg.MinDuration),
		}
	}

	// 3. single gateway probe, no retry
	alive, err := d.cfg.Gateway.Alive()
	if err != nil {
		log.Warn("gateway probe failed", "detector", d.cfg.Gateway.Describe(), "error", err)
	}
	if err != nil || !alive {
		return Result{Status: StatusSkipped, Reason: "gateway not running"}
	}

	// 4. the extraction CLI is a hard requirement
	if _, err := exec.LookPath(d.cfg.Extractor); err != nil {
		reason := d.cfg.Extractor + " not found on PATH"
		if d.cfg.InstallHint != "" {
			reason += "; " + d.cfg.InstallHint
		}
		return Result{Status: StatusError, Reason: reason}
	}

	projectKey := p.ProjectKey
	if projectKey == "" {
		projectKey = DefaultProjectKey
	}
	outputDir := filepath.Join(d.cfg.OutputRoot, projectKey)
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return Result{Status: StatusError, Reason: fmt.Sprintf("create output dir: %v", err)}
	}

	spec := task.Spec{
		SessionFile: p.SessionFile,
		SessionID:   task.SessionIDFromFile(p.SessionFile),
		ProjectKey:  projectKey,
		OutputDir:   outputDir,
		Extractor:   d.cfg.Extractor,
		PipeScript:  d.cfg.PipeScript,
		EndpointVar: d.cfg.EndpointVar,
		Env:         d.cfg.TaskEnv,
	}
	pid, err := d.launcher.Launch(spec)
	if err != nil {
		return Result{Status: StatusError, Reason: fmt.Sprintf("launch background task: %v", err)}
	}

	metrics.IncTaskLaunch(projectKey)
	log.Info("extraction task started", "pid", pid, "session", spec.SessionID, "project", projectKey)
	return Result{Status: StatusStarted, PID: pid, OutputDir: outputDir}
}

// GatewayState probes the configured gateway detector once and
// returns its current state with the detector description.
func (d *Dispatcher) GatewayState() (alive bool, desc string) {
	alive, err := d.cfg.Gateway.Alive()
	if err != nil {
		alive = false
	}
	return alive, d.cfg.Gateway.Describe()
}

// record appends the outcome to the journal sink, best effort.
func (d *Dispatcher) record(ctx context.Context, p Payload, res Result) {
	if d.cfg.Journal == nil {
		return
	}
	sessionID := ""
	if p.SessionFile != "" {
		sessionID = task.SessionIDFromFile(p.SessionFile)
	}
	e := journal.Event{
		OccurredAt: time.Now().UTC(),
		SessionID:  sessionID,
		ProjectKey: p.ProjectKey,
		Status:     res.Status,
		Reason:     res.Reason,
		PID:        res.PID,
		OutputDir:  res.OutputDir,
	}
	if err := d.cfg.Journal.Send(ctx, e); err != nil {
		d.cfg.Logger.Warn("journal append failed", "error", err)
	}
}

func defaultOutputRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "hookrelay")
	}
	return filepath.Join(home, ".hookrelay", "minutes")
}
