package task

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result reports the outcome of a task's sequential stages. The
// extraction stage is fatal: a failure there ends the chain. The pipe
// stage is best-effort: its failure is recorded and swallowed.
type Result struct {
	ExtractErr  error  // non-nil when the extraction CLI failed
	PipeSkipped string // reason the pipe stage did not run; empty when it ran
	PipeErr     error  // non-fatal pipe failure, already logged
}

// Runner executes a task spec synchronously. It runs inside the
// detached child process; the dispatcher never waits on it.
type Runner struct {
	// LookupEnv resolves the endpoint variable for the pipe gate.
	// Defaults to os.LookupEnv; the spec's Env slice takes precedence
	// when present so launched children see exactly what they were given.
	LookupEnv func(string) (string, bool)
}

// Run executes extract -> status check -> optional pipe, strictly in
// order, appending all output to the spec's log file. Only an
// infrastructure failure (unopenable log) is returned as an error.
func (r Runner) Run(spec Spec) (Result, error) {
	var res Result

	logF, err := os.OpenFile(spec.LogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return res, fmt.Errorf("open task log: %w", err)
	}
	defer func() { _ = logF.Close() }()

	// Extraction stage. Combined stdout/stderr goes to the log; a
	// non-zero exit ends the chain.
	// #nosec G204 -- extractor path comes from validated config
	extract := exec.Command(spec.Extractor, spec.SessionFile, "--output-dir", spec.OutputDir)
	extract.Env = spec.Env
	extract.Stdout = logF
	extract.Stderr = logF
	if err := extract.Run(); err != nil {
		res.ExtractErr = err
		r.logLine(logF, "extraction failed: %v", err)
		return res, nil
	}

	// Memory pipe stage, only when eligible. Failures are swallowed.
	if reason := r.pipeGate(spec); reason != "" {
		res.PipeSkipped = reason
		return res, nil
	}
	// #nosec G204 -- pipe script path comes from validated config
	pipe := exec.Command(spec.PipeScript, spec.DatabasePath(), spec.SessionID, "--project", spec.ProjectKey)
	pipe.Env = spec.Env
	pipe.Stdout = logF
	pipe.Stderr = logF
	if err := pipe.Run(); err != nil {
		res.PipeErr = err
		r.logLine(logF, "memory pipe failed (ignored): %v", err)
	}
	return res, nil
}

// pipeGate returns a skip reason when the pipe stage must not run.
func (r Runner) pipeGate(spec Spec) string {
	if spec.PipeScript == "" {
		return "no pipe script configured"
	}
	info, err := os.Stat(spec.PipeScript)
	if err != nil || !info.Mode().IsRegular() {
		return "pipe script not found"
	}
	if !isExecutable(info) {
		return "pipe script not executable"
	}
	if spec.EndpointVar != "" {
		if v, ok := r.lookupEnv(spec); !ok || v == "" {
			return spec.EndpointVar + " not set"
		}
	}
	return ""
}

func (r Runner) lookupEnv(spec Spec) (string, bool) {
	prefix := spec.EndpointVar + "="
	for _, kv := range spec.Env {
		if strings.HasPrefix(kv, prefix) {
			v := strings.TrimPrefix(kv, prefix)
			return v, true
		}
	}
	if spec.Env != nil {
		return "", false
	}
	if r.LookupEnv != nil {
		return r.LookupEnv(spec.EndpointVar)
	}
	return os.LookupEnv(spec.EndpointVar)
}

func (r Runner) logLine(f *os.File, format string, args ...any) {
	ts := time.Now().UTC().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(f, "["+ts+"] "+format+"\n", args...)
}
