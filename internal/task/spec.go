package task

import (
	"path/filepath"
	"strings"
)

// LogFileName is the fixed log file every stage of a task appends to,
// created under the task's output directory.
const LogFileName = "minutes.log"

// DatabaseFileName is the artifact the extraction CLI writes into the
// output directory; the memory pipe step consumes it.
const DatabaseFileName = "minutes.db"

// Spec describes one detached extraction task: run the extraction CLI
// over a session transcript, then best-effort pipe the result database
// into the memory store.
type Spec struct {
	SessionFile string   `json:"session_file"`
	SessionID   string   `json:"session_id"`
	ProjectKey  string   `json:"project_key"`
	OutputDir   string   `json:"output_dir"`
	LogPath     string   `json:"log_path"`               // defaults to OutputDir/minutes.log
	Extractor   string   `json:"extractor"`              // extraction CLI binary
	PipeScript  string   `json:"pipe_script,omitempty"`  // optional secondary script
	EndpointVar string   `json:"endpoint_var,omitempty"` // env var gating the pipe step
	Env         []string `json:"-"`                      // child environment; OS env when nil
}

// LogFile returns the task log path, defaulting under OutputDir.
func (s Spec) LogFile() string {
	if s.LogPath != "" {
		return s.LogPath
	}
	return filepath.Join(s.OutputDir, LogFileName)
}

// DatabasePath returns the extraction database the pipe step reads.
func (s Spec) DatabasePath() string {
	return filepath.Join(s.OutputDir, DatabaseFileName)
}

// RunArgs returns the argument vector for the hidden run subcommand.
// The launcher re-execs the current binary with these so the task runs
// in its own session, decoupled from the dispatcher's lifetime.
func (s Spec) RunArgs() []string {
	args := []string{"run",
		"--session-file", s.SessionFile,
		"--session-id", s.SessionID,
		"--project", s.ProjectKey,
		"--output-dir", s.OutputDir,
		"--log", s.LogFile(),
		"--extractor", s.Extractor,
	}
	if s.PipeScript != "" {
		args = append(args, "--pipe-script", s.PipeScript)
	}
	if s.EndpointVar != "" {
		args = append(args, "--endpoint-var", s.EndpointVar)
	}
	return args
}

// SessionIDFromFile derives a session identifier from the transcript
// file name: basename without extension.
func SessionIDFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
