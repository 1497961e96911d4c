package task

import (
	"fmt"
	"os"
	"os/exec"
)

// Launcher starts a spec as a background task decoupled from the
// caller's lifetime. Launch returns as soon as the child has started;
// the task's eventual outcome is only visible in its log file.
type Launcher interface {
	Launch(spec Spec) (pid int, err error)
}

// ReexecLauncher re-runs the current executable's hidden run
// subcommand in a new session (setsid on Unix), so the task keeps
// running after both the dispatcher and its invoking host exit.
type ReexecLauncher struct {
	// Executable overrides the binary to re-exec; defaults to the
	// current executable. Used by tests.
	Executable string
}

func (l ReexecLauncher) Launch(spec Spec) (int, error) {
	exe := l.Executable
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return 0, fmt.Errorf("resolve executable: %w", err)
		}
	}

	logF, err := os.OpenFile(spec.LogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open task log: %w", err)
	}
	defer func() { _ = logF.Close() }()

	// #nosec G204 -- re-exec of our own binary
	cmd := exec.Command(exe, spec.RunArgs()...)
	cmd.Env = spec.Env
	cmd.Stdin = nil
	cmd.Stdout = logF
	cmd.Stderr = logF
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start background task: %w", err)
	}
	pid := cmd.Process.Pid
	// Do not wait: the child owns its own session now.
	_ = cmd.Process.Release()
	return pid, nil
}
