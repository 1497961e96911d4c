package detector

import (
	"errors"
	"os/exec"
	"strings"
)

// CommandDetector runs a command that should exit zero when the gateway
// is available (e.g. a health-check script shipped with the gateway).
type CommandDetector struct{ Command string }

// buildProbeCommand constructs an *exec.Cmd for a detector command.
// A shell is only involved when the command contains shell
// metacharacters (G204 mitigation).
func buildProbeCommand(cmdStr string) *exec.Cmd {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return alwaysTrueCommand()
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return shellCommand(cmdStr)
	}
	fields := strings.Fields(cmdStr)
	// #nosec G204
	return exec.Command(fields[0], fields[1:]...)
}

func (d CommandDetector) Alive() (bool, error) {
	cmd := buildProbeCommand(d.Command)
	cmd.Stdout = nil
	cmd.Stderr = nil
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		// non-zero exit code means not alive
		return false, nil
	}
	return false, err
}

func (d CommandDetector) Describe() string { return "cmd:" + d.Command }
