//go:build !windows

package task

import (
	"os/exec"
	"syscall"
)

// detach starts the child in a new session (setsid) so it is separated
// from the controlling terminal and survives parent exit.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
