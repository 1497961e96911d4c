//go:build windows

package task

import (
	"os/exec"
	"syscall"
)

// Windows creation flags
const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// detach starts the child in its own process group without a console,
// so it survives parent exit.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewProcessGroup | detachedProcess,
	}
}
