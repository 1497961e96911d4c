//go:build windows

package detector

import "os/exec"

func shellCommand(script string) *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/c", script)
}

func alwaysTrueCommand() *exec.Cmd {
	// #nosec G204
	return exec.Command("cmd", "/c", "rem")
}
