//go:build !windows

package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidAlive returns true if a process with the given pid exists (or EPERM).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// PIDFileDetector detects the gateway via the PID file it writes on
// startup. The file holds the PID on the first line; a second line may
// carry JSON metadata with the process start time, used to reject
// recycled PIDs.
type PIDFileDetector struct {
	PIDFile string
}

type pidMeta struct {
	StartUnix int64 `json:"start_unix"`
}

func (d PIDFileDetector) Alive() (bool, error) {
	data, err := os.ReadFile(d.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	pidStr := strings.TrimSpace(lines[0])
	if pidStr == "" {
		return false, fmt.Errorf("empty pidfile: %s", d.PIDFile)
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return false, fmt.Errorf("invalid pid in %s: %w", d.PIDFile, err)
	}

	if len(lines) >= 2 {
		var m pidMeta
		if err := json.Unmarshal([]byte(strings.TrimSpace(lines[1])), &m); err == nil && m.StartUnix > 0 {
			cur := procStartUnix(pid)
			if cur > 0 && cur != m.StartUnix {
				return false, nil // PID reused; not the gateway
			}
		}
	}

	return pidAlive(pid), nil
}

func (d PIDFileDetector) Describe() string { return "pidfile:" + d.PIDFile }
