//go:build !windows

package detector

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
	"github.com/tklauser/go-sysconf"
)

// procStartUnix returns the start time of a process as Unix seconds,
// or 0 when it cannot be determined.
func procStartUnix(pid int) int64 {
	if pid <= 0 {
		return 0
	}
	if runtime.GOOS == "linux" {
		return procStartUnixLinux(pid)
	}
	// Darwin/BSD: gopsutil resolves the creation time via sysctl.
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return 0
	}
	ms, err := p.CreateTime()
	if err != nil || ms <= 0 {
		return 0
	}
	return ms / 1000
}

// procStartUnixLinux computes the start time from /proc without
// spawning external processes.
func procStartUnixLinux(pid int) int64 {
	// /proc/[pid]/stat field 22 is starttime in clock ticks since boot.
	// The comm field may contain spaces, so scan from the closing paren.
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return 0
	}
	line := string(b)
	end := strings.LastIndex(line, ") ")
	if end == -1 {
		return 0
	}
	fields := strings.Fields(strings.TrimSpace(line[end+2:]))
	// fields[0] is the state (field 3 overall); starttime is index 19.
	if len(fields) < 20 {
		return 0
	}
	startTicks, err := strconv.ParseInt(fields[19], 10, 64)
	if err != nil || startTicks <= 0 {
		return 0
	}

	btime := bootTimeUnix()
	if btime == 0 {
		return 0
	}

	clk, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clk <= 0 {
		clk = 100
	}
	return btime + (startTicks / int64(clk))
}

// bootTimeUnix reads the btime entry from /proc/stat.
func bootTimeUnix() int64 {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()
	s := bufio.NewScanner(f)
	for s.Scan() {
		text := s.Text()
		if strings.HasPrefix(text, "btime ") {
			if bt, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(text, "btime ")), 10, 64); err == nil {
				return bt
			}
		}
	}
	return 0
}
