package detector

import (
	"net"
	"time"
)

// DefaultProbeTimeout bounds a single TCP reachability probe.
const DefaultProbeTimeout = 2 * time.Second

// Detector is a strategy that determines whether the gateway the
// dispatcher depends on is currently available. Implementations may
// probe a TCP port, run a command, or inspect a PID file.
// It must be safe for concurrent use.
type Detector interface {
	// Alive returns true if the gateway is detected as available.
	Alive() (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}

// TCPDetector probes a host:port with a single connect attempt.
// A refused or timed-out connection means "not alive"; there is no retry.
type TCPDetector struct {
	Addr    string        // host:port, e.g. "localhost:8800"
	Timeout time.Duration // per-probe timeout; DefaultProbeTimeout when zero
}

func (d TCPDetector) Alive() (bool, error) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	conn, err := net.DialTimeout("tcp", d.Addr, timeout)
	if err != nil {
		// Unreachable is an expected outcome, not an error.
		return false, nil
	}
	_ = conn.Close()
	return true, nil
}

func (d TCPDetector) Describe() string { return "tcp:" + d.Addr }
