package detector

import (
	"net"
	"testing"
	"time"
)

func TestTCPDetectorAlive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	d := TCPDetector{Addr: ln.Addr().String(), Timeout: time.Second}
	alive, err := d.Alive()
	if err != nil || !alive {
		t.Fatalf("listener should be alive, got alive=%v err=%v", alive, err)
	}
	if d.Describe() != "tcp:"+ln.Addr().String() {
		t.Fatalf("Describe mismatch: %q", d.Describe())
	}
}

func TestTCPDetectorNotAlive(t *testing.T) {
	// Listen then close to obtain a port nobody is bound to.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	d := TCPDetector{Addr: addr, Timeout: 500 * time.Millisecond}
	alive, err := d.Alive()
	if err != nil || alive {
		t.Fatalf("closed port expected false,nil, got alive=%v err=%v", alive, err)
	}
}

func TestTCPDetectorDefaultTimeout(t *testing.T) {
	d := TCPDetector{Addr: "127.0.0.1:1"}
	start := time.Now()
	alive, err := d.Alive()
	if err != nil || alive {
		t.Fatalf("expected false,nil, got alive=%v err=%v", alive, err)
	}
	if elapsed := time.Since(start); elapsed > DefaultProbeTimeout+time.Second {
		t.Fatalf("probe exceeded default timeout: %v", elapsed)
	}
}
