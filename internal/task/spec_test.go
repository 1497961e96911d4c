package task

import (
	"path/filepath"
	"testing"
)

func TestSessionIDFromFile(t *testing.T) {
	cases := map[string]string{
		"/home/u/.sessions/2026-08-26-standup.jsonl": "2026-08-26-standup",
		"transcript.txt": "transcript",
		"noext":          "noext",
		"/a/b/c.tar.gz":  "c.tar",
	}
	for in, want := range cases {
		if got := SessionIDFromFile(in); got != want {
			t.Fatalf("SessionIDFromFile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSpecDefaults(t *testing.T) {
	s := Spec{OutputDir: "/out/proj"}
	if got := s.LogFile(); got != filepath.Join("/out/proj", LogFileName) {
		t.Fatalf("LogFile default mismatch: %q", got)
	}
	if got := s.DatabasePath(); got != filepath.Join("/out/proj", DatabaseFileName) {
		t.Fatalf("DatabasePath mismatch: %q", got)
	}
	s.LogPath = "/tmp/explicit.log"
	if got := s.LogFile(); got != "/tmp/explicit.log" {
		t.Fatalf("explicit LogPath ignored: %q", got)
	}
}

func TestRunArgs(t *testing.T) {
	s := Spec{
		SessionFile: "/s/f.jsonl",
		SessionID:   "f",
		ProjectKey:  "proj",
		OutputDir:   "/out/proj",
		Extractor:   "minutes",
	}
	args := s.RunArgs()
	if args[0] != "run" {
		t.Fatalf("expected run subcommand, got %q", args[0])
	}
	for _, flag := range []string{"--session-file", "--session-id", "--project", "--output-dir", "--log", "--extractor"} {
		if !containsArg(args, flag) {
			t.Fatalf("missing %s in %v", flag, args)
		}
	}
	if containsArg(args, "--pipe-script") {
		t.Fatalf("pipe flags should be absent when unset: %v", args)
	}

	s.PipeScript = "/opt/pipe.py"
	s.EndpointVar = "AUTOMEM_ENDPOINT"
	args = s.RunArgs()
	if !containsArg(args, "--pipe-script") || !containsArg(args, "--endpoint-var") {
		t.Fatalf("pipe flags missing: %v", args)
	}
}

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
