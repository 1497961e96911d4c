//go:build !windows

package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func baseSpec(t *testing.T) Spec {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o750); err != nil {
		t.Fatal(err)
	}
	session := filepath.Join(dir, "session.jsonl")
	if err := os.WriteFile(session, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return Spec{
		SessionFile: session,
		SessionID:   "session",
		ProjectKey:  "proj",
		OutputDir:   out,
		Extractor:   writeScript(t, dir, "extract.sh", `echo "extracted $1"`),
	}
}

func readLog(t *testing.T, spec Spec) string {
	t.Helper()
	b, err := os.ReadFile(spec.LogFile())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(b)
}

func TestRunExtractAndPipe(t *testing.T) {
	spec := baseSpec(t)
	dir := filepath.Dir(spec.Extractor)
	spec.PipeScript = writeScript(t, dir, "pipe.sh", `echo "piped $1 $2 $4"`)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = []string{"PATH=/usr/bin:/bin", "AUTOMEM_ENDPOINT=http://localhost:8001"}

	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExtractErr != nil || res.PipeErr != nil || res.PipeSkipped != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	log := readLog(t, spec)
	if !strings.Contains(log, "extracted "+spec.SessionFile) {
		t.Fatalf("extraction output missing from log: %q", log)
	}
	if !strings.Contains(log, "piped "+spec.DatabasePath()+" session proj") {
		t.Fatalf("pipe output missing from log: %q", log)
	}
}

func TestRunExtractFailureStopsChain(t *testing.T) {
	spec := baseSpec(t)
	dir := filepath.Dir(spec.Extractor)
	spec.Extractor = writeScript(t, dir, "bad.sh", `echo boom; exit 2`)
	spec.PipeScript = writeScript(t, dir, "pipe.sh", `echo "pipe ran"`)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = []string{"AUTOMEM_ENDPOINT=http://localhost:8001"}

	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExtractErr == nil {
		t.Fatal("expected extraction error")
	}
	log := readLog(t, spec)
	if !strings.Contains(log, "extraction failed") {
		t.Fatalf("failure line missing: %q", log)
	}
	if strings.Contains(log, "pipe ran") {
		t.Fatalf("pipe must not run after extraction failure: %q", log)
	}
}

func TestRunPipeSkippedWhenEndpointUnset(t *testing.T) {
	spec := baseSpec(t)
	dir := filepath.Dir(spec.Extractor)
	spec.PipeScript = writeScript(t, dir, "pipe.sh", `echo "pipe ran"`)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = []string{"PATH=/usr/bin:/bin"}

	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PipeSkipped != "AUTOMEM_ENDPOINT not set" {
		t.Fatalf("unexpected skip reason: %q", res.PipeSkipped)
	}
	if strings.Contains(readLog(t, spec), "pipe") {
		t.Fatalf("no pipe-related log line expected: %q", readLog(t, spec))
	}
}

func TestRunPipeSkippedWhenScriptMissingOrNotExecutable(t *testing.T) {
	spec := baseSpec(t)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = []string{"AUTOMEM_ENDPOINT=http://localhost:8001"}

	// absent script
	spec.PipeScript = filepath.Join(t.TempDir(), "missing.sh")
	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PipeSkipped != "pipe script not found" {
		t.Fatalf("unexpected skip reason: %q", res.PipeSkipped)
	}

	// present but not executable
	plain := filepath.Join(t.TempDir(), "pipe.sh")
	if err := os.WriteFile(plain, []byte("#!/bin/sh\necho hi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	spec.PipeScript = plain
	res, err = Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PipeSkipped != "pipe script not executable" {
		t.Fatalf("unexpected skip reason: %q", res.PipeSkipped)
	}
}

func TestRunPipeFailureIsSwallowed(t *testing.T) {
	spec := baseSpec(t)
	dir := filepath.Dir(spec.Extractor)
	spec.PipeScript = writeScript(t, dir, "pipe.sh", `exit 7`)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = []string{"AUTOMEM_ENDPOINT=http://localhost:8001"}

	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExtractErr != nil {
		t.Fatalf("extraction should succeed: %v", res.ExtractErr)
	}
	if res.PipeErr == nil {
		t.Fatal("expected swallowed pipe error")
	}
	if !strings.Contains(readLog(t, spec), "memory pipe failed (ignored)") {
		t.Fatalf("pipe failure line missing: %q", readLog(t, spec))
	}
}

func TestRunnerEndpointFromOSEnv(t *testing.T) {
	spec := baseSpec(t)
	dir := filepath.Dir(spec.Extractor)
	spec.PipeScript = writeScript(t, dir, "pipe.sh", `echo "pipe ran"`)
	spec.EndpointVar = "AUTOMEM_ENDPOINT"
	spec.Env = nil // child mode: consult process env

	t.Setenv("AUTOMEM_ENDPOINT", "http://localhost:8001")
	res, err := Runner{}.Run(spec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PipeSkipped != "" {
		t.Fatalf("pipe should run with OS env endpoint, skipped: %q", res.PipeSkipped)
	}
}
