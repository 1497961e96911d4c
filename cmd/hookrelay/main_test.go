package main

import (
	"os/exec"
	"strings"
	"testing"
)

func TestHelpExitsZero(t *testing.T) {
	cmd := exec.Command("go", "run", ".", "--help")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("help should succeed: %v, out=%s", err, out)
	}
	if !strings.Contains(string(out), "hookrelay") {
		t.Fatalf("unexpected help output: %s", out)
	}
}

func TestRunCommandHiddenFromHelp(t *testing.T) {
	root := buildRoot()
	for _, c := range root.Commands() {
		if c.Name() == "run" {
			if !c.Hidden {
				t.Fatal("run subcommand should be hidden")
			}
			return
		}
	}
	t.Fatal("run subcommand not registered")
}
