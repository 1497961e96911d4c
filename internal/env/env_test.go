package env

import (
	"strings"
	"testing"
)

func find(kvs []string, key string) (string, bool) {
	for _, kv := range kvs {
		if strings.HasPrefix(kv, key+"=") {
			return strings.TrimPrefix(kv, key+"="), true
		}
	}
	return "", false
}

func TestMergeOverridesAndExpansion(t *testing.T) {
	e := New()
	e.env = Var{"HOME": "/home/u", "PATH": "/usr/bin"}
	e.Set("AUTOMEM_ENDPOINT", "http://localhost:8001")
	e.Set("OUT", "${HOME}/minutes")

	merged := e.Merge([]string{"PATH=/opt/bin", "SESSION=abc"})

	if v, ok := find(merged, "AUTOMEM_ENDPOINT"); !ok || v != "http://localhost:8001" {
		t.Fatalf("endpoint override missing: %v", merged)
	}
	if v, _ := find(merged, "PATH"); v != "/opt/bin" {
		t.Fatalf("per-task override should win, got %q", v)
	}
	if v, _ := find(merged, "OUT"); v != "/home/u/minutes" {
		t.Fatalf("expansion failed, got %q", v)
	}
	if v, _ := find(merged, "SESSION"); v != "abc" {
		t.Fatalf("per-task var missing, got %q", v)
	}
}

func TestMergeSkipsMalformedEntries(t *testing.T) {
	e := New()
	e.env = Var{"A": "1"}
	merged := e.Merge([]string{"=bad", "novalue"})
	if len(merged) != 1 || merged[0] != "A=1" {
		t.Fatalf("malformed entries should be skipped, got %v", merged)
	}
}

func TestMergeUsesOSBaseWhenUncached(t *testing.T) {
	t.Setenv("HOOKRELAY_TEST_VAR", "present")
	e := New()
	merged := e.Merge(nil)
	if v, ok := find(merged, "HOOKRELAY_TEST_VAR"); !ok || v != "present" {
		t.Fatalf("OS env base missing: %q %v", v, ok)
	}
}
