// Package env composes the environment passed to detached background
// tasks: the OS environment as base, overridden by configured globals.
// The endpoint variable gating the memory pipe step travels this way.
package env

import (
	"os"
	"strings"
)

type Var map[string]string

type Env struct {
	Var Var // configured overrides (K->V)
	env Var // cached base from the OS environment
}

func New() *Env {
	return &Env{Var: make(Var)}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	base := make(Var)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k, v := kv[:i], kv[i+1:]
			if k == "" {
				continue
			}
			base[k] = v
		}
	}
	e.env = base
}

// EmptyBase replaces the OS base with an empty one, producing a fully
// explicit environment from the configured overrides alone.
func (e *Env) EmptyBase() { e.env = make(Var) }

// Set sets a global override K=V.
func (e *Env) Set(k, v string) {
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[k] = v
}

// Merge composes the final environment slice in "K=V" form.
// Order: OS base, then global overrides, then perTask overrides.
// ${VAR} references are expanded against the composed map (single
// pass, no recursion).
func (e *Env) Merge(perTask []string) []string {
	if e.env == nil {
		e.FromOS()
	}
	m := make(Var, len(e.env)+len(e.Var)+len(perTask))
	for k, v := range e.env {
		m[k] = v
	}
	for k, v := range e.Var {
		if k == "" {
			continue
		}
		m[k] = v
	}
	for _, kv := range perTask {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k, v := kv[:i], kv[i+1:]
			if k == "" {
				continue
			}
			m[k] = v
		}
	}

	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+expand(v, m))
	}
	return out
}

func expand(s string, m Var) string {
	if !strings.Contains(s, "${") {
		return s
	}
	res := s
	for k, v := range m {
		res = strings.ReplaceAll(res, "${"+k+"}", v)
	}
	return res
}
