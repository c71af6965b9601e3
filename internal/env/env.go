package env

import (
	"os"
	"sort"
	"strings"
)

type entry struct {
	key   string // key as first seen, original casing
	value string
}

// Env is an explicit environment block handed to a child process at
// creation time. It never touches the launcher's own environment.
type Env struct {
	vars map[string]entry // folded key -> entry
}

func New() *Env {
	return &Env{vars: make(map[string]entry)}
}

// FromOS snapshots the current process environment.
func FromOS() *Env {
	return FromList(os.Environ())
}

// FromList builds a block from "K=V" entries. Later duplicates win.
// Windows per-drive entries such as "=C:=C:\work" are kept.
func FromList(kvs []string) *Env {
	e := New()
	for _, kv := range kvs {
		k, v, ok := split(kv)
		if !ok {
			continue
		}
		e.Set(k, v)
	}
	return e
}

func split(kv string) (string, string, bool) {
	start := 0
	if strings.HasPrefix(kv, "=") {
		start = 1
	}
	i := strings.IndexByte(kv[start:], '=')
	if i < 0 {
		return "", "", false
	}
	i += start
	return kv[:i], kv[i+1:], true
}

// Lookup returns the value for k. Keys compare case-insensitively on Windows.
func (e *Env) Lookup(k string) (string, bool) {
	if e == nil || e.vars == nil {
		return "", false
	}
	ent, ok := e.vars[fold(k)]
	return ent.value, ok
}

// Set sets k=v, keeping the casing of an existing key.
func (e *Env) Set(k, v string) {
	if k == "" {
		return
	}
	if e.vars == nil {
		e.vars = make(map[string]entry)
	}
	f := fold(k)
	if old, ok := e.vars[f]; ok {
		k = old.key
	}
	e.vars[f] = entry{key: k, value: v}
}

// Unset removes k.
func (e *Env) Unset(k string) {
	if e.vars != nil {
		delete(e.vars, fold(k))
	}
}

func (e *Env) Len() int { return len(e.vars) }

// Clone returns an independent copy.
func (e *Env) Clone() *Env {
	c := &Env{vars: make(map[string]entry, len(e.vars))}
	for k, v := range e.vars {
		c.vars[k] = v
	}
	return c
}

// Environ returns the block as "K=V" entries sorted by key, the order
// CreateProcess expects for a Unicode environment block.
func (e *Env) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		ent := e.vars[k]
		out = append(out, ent.key+"="+ent.value)
	}
	return out
}
