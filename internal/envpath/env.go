package envpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// pathKey is the canonical name of the search-path variable. Windows
// environments frequently carry it as "Path"; lookups fold case for this
// variable on every platform so both spellings resolve to the same entry.
const pathKey = "PATH"

// Environment is an ordered copy of the process environment. It is mutated
// in place by the provisioning steps and handed to child processes via
// Environ(). Nothing is ever written back to the OS-level environment
// store — children inherit the mutated copy, the OS keeps its own.
type Environment struct {
	vars []string
}

// New captures the current process environment.
func New() *Environment {
	return NewFrom(os.Environ())
}

// NewFrom builds an Environment from an explicit "KEY=value" slice.
// The slice is copied; the caller's backing array is never mutated.
func NewFrom(vars []string) *Environment {
	copied := make([]string, len(vars))
	copy(copied, vars)
	return &Environment{vars: copied}
}

// Environ returns the environment as a "KEY=value" slice suitable for
// exec.Cmd.Env. The returned slice is a copy.
func (e *Environment) Environ() []string {
	out := make([]string, len(e.vars))
	copy(out, e.vars)
	return out
}

// Get returns the value for key, or "" if unset. On Windows the lookup is
// case-insensitive, matching OS semantics.
func (e *Environment) Get(key string) string {
	if i := e.index(key); i >= 0 {
		return e.vars[i][len(key)+1:]
	}
	return ""
}

// Set assigns key to value, replacing an existing entry (including a
// case-variant entry on Windows) or appending a new one.
func (e *Environment) Set(key, value string) {
	if i := e.index(key); i >= 0 {
		// Preserve the original spelling of the key so tools that look the
		// variable up by its exact Windows casing still find it.
		existing := e.vars[i][:strings.IndexByte(e.vars[i], '=')]
		e.vars[i] = existing + "=" + value
		return
	}
	e.vars = append(e.vars, key+"="+value)
}

// Path returns the current search-path value.
func (e *Environment) Path() string {
	if i := e.pathIndex(); i >= 0 {
		return e.vars[i][strings.IndexByte(e.vars[i], '=')+1:]
	}
	return ""
}

// SetPath replaces the search-path value.
func (e *Environment) SetPath(value string) {
	if i := e.pathIndex(); i >= 0 {
		existing := e.vars[i][:strings.IndexByte(e.vars[i], '=')]
		e.vars[i] = existing + "=" + value
		return
	}
	e.vars = append(e.vars, pathKey+"="+value)
}

// PrependPath moves dir to the front of the search path so that a bare
// executable name resolves inside dir before anywhere else. A non-leading
// occurrence of dir is removed first, so the directory appears exactly
// once, at the front. If dir already leads the path the call is a no-op.
// It reports whether the path was modified.
func (e *Environment) PrependPath(dir string) bool {
	dir = filepath.Clean(dir)
	entries := filepath.SplitList(e.Path())
	if len(entries) > 0 && samePathEntry(entries[0], dir) {
		return false
	}

	kept := make([]string, 0, len(entries)+1)
	kept = append(kept, dir)
	for _, entry := range entries {
		if !samePathEntry(entry, dir) {
			kept = append(kept, entry)
		}
	}
	e.SetPath(joinPathList(kept))
	return true
}

// Refresh re-reads the persisted machine- and user-level PATH values from
// store and replaces the in-process value with their concatenation.
//
// The order is configurable: userFirst puts the user-scoped entries ahead
// of the machine-scoped ones. This exists to accommodate CI agents whose
// user-level PATH must win over a stale machine-level one.
func (e *Environment) Refresh(store Store, userFirst bool) error {
	machine, err := store.MachinePath()
	if err != nil {
		return err
	}
	user, err := store.UserPath()
	if err != nil {
		return err
	}

	parts := []string{machine, user}
	if userFirst {
		parts = []string{user, machine}
	}
	e.SetPath(joinPathList(parts))
	return nil
}

// index finds the entry for key, folding case on Windows.
func (e *Environment) index(key string) int {
	for i, kv := range e.vars {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		name := kv[:eq]
		if name == key {
			return i
		}
		if runtime.GOOS == "windows" && strings.EqualFold(name, key) {
			return i
		}
	}
	return -1
}

// pathIndex finds the search-path entry, folding case on every platform:
// "Path" and "PATH" are the same variable for our purposes.
func (e *Environment) pathIndex() int {
	for i, kv := range e.vars {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		if strings.EqualFold(kv[:eq], pathKey) {
			return i
		}
	}
	return -1
}

// samePathEntry compares two search-path entries, folding case on Windows
// where the filesystem is case-insensitive.
func samePathEntry(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// joinPathList concatenates non-empty path lists with the OS separator.
func joinPathList(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, string(os.PathListSeparator))
}
