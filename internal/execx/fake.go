package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/model"
)

// FakeRunner is a recording Runner for tests. It resolves lookups from a
// fixed map, answers Run calls from canned results keyed by command line,
// and records every interaction in order so tests can assert on the exact
// sequence of external invocations — including that a given command was
// never issued.
type FakeRunner struct {
	// Paths maps executable names to their fake resolved locations.
	// Names absent from the map are "not installed".
	Paths map[string]string

	// Results maps command lines ("scoop install 7zip") to canned
	// results. A key also matches as a prefix, which lets tests target
	// commands with unpredictable parts such as temp-file paths.
	// Commands without an entry succeed with exit code 0.
	Results map[string]model.CommandResult

	// RunErr maps command lines to start errors (the command could not be
	// launched at all). Keys match exactly or as a prefix, like Results.
	// Failed launches are still recorded in Calls.
	RunErr map[string]error

	// RunHook, when set, runs after each recorded call. It lets a test
	// simulate side effects such as an install making a new executable
	// resolvable.
	RunHook func(f *FakeRunner, res model.CommandResult)

	// Calls records every Run invocation in order.
	Calls []model.CommandResult

	// Lookups records every LookPath name in order.
	Lookups []string
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, _ *envpath.Environment, name string, args ...string) (model.CommandResult, error) {
	res := model.CommandResult{Name: name, Args: args}
	line := res.CommandLine()

	// Attempted-but-unlaunchable commands are still part of the recorded
	// history; only the hook is skipped, since nothing actually ran.
	for key, err := range f.RunErr {
		if line == key || strings.HasPrefix(line, key) {
			f.Calls = append(f.Calls, res)
			return res, err
		}
	}
	if canned, ok := f.matchResult(line); ok {
		res.ExitCode = canned.ExitCode
		res.Output = canned.Output
	}

	f.Calls = append(f.Calls, res)
	if f.RunHook != nil {
		f.RunHook(f, res)
	}
	return res, nil
}

// LookPath implements Runner.
func (f *FakeRunner) LookPath(_ *envpath.Environment, name string) (string, error) {
	f.Lookups = append(f.Lookups, name)
	if path, ok := f.Paths[name]; ok {
		return path, nil
	}
	return "", fmt.Errorf("%q not found on search path: %w", name, exec.ErrNotFound)
}

// matchResult finds a canned result by exact match first, then by prefix.
func (f *FakeRunner) matchResult(line string) (model.CommandResult, bool) {
	if canned, ok := f.Results[line]; ok {
		return canned, true
	}
	for key, canned := range f.Results {
		if strings.HasPrefix(line, key) {
			return canned, true
		}
	}
	return model.CommandResult{}, false
}

// CommandLines returns the recorded Run calls as command-line strings,
// in invocation order.
func (f *FakeRunner) CommandLines() []string {
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.CommandLine()
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (f *FakeRunner) Ran(prefix string) bool {
	for _, line := range f.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
