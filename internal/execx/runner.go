// Package execx provides the command-execution capability injected into
// every component that shells out.
//
// Design decisions:
//   - Commands resolve against the threaded envpath.Environment, not the
//     ambient process PATH. The whole point of the provisioner is that the
//     search path changes mid-run; resolution must see those changes.
//   - Run never decides severity. A non-zero exit comes back as a
//     CommandResult, and the caller applies the fatal/tolerated policy.
//     Run only returns an error when the command could not be started.
//   - A recording FakeRunner (fake.go) substitutes for the real thing in
//     tests, so no test in this repository launches a package manager.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/model"
)

// Runner executes external commands within a given environment.
type Runner interface {
	// Run invokes name with args, blocking until the child exits. The child
	// inherits env verbatim. Output streams through to the user and is also
	// captured into the result for error reporting.
	Run(ctx context.Context, env *envpath.Environment, name string, args ...string) (model.CommandResult, error)

	// LookPath resolves a bare executable name against env's current
	// search path. Returns the absolute path of the first match.
	LookPath(env *envpath.Environment, name string) (string, error)
}

// SystemRunner is the production Runner backed by os/exec.
type SystemRunner struct {
	// Stdout and Stderr receive the child's output in addition to the
	// capture buffer. They default to the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// NewSystemRunner creates a SystemRunner wired to the process streams.
func NewSystemRunner() *SystemRunner {
	return &SystemRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (r *SystemRunner) Run(ctx context.Context, env *envpath.Environment, name string, args ...string) (model.CommandResult, error) {
	result := model.CommandResult{Name: name, Args: args}

	resolved := name
	if !strings.ContainsRune(name, os.PathSeparator) && !filepath.IsAbs(name) {
		path, err := r.LookPath(env, name)
		if err != nil {
			return result, err
		}
		resolved = path
	}

	cmd := buildCommand(ctx, resolved, args)
	cmd.Env = env.Environ()

	var capture bytes.Buffer
	cmd.Stdout = io.MultiWriter(r.Stdout, &capture)
	cmd.Stderr = io.MultiWriter(r.Stderr, &capture)
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	result.Output = capture.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The command ran and exited non-zero. That is a result, not a
			// runner error — the caller decides whether it is fatal.
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("starting %q: %w", result.CommandLine(), err)
	}
	return result, nil
}

// buildCommand wraps script-style executables with the shell that can run
// them. On Windows, CreateProcess only launches PE binaries directly:
// .cmd/.bat shims (which is what scoop installs as) go through cmd.exe,
// and .ps1 scripts through powershell.
func buildCommand(ctx context.Context, resolved string, args []string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(resolved)) {
		case ".cmd", ".bat":
			return exec.CommandContext(ctx, "cmd", append([]string{"/c", resolved}, args...)...)
		case ".ps1":
			psArgs := append([]string{"-NoProfile", "-ExecutionPolicy", "RemoteSigned", "-File", resolved}, args...)
			return exec.CommandContext(ctx, "powershell", psArgs...)
		}
	}
	return exec.CommandContext(ctx, resolved, args...)
}

// LookPath implements Runner. It mirrors exec.LookPath but walks the
// threaded environment's search path (and PATHEXT on Windows) instead of
// the process's own.
func (r *SystemRunner) LookPath(env *envpath.Environment, name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || filepath.IsAbs(name) {
		if isExecutable(name) {
			return filepath.Abs(name)
		}
		return "", fmt.Errorf("%q is not an executable file: %w", name, exec.ErrNotFound)
	}

	for _, dir := range filepath.SplitList(env.Path()) {
		if dir == "" {
			continue
		}
		for _, candidate := range candidateNames(env, name) {
			full := filepath.Join(dir, candidate)
			if isExecutable(full) {
				return full, nil
			}
		}
	}
	return "", fmt.Errorf("%q not found on search path: %w", name, exec.ErrNotFound)
}

// candidateNames expands name with the executable extensions the OS
// resolves. On Windows this honors the environment's PATHEXT; elsewhere
// the bare name is the only candidate.
func candidateNames(env *envpath.Environment, name string) []string {
	if runtime.GOOS != "windows" {
		return []string{name}
	}

	pathext := env.Get("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD;.PS1"
	}

	names := make([]string, 0, 8)
	if filepath.Ext(name) != "" {
		names = append(names, name)
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		names = append(names, name+strings.ToLower(ext))
	}
	return names
}

// isExecutable reports whether path is a regular file the current user can
// execute. On Windows existence is sufficient — executability is carried
// by the extension, which candidateNames already constrained.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
