// Package python locates or installs the target Python interpreter.
//
// Scoop's versioned python manifests install suffixed executables
// ("python311" for 3.11), so a specific version is detected by composing
// that name and querying the search path. Once the interpreter is found,
// its containing directory is prepended to the in-process search path so
// that a bare "python" invocation — which the handoff script and its
// children rely on — resolves to this exact copy first.
package python

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/execx"
	"github.com/mmr-tortoise/winstrap/internal/model"
	"github.com/mmr-tortoise/winstrap/internal/scoop"
)

// namePrefix is the interpreter executable prefix the version suffix is
// appended to.
const namePrefix = "python"

// ExecutableName composes the versioned executable name: "3.11" becomes
// "python311".
func ExecutableName(version string) string {
	return namePrefix + strings.ReplaceAll(version, ".", "")
}

// ManifestURL renders the versioned scoop manifest URL for the given
// version using the configured template.
func ManifestURL(template, version string) string {
	return fmt.Sprintf(template, strings.ReplaceAll(version, ".", ""))
}

// Bootstrapper ensures a specific interpreter version is present and
// first on the search path.
type Bootstrapper struct {
	// Runner resolves and (during handoff, indirectly) invokes the
	// interpreter. Required.
	Runner execx.Runner

	// Scoop installs the interpreter when it is missing. Required.
	Scoop *scoop.Manager

	// ManifestTemplate is the versioned manifest URL pattern.
	ManifestTemplate string

	// Log receives step progress.
	Log *log.Logger
}

// Ensure returns the absolute path of the versioned interpreter,
// installing it through scoop when it is not already resolvable. In both
// cases the interpreter's directory ends up at the front of env's search
// path exactly once.
func (b *Bootstrapper) Ensure(ctx context.Context, env *envpath.Environment, version string) (string, error) {
	exe := ExecutableName(version)

	if path, err := b.Runner.LookPath(env, exe); err == nil {
		b.Log.Info("python already installed", "executable", exe, "path", path)
		env.PrependPath(filepath.Dir(path))
		return path, nil
	}

	url := ManifestURL(b.ManifestTemplate, version)
	b.Log.Info("python not found, installing", "version", version, "manifest", url)
	if err := b.Scoop.InstallManifestURL(ctx, env, url); err != nil {
		return "", model.WrapCLIError(model.ExitInterpreterError,
			fmt.Sprintf("installing python %s", version), err)
	}

	// The install may have extended the persisted PATH; re-read it before
	// resolving, or a freshly created shim directory stays invisible.
	if err := b.Scoop.RefreshPath(env); err != nil {
		return "", err
	}

	path, err := b.Runner.LookPath(env, exe)
	if err != nil {
		return "", model.WrapCLIError(model.ExitInterpreterError,
			fmt.Sprintf("%s not resolvable after install", exe), err)
	}

	env.PrependPath(filepath.Dir(path))
	return path, nil
}
