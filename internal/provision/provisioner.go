// Package provision orchestrates a full provisioning run.
//
// The flow is strictly linear with no loops back:
//
//  1. Ensure the package manager is resolvable (installing it if not).
//  2. Install manifest extras, gated by the run-info cache.
//  3. Ensure the pinned interpreter is resolvable and first on the path.
//  4. Hand off to the colocated build script, forwarding all arguments
//     and propagating its exit code. A missing script is a valid terminal
//     state, not an error.
//
// Everything that touches the outside world (commands, downloads, the
// persisted PATH) arrives through injected capabilities, so the whole
// orchestration is testable with fakes.
package provision

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/winstrap/internal/config"
	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/execx"
	"github.com/mmr-tortoise/winstrap/internal/manifest"
	"github.com/mmr-tortoise/winstrap/internal/model"
	"github.com/mmr-tortoise/winstrap/internal/python"
	"github.com/mmr-tortoise/winstrap/internal/runinfo"
	"github.com/mmr-tortoise/winstrap/internal/scoop"
)

// extrasStage is the run-info cache key for the manifest extras step.
const extrasStage = "extra-packages"

// Provisioner coordinates the provisioning steps.
type Provisioner struct {
	// Settings is the fixed run configuration (manifest already applied).
	Settings config.Settings

	// Manifest is the optional project manifest; nil when none exists.
	Manifest *manifest.Manifest

	// ManifestPath is the loaded manifest file, used as the run-info
	// cache input for the extras stage. Empty when Manifest is nil.
	ManifestPath string

	// Runner invokes the interpreter during handoff.
	Runner execx.Runner

	// Scoop bootstraps the package manager.
	Scoop *scoop.Manager

	// Python bootstraps the interpreter.
	Python *python.Bootstrapper

	// Cache gates the extras stage. Nil disables skipping.
	Cache *runinfo.Cache

	// Log receives step progress.
	Log *log.Logger
}

// Run executes the provisioning sequence and returns the process exit
// code: the handoff script's code when one ran, zero otherwise. A non-nil
// error always carries a model.CLIError for the CLI layer to classify.
func (p *Provisioner) Run(ctx context.Context, env *envpath.Environment, args []string) (int, error) {
	// The package manager always comes first: the interpreter query may
	// end in an install that needs it.
	if err := p.Scoop.Ensure(ctx, env); err != nil {
		return 0, err
	}

	if err := p.installExtras(ctx, env); err != nil {
		return 0, err
	}

	interpreter, err := p.Python.Ensure(ctx, env, p.Settings.PythonVersion)
	if err != nil {
		return 0, err
	}

	return p.handoff(ctx, env, interpreter, args)
}

// installExtras installs the manifest's extra packages, skipping the work
// when the run-info cache shows the manifest is unchanged since the last
// successful run.
func (p *Provisioner) installExtras(ctx context.Context, env *envpath.Environment) error {
	if p.Manifest == nil || len(p.Manifest.ExtraPackages) == 0 {
		return nil
	}

	inputs := []string{p.ManifestPath}
	if p.Cache != nil {
		status, err := p.Cache.Check(extrasStage, inputs)
		if err != nil {
			p.Log.Debug("run cache check failed", "err", err)
		}
		if !status.ShouldRun() {
			p.Log.Info("skipping extra packages", "reason", status.Message())
			return nil
		}
		p.Log.Info("installing extra packages",
			"packages", p.Manifest.ExtraPackages, "reason", status.Message())
	}

	if err := p.Scoop.InstallPackages(ctx, env, p.Manifest.ExtraPackages); err != nil {
		return err
	}

	if p.Cache != nil {
		if err := p.Cache.Store(extrasStage, inputs); err != nil {
			// Failing to record the skip bookkeeping only costs a
			// redundant re-run next time.
			p.Log.Warn("could not store run info", "stage", extrasStage, "err", err)
		}
	}
	return nil
}

// handoff invokes the interpreter on the colocated build script with the
// original arguments forwarded verbatim. No script means a clean exit.
func (p *Provisioner) handoff(ctx context.Context, env *envpath.Environment, interpreter string, args []string) (int, error) {
	script := filepath.Join(p.Settings.WorkDir, p.Settings.HandoffScript)

	info, err := os.Stat(script)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.Log.Info("no handoff script, provisioning complete", "script", script)
			return 0, nil
		}
		// An existing but unreadable script must not be mistaken for the
		// clean no-handoff case.
		return 0, model.WrapCLIError(model.ExitGeneralError, "checking handoff script", err)
	}
	if info.IsDir() {
		p.Log.Info("no handoff script, provisioning complete", "script", script)
		return 0, nil
	}

	p.Log.Info("handing off", "interpreter", interpreter, "script", script, "args", args)

	res, err := p.Runner.Run(ctx, env, interpreter, append([]string{script}, args...)...)
	if err != nil {
		return 0, model.WrapCLIError(model.ExitInterpreterError, "invoking the handoff script", err)
	}

	// The handoff script's exit code is the run's exit code, zero or not.
	return res.ExitCode, nil
}
