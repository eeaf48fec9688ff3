// Package scoop bootstraps the Scoop package manager on a Windows host.
//
// This package wraps the scoop CLI (via the injected execx.Runner) to
// detect, install, and configure the package manager, and to install
// packages through it. It is the package-manager integration layer of
// winstrap, the counterpart of what the worktree layer is to git in a
// worktree tool.
//
// Design decisions:
//   - Detection is a pure search-path lookup. When scoop is already
//     resolvable the install branch is never entered and no network
//     request is made.
//   - The downloaded installer script is a scoped resource: it is deleted
//     on every exit path of the install step, whether the installer
//     succeeded or not.
//   - Every scoop command is fatal on non-zero exit except the innounp
//     baseline install, which is explicitly tolerated. That asymmetry is
//     inherited behavior and is preserved as-is.
package scoop

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/execx"
	"github.com/mmr-tortoise/winstrap/internal/fetch"
	"github.com/mmr-tortoise/winstrap/internal/model"
)

// executableName is the package manager's name on the search path.
const executableName = "scoop"

// toleratedPackage is the one baseline prerequisite whose install failure
// is logged and skipped instead of aborting the run.
const toleratedPackage = "innounp"

// baselinePackages are installed right after a fresh scoop install. Order
// matters for the error-handling contract: 7zip and dark abort on failure,
// innounp does not.
var baselinePackages = []string{"7zip", toleratedPackage, "dark"}

// Manager bootstraps and drives the Scoop package manager.
type Manager struct {
	// Runner executes external commands. Required.
	Runner execx.Runner

	// Fetcher downloads the installer script. Required for the install
	// branch; never touched when scoop is already present.
	Fetcher fetch.Downloader

	// Store supplies the persisted PATH values for post-install refreshes.
	Store envpath.Store

	// Log receives step progress and tolerated-failure warnings.
	Log *log.Logger

	// InstallerURL is where the installer script is downloaded from.
	InstallerURL string

	// UserPathFirst selects the PATH refresh concatenation order.
	UserPathFirst bool

	// Elevated reports administrative privilege. Defaults to
	// envpath.Elevated; tests override it.
	Elevated func() bool

	// TempDir overrides the directory for the downloaded installer.
	// Empty means the OS default.
	TempDir string
}

// Ensure makes the package manager resolvable. If scoop is already on the
// search path it only logs the location; otherwise it runs the full
// install branch: download installer, execute it, refresh the search path,
// configure scoop, and install the baseline prerequisite packages.
func (m *Manager) Ensure(ctx context.Context, env *envpath.Environment) error {
	if path, err := m.Runner.LookPath(env, executableName); err == nil {
		m.Log.Info("scoop already installed", "path", path)
		return nil
	}

	m.Log.Info("scoop not found, installing", "url", m.InstallerURL)
	if err := m.install(ctx, env); err != nil {
		return err
	}

	if err := m.configure(ctx, env); err != nil {
		return err
	}
	if err := m.installBaseline(ctx, env); err != nil {
		return err
	}

	// Baseline installs may have added shims of their own; pick them up
	// before the interpreter step queries the path.
	return m.refresh(env)
}

// install downloads and executes the installer script, then refreshes the
// in-process search path from the persisted values the installer wrote.
func (m *Manager) install(ctx context.Context, env *envpath.Environment) error {
	tmp, err := os.CreateTemp(m.TempDir, "scoop-install-*.ps1")
	if err != nil {
		return model.WrapCLIError(model.ExitInstallError, "creating temporary installer file", err)
	}
	installerPath := tmp.Name()
	_ = tmp.Close()

	// Scoped resource: the installer file is removed on every exit path,
	// including download and installer failures.
	defer func() { _ = os.Remove(installerPath) }()

	if err := m.Fetcher.DownloadFile(ctx, m.InstallerURL, installerPath); err != nil {
		return model.WrapCLIError(model.ExitDownloadError, "downloading the scoop installer", err)
	}

	// The installer refuses to run elevated unless told it is intentional.
	var args []string
	if m.elevated() {
		m.Log.Debug("running installer with administrative privilege")
		args = append(args, "-RunAsAdmin")
	}

	res, err := m.Runner.Run(ctx, env, installerPath, args...)
	if err != nil {
		return model.WrapCLIError(model.ExitInstallError, "running the scoop installer", err)
	}
	if !res.Success() {
		return model.CommandFailed(model.ExitInstallError, res)
	}

	// The installer appended its shim directory to the persisted user
	// PATH; the running process only sees that after a refresh.
	return m.refresh(env)
}

// configure applies the scoop-level settings a fresh install needs:
// external 7zip for faster extraction and auto-stash so bucket updates
// never deadlock on local changes. Both are fatal on failure.
func (m *Manager) configure(ctx context.Context, env *envpath.Environment) error {
	settings := [][]string{
		{"config", "use_external_7zip", "true"},
		{"config", "autostash_on_conflict", "true"},
	}
	for _, args := range settings {
		if err := m.runFatal(ctx, env, args...); err != nil {
			return err
		}
	}
	return nil
}

// installBaseline installs the prerequisite packages the build tooling
// expects: the archive tool and the installer-unpacking helpers. The
// innounp failure exemption is deliberate inherited behavior.
func (m *Manager) installBaseline(ctx context.Context, env *envpath.Environment) error {
	for _, pkg := range baselinePackages {
		res, err := m.Runner.Run(ctx, env, executableName, "install", pkg)
		if err != nil {
			return model.WrapCLIError(model.ExitInstallError, fmt.Sprintf("installing %s", pkg), err)
		}
		if res.Success() {
			continue
		}
		if pkg == toleratedPackage {
			m.Log.Warn("baseline package install failed, continuing",
				"package", pkg, "command", res.CommandLine(), "exitCode", res.ExitCode)
			continue
		}
		return model.CommandFailed(model.ExitInstallError, res)
	}
	return nil
}

// InstallPackages installs the given packages through scoop. Used for the
// manifest's extra packages; every failure is fatal.
func (m *Manager) InstallPackages(ctx context.Context, env *envpath.Environment, packages []string) error {
	for _, pkg := range packages {
		if err := m.runFatal(ctx, env, "install", pkg); err != nil {
			return err
		}
	}
	return nil
}

// InstallManifestURL installs an app from a versioned manifest URL. This
// is how the pinned interpreter build is installed.
func (m *Manager) InstallManifestURL(ctx context.Context, env *envpath.Environment, url string) error {
	return m.runFatal(ctx, env, "install", url)
}

// RefreshPath re-reads the persisted PATH values into env. The interpreter
// bootstrap calls this after its own install step, since a scoop install
// may extend the persisted user PATH the running process does not see yet.
func (m *Manager) RefreshPath(env *envpath.Environment) error {
	return m.refresh(env)
}

// runFatal runs a scoop command and converts any non-zero exit into the
// standard fatal error naming the command line and exit code.
func (m *Manager) runFatal(ctx context.Context, env *envpath.Environment, args ...string) error {
	res, err := m.Runner.Run(ctx, env, executableName, args...)
	if err != nil {
		return model.WrapCLIError(model.ExitInstallError, "running scoop", err)
	}
	if !res.Success() {
		return model.CommandFailed(model.ExitInstallError, res)
	}
	return nil
}

// refresh re-reads the persisted PATH values into env.
func (m *Manager) refresh(env *envpath.Environment) error {
	if err := env.Refresh(m.Store, m.UserPathFirst); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "refreshing the search path", err)
	}
	return nil
}

func (m *Manager) elevated() bool {
	if m.Elevated != nil {
		return m.Elevated()
	}
	return envpath.Elevated()
}
