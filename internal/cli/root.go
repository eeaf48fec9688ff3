// Package cli implements the cobra-based command surface for winstrap.
//
// There are no subcommands: the provisioner has exactly one operation, and
// every positional argument belongs to the handoff script, not to
// winstrap. The root command therefore accepts arbitrary args and
// forwards them verbatim. Flag parsing is non-interspersed so handoff
// flags like "--release" survive untouched after the first positional.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/winstrap/internal/config"
	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/execx"
	"github.com/mmr-tortoise/winstrap/internal/fetch"
	"github.com/mmr-tortoise/winstrap/internal/manifest"
	"github.com/mmr-tortoise/winstrap/internal/model"
	"github.com/mmr-tortoise/winstrap/internal/provision"
	"github.com/mmr-tortoise/winstrap/internal/python"
	"github.com/mmr-tortoise/winstrap/internal/runinfo"
	"github.com/mmr-tortoise/winstrap/internal/scoop"
)

// cacheDirName is where run-info bookkeeping lives, under the work dir.
const cacheDirName = ".winstrap"

// verbose enables debug-level logging. Bound to the --verbose flag.
var verbose bool

// Version, Commit, and Date are set at build time via ldflags and
// injected from the main package.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// runFunc is the provisioning entry point invoked by the root command.
// It is a variable so tests can verify argument forwarding without
// launching real provisioning.
var runFunc = runProvision

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "winstrap [args...]",
		Short: "Provision a Windows development machine and hand off to the build script",
		Long: `winstrap brings a Windows host from "nothing installed" to "ready to build":
it ensures the Scoop package manager is present, installs the pinned Python
interpreter version, puts it first on the search path, and invokes the
colocated bootstrap.py with all arguments forwarded unchanged.

Already-provisioned hosts pass straight through: existing installations are
detected and no network access happens. The exit code is the handoff
script's exit code, or 0 when no handoff script exists.`,

		Args: cobra.ArbitraryArgs,

		// Errors are formatted by Execute; usage spam on failures helps
		// nobody mid-provisioning.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunc(cmd.Context(), args)
		},
	}

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")

	// Stop flag parsing at the first positional so handoff flags pass
	// through; tolerate unknown leading flags for the same reason.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}

	return rootCmd
}

// runProvision wires the production components and executes the run.
func runProvision(ctx context.Context, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "winstrap"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	settings := config.FromEnv(os.Getenv)

	cwd, err := os.Getwd()
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "determining working directory", err)
	}
	settings.WorkDir = cwd

	m, manifestPath, err := manifest.Load(settings.WorkDir)
	if err != nil {
		return model.WrapCLIError(model.ExitManifestError, "loading project manifest", err)
	}
	if m != nil {
		logger.Debug("loaded project manifest", "path", manifestPath)
	}
	settings.ApplyManifest(m)

	runner := execx.NewSystemRunner()
	scoopMgr := &scoop.Manager{
		Runner:        runner,
		Fetcher:       fetch.NewHTTPDownloader(),
		Store:         envpath.NewSystemStore(),
		Log:           logger,
		InstallerURL:  settings.ScoopInstallerURL,
		UserPathFirst: settings.UserPathFirst,
	}

	prov := &provision.Provisioner{
		Settings:     settings,
		Manifest:     m,
		ManifestPath: manifestPath,
		Runner:       runner,
		Scoop:        scoopMgr,
		Python: &python.Bootstrapper{
			Runner:           runner,
			Scoop:            scoopMgr,
			ManifestTemplate: settings.PythonManifestTemplate,
			Log:              logger,
		},
		Cache: runinfo.NewCache(filepath.Join(settings.WorkDir, cacheDirName)),
		Log:   logger,
	}

	code, err := prov.Run(ctx, envpath.New(), args)
	if err != nil {
		return err
	}
	if code != 0 {
		return &model.HandoffExit{Code: code}
	}
	return nil
}

// Execute runs the root command and translates errors into process exit
// codes. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// A handoff exit is not a winstrap failure: propagate the code
		// silently, the script already reported whatever went wrong.
		var handoff *model.HandoffExit
		if errors.As(err, &handoff) {
			os.Exit(handoff.Code)
		}

		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Error())
			os.Exit(int(cliErr.Code))
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(model.ExitGeneralError))
	}
}
