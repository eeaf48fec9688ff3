package scoop

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/winstrap/internal/envpath"
	"github.com/mmr-tortoise/winstrap/internal/execx"
	"github.com/mmr-tortoise/winstrap/internal/model"
)

// fakeFetcher records download requests and writes a stub installer file
// so the scoped-cleanup behavior can be observed on a real filesystem.
type fakeFetcher struct {
	downloads []string
	err       error
}

func (f *fakeFetcher) DownloadFile(_ context.Context, url, dest string) error {
	f.downloads = append(f.downloads, url)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("# stub installer\n"), 0644)
}

// fakeStore supplies deterministic persisted PATH values.
type fakeStore struct {
	machine string
	user    string
}

func (s fakeStore) MachinePath() (string, error) { return s.machine, nil }
func (s fakeStore) UserPath() (string, error)    { return s.user, nil }

// newManager wires a Manager with fakes everywhere and a dedicated temp
// dir so tests can assert the installer file is gone afterwards.
func newManager(t *testing.T, runner *execx.FakeRunner, fetcher *fakeFetcher) *Manager {
	t.Helper()
	return &Manager{
		Runner:       runner,
		Fetcher:      fetcher,
		Store:        fakeStore{machine: "/machine/bin", user: "/user/bin"},
		Log:          log.New(io.Discard),
		InstallerURL: "https://get.scoop.example/install.ps1",
		Elevated:     func() bool { return false },
		TempDir:      t.TempDir(),
	}
}

// tempDirEmpty asserts no installer file was left behind.
func tempDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary installer file should be deleted")
}

// TestEnsure_AlreadyInstalled verifies the install branch is never entered
// when scoop is resolvable: no download, no commands.
func TestEnsure_AlreadyInstalled(t *testing.T) {
	runner := &execx.FakeRunner{Paths: map[string]string{
		"scoop": filepath.Join("C:", "Users", "dev", "scoop", "shims", "scoop.cmd"),
	}}
	fetcher := &fakeFetcher{}
	m := newManager(t, runner, fetcher)

	err := m.Ensure(context.Background(), envpath.NewFrom([]string{"PATH=/somewhere"}))

	require.NoError(t, err)
	assert.Empty(t, fetcher.downloads, "installer must not be downloaded")
	assert.Empty(t, runner.Calls, "no commands should be issued")
}

// TestEnsure_Installs verifies the full install branch: download, installer
// execution, PATH refresh, configuration, and baseline packages — and that
// the temporary installer file is cleaned up afterwards.
func TestEnsure_Installs(t *testing.T) {
	runner := &execx.FakeRunner{}
	fetcher := &fakeFetcher{}
	m := newManager(t, runner, fetcher)

	env := envpath.NewFrom([]string{"PATH=/stale"})
	err := m.Ensure(context.Background(), env)
	require.NoError(t, err)

	require.Equal(t, []string{"https://get.scoop.example/install.ps1"}, fetcher.downloads)

	lines := runner.CommandLines()
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], m.TempDir, "first command is the downloaded installer")
	assert.Equal(t, "scoop config use_external_7zip true", lines[1])
	assert.Equal(t, "scoop config autostash_on_conflict true", lines[2])
	assert.Equal(t, "scoop install 7zip", lines[3])
	assert.Equal(t, "scoop install innounp", lines[4])
	assert.Equal(t, "scoop install dark", lines[5])

	// The refresh replaced the stale in-process path with the persisted
	// values, machine-first by default.
	assert.Equal(t, "/machine/bin"+string(os.PathListSeparator)+"/user/bin", env.Path())

	tempDirEmpty(t, m.TempDir)
}

// TestEnsure_UserPathFirst verifies the concatenation-order flag reaches
// the refresh.
func TestEnsure_UserPathFirst(t *testing.T) {
	runner := &execx.FakeRunner{}
	m := newManager(t, runner, &fakeFetcher{})
	m.UserPathFirst = true

	env := envpath.NewFrom([]string{"PATH=/stale"})
	require.NoError(t, m.Ensure(context.Background(), env))

	assert.Equal(t, "/user/bin"+string(os.PathListSeparator)+"/machine/bin", env.Path())
}

// TestEnsure_ElevatedAddsAdminFlag verifies the installer gets -RunAsAdmin
// exactly when the process is elevated.
func TestEnsure_ElevatedAddsAdminFlag(t *testing.T) {
	runner := &execx.FakeRunner{}
	m := newManager(t, runner, &fakeFetcher{})
	m.Elevated = func() bool { return true }

	require.NoError(t, m.Ensure(context.Background(), envpath.NewFrom(nil)))

	require.NotEmpty(t, runner.Calls)
	assert.Equal(t, []string{"-RunAsAdmin"}, runner.Calls[0].Args)
}

// TestEnsure_DownloadFailure verifies a failed download aborts with the
// download exit code and still removes the temp file.
func TestEnsure_DownloadFailure(t *testing.T) {
	runner := &execx.FakeRunner{}
	fetcher := &fakeFetcher{err: errors.New("connection reset")}
	m := newManager(t, runner, fetcher)

	err := m.Ensure(context.Background(), envpath.NewFrom(nil))

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitDownloadError, cliErr.Code)
	assert.Empty(t, runner.Calls, "nothing should run after a failed download")
	tempDirEmpty(t, m.TempDir)
}

// TestEnsure_InstallerFailure verifies a non-zero installer exit aborts
// the run, names the command, and still removes the temp file.
func TestEnsure_InstallerFailure(t *testing.T) {
	runner := &execx.FakeRunner{}
	m := newManager(t, runner, &fakeFetcher{})
	// Key by temp dir prefix: the installer path is randomized.
	runner.Results = map[string]model.CommandResult{m.TempDir: {ExitCode: 1}}

	err := m.Ensure(context.Background(), envpath.NewFrom(nil))

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitInstallError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "exit code 1")
	assert.False(t, runner.Ran("scoop"), "configuration must not run after installer failure")
	tempDirEmpty(t, m.TempDir)
}

// TestEnsure_ToleratedInnounpFailure verifies the one exempted baseline
// package: innounp failing does not abort, and the remaining baseline
// install still happens.
func TestEnsure_ToleratedInnounpFailure(t *testing.T) {
	runner := &execx.FakeRunner{Results: map[string]model.CommandResult{
		"scoop install innounp": {ExitCode: 1},
	}}
	m := newManager(t, runner, &fakeFetcher{})

	err := m.Ensure(context.Background(), envpath.NewFrom(nil))

	require.NoError(t, err)
	assert.True(t, runner.Ran("scoop install dark"), "siblings after innounp still install")
}

// TestEnsure_Fatal7zipFailure verifies the default severity: a failing
// 7zip install aborts immediately, before its baseline siblings.
func TestEnsure_Fatal7zipFailure(t *testing.T) {
	runner := &execx.FakeRunner{Results: map[string]model.CommandResult{
		"scoop install 7zip": {ExitCode: 2},
	}}
	m := newManager(t, runner, &fakeFetcher{})

	err := m.Ensure(context.Background(), envpath.NewFrom(nil))

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitInstallError, cliErr.Code)
	assert.Contains(t, cliErr.Message, `"scoop install 7zip"`)
	assert.False(t, runner.Ran("scoop install innounp"))
	assert.False(t, runner.Ran("scoop install dark"))
}

// TestInstallPackages verifies extras install through scoop and fail fatally.
func TestInstallPackages(t *testing.T) {
	runner := &execx.FakeRunner{}
	m := newManager(t, runner, &fakeFetcher{})
	env := envpath.NewFrom(nil)

	require.NoError(t, m.InstallPackages(context.Background(), env, []string{"cmake", "ninja"}))
	assert.Equal(t, []string{"scoop install cmake", "scoop install ninja"}, runner.CommandLines())

	runner.Results = map[string]model.CommandResult{"scoop install broken": {ExitCode: 1}}
	err := m.InstallPackages(context.Background(), env, []string{"broken"})
	assert.Error(t, err)
}

// TestInstallManifestURL verifies the versioned-manifest install path used
// for the interpreter.
func TestInstallManifestURL(t *testing.T) {
	runner := &execx.FakeRunner{}
	m := newManager(t, runner, &fakeFetcher{})

	url := "https://raw.githubusercontent.com/ScoopInstaller/Versions/master/bucket/python311.json"
	require.NoError(t, m.InstallManifestURL(context.Background(), envpath.NewFrom(nil), url))
	assert.Equal(t, []string{"scoop install " + url}, runner.CommandLines())
}
