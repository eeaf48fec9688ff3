package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withRunFunc swaps the provisioning entry point for the duration of a
// test and restores it afterwards.
func withRunFunc(t *testing.T, fn func(ctx context.Context, args []string) error) {
	t.Helper()
	previous := runFunc
	runFunc = fn
	t.Cleanup(func() { runFunc = previous })
}

// TestRootCommand_ForwardsArgsVerbatim verifies positional arguments reach
// the provisioner unchanged, including flag-shaped ones after the first
// positional.
func TestRootCommand_ForwardsArgsVerbatim(t *testing.T) {
	var received []string
	withRunFunc(t, func(_ context.Context, args []string) error {
		received = args
		return nil
	})

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"build", "--release", "-j", "8"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"build", "--release", "-j", "8"}, received)
}

// TestRootCommand_NoArgs verifies a bare invocation still provisions.
func TestRootCommand_NoArgs(t *testing.T) {
	called := false
	withRunFunc(t, func(_ context.Context, args []string) error {
		called = true
		assert.Empty(t, args)
		return nil
	})

	cmd := NewRootCommand()
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.True(t, called)
}

// TestRootCommand_VerboseFlagNotForwarded verifies winstrap's own flag is
// consumed rather than handed to the build script.
func TestRootCommand_VerboseFlagNotForwarded(t *testing.T) {
	var received []string
	withRunFunc(t, func(_ context.Context, args []string) error {
		received = args
		return nil
	})

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--verbose", "build"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"build"}, received)
	assert.True(t, verbose)
	verbose = false
}

// TestRootCommand_Version sanity-checks the version string wiring.
func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	assert.Contains(t, cmd.Version, Version)
	assert.Contains(t, cmd.Version, Commit)
}
