package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/winstrap/internal/manifest"
)

// mapGetenv builds a getenv function from a map for override tests.
func mapGetenv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

// TestDefault sanity-checks the built-in configuration.
func TestDefault(t *testing.T) {
	s := Default()

	assert.Equal(t, "3.11", s.PythonVersion)
	assert.Equal(t, "https://get.scoop.sh", s.ScoopInstallerURL)
	assert.Equal(t, "bootstrap.py", s.HandoffScript)
	assert.False(t, s.UserPathFirst)
}

// TestFromEnv_Overrides verifies each recognized variable takes effect.
func TestFromEnv_Overrides(t *testing.T) {
	s := FromEnv(mapGetenv(map[string]string{
		EnvPythonVersion: "3.12",
		EnvInstallerURL:  "https://mirror.internal/scoop.ps1",
		EnvUserPathFirst: "true",
	}))

	assert.Equal(t, "3.12", s.PythonVersion)
	assert.Equal(t, "https://mirror.internal/scoop.ps1", s.ScoopInstallerURL)
	assert.True(t, s.UserPathFirst)
}

// TestFromEnv_UserPathFirstLiteral verifies the flag only accepts the
// literal string "true" — "1", "TRUE", and friends do not count.
func TestFromEnv_UserPathFirstLiteral(t *testing.T) {
	for _, value := range []string{"", "1", "TRUE", "True", "yes"} {
		s := FromEnv(mapGetenv(map[string]string{EnvUserPathFirst: value}))
		assert.False(t, s.UserPathFirst, "value %q must not enable user-first ordering", value)
	}

	s := FromEnv(mapGetenv(map[string]string{EnvUserPathFirst: "true"}))
	assert.True(t, s.UserPathFirst)
}

// TestApplyManifest verifies manifest fields override settings, while
// empty manifest fields keep the existing values.
func TestApplyManifest(t *testing.T) {
	s := Default()
	s.ApplyManifest(&manifest.Manifest{PythonVersion: "3.10"})

	assert.Equal(t, "3.10", s.PythonVersion)
	assert.Equal(t, "bootstrap.py", s.HandoffScript, "empty manifest field keeps default")
}

// TestApplyManifest_Nil verifies a missing manifest is a clean no-op.
func TestApplyManifest_Nil(t *testing.T) {
	s := Default()
	before := s

	s.ApplyManifest(nil)
	assert.Equal(t, before, s)
}
