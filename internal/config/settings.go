// Package config holds the run configuration for winstrap.
//
// A Settings value is assembled once at startup — defaults, then
// environment overrides, then the optional project manifest — and is
// immutable for the rest of the run. There is no config file of its own
// and no persisted state; see the manifest package for the per-project
// file.
package config

import (
	"github.com/mmr-tortoise/winstrap/internal/manifest"
)

// Environment variable names consumed by winstrap.
const (
	// EnvUserPathFirst selects the search-path concatenation order when
	// the persisted PATH values are re-read after an install. The value is
	// compared against the literal string "true". This accommodates CI
	// agents whose user-level PATH must win over the machine-level one.
	EnvUserPathFirst = "WINSTRAP_USER_PATH_FIRST"

	// EnvPythonVersion overrides the interpreter version.
	EnvPythonVersion = "WINSTRAP_PYTHON_VERSION"

	// EnvInstallerURL overrides the package-manager installer URL,
	// mainly for mirrored or air-gapped setups.
	EnvInstallerURL = "WINSTRAP_INSTALLER_URL"
)

// Settings is the fixed configuration of one provisioning run.
type Settings struct {
	// PythonVersion is the target interpreter version, e.g. "3.11".
	PythonVersion string

	// ScoopInstallerURL is where the package-manager installer script is
	// downloaded from when scoop is not already resolvable.
	ScoopInstallerURL string

	// PythonManifestTemplate is the versioned manifest URL pattern for
	// installing the interpreter through scoop. The %s receives the
	// separator-stripped version ("3.11" → "311").
	PythonManifestTemplate string

	// HandoffScript is the name of the follow-on build script, resolved
	// relative to WorkDir.
	HandoffScript string

	// UserPathFirst selects user-before-machine ordering for persisted
	// PATH refreshes.
	UserPathFirst bool

	// WorkDir is the directory the manifest and handoff script are
	// resolved against.
	WorkDir string
}

// Default returns the built-in configuration.
func Default() Settings {
	return Settings{
		PythonVersion:          "3.11",
		ScoopInstallerURL:      "https://get.scoop.sh",
		PythonManifestTemplate: "https://raw.githubusercontent.com/ScoopInstaller/Versions/master/bucket/python%s.json",
		HandoffScript:          "bootstrap.py",
		WorkDir:                ".",
	}
}

// FromEnv layers environment overrides onto the defaults. The getenv
// function is injected so tests do not mutate the process environment.
func FromEnv(getenv func(string) string) Settings {
	s := Default()

	if v := getenv(EnvPythonVersion); v != "" {
		s.PythonVersion = v
	}
	if v := getenv(EnvInstallerURL); v != "" {
		s.ScoopInstallerURL = v
	}
	// Literal comparison, matching the original behavior: anything other
	// than exactly "true" keeps machine-first ordering.
	s.UserPathFirst = getenv(EnvUserPathFirst) == "true"

	return s
}

// ApplyManifest layers a project manifest on top. A nil manifest is a
// no-op so callers can pass the result of manifest.Load straight through.
func (s *Settings) ApplyManifest(m *manifest.Manifest) {
	if m == nil {
		return
	}
	if m.PythonVersion != "" {
		s.PythonVersion = m.PythonVersion
	}
	if m.HandoffScript != "" {
		s.HandoffScript = m.HandoffScript
	}
}
