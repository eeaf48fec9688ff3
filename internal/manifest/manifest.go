// Package manifest loads the optional per-project manifest that tunes a
// provisioning run.
//
// Projects may carry a winstrap.jsonc (JSONC — JSON with comments, parsed
// via github.com/tidwall/jsonc before the standard encoding/json pass) or
// a winstrap.yaml next to the handoff script. The manifest overrides the
// interpreter version and handoff script name and may list extra baseline
// packages to install through the package manager.
//
// No manifest is the common case and is not an error: the built-in
// defaults describe a complete run.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// FileJSONC and FileYAML are the recognized manifest file names. When both
// exist, the JSONC variant wins and the YAML one is ignored.
const (
	FileJSONC = "winstrap.jsonc"
	FileYAML  = "winstrap.yaml"
)

// Manifest is the parsed project manifest. All fields are optional;
// zero values mean "use the built-in default".
type Manifest struct {
	// PythonVersion overrides the interpreter version, e.g. "3.12".
	PythonVersion string `json:"pythonVersion,omitempty" yaml:"pythonVersion,omitempty"`

	// HandoffScript overrides the follow-on build script name.
	HandoffScript string `json:"handoffScript,omitempty" yaml:"handoffScript,omitempty"`

	// ExtraPackages lists additional packages to install after the
	// baseline prerequisites. Failures here are fatal, like the baseline
	// siblings (innounp excepted).
	ExtraPackages []string `json:"extraPackages,omitempty" yaml:"extraPackages,omitempty"`
}

// Load looks for a manifest in dir and parses it.
//
// Returns (nil, "", nil) when no manifest file exists. On success the
// second return value is the path of the file that was loaded, which also
// serves as the run-info cache input for the extra-packages stage.
func Load(dir string) (*Manifest, string, error) {
	jsoncPath := filepath.Join(dir, FileJSONC)
	if fileExists(jsoncPath) {
		m, err := loadJSONC(jsoncPath)
		if err != nil {
			return nil, "", err
		}
		return m, jsoncPath, nil
	}

	yamlPath := filepath.Join(dir, FileYAML)
	if fileExists(yamlPath) {
		m, err := loadYAML(yamlPath)
		if err != nil {
			return nil, "", err
		}
		return m, yamlPath, nil
	}

	return nil, "", nil
}

// loadJSONC parses a JSONC manifest. Comments and trailing commas are
// stripped by jsonc.ToJSON before the strict encoding/json pass.
func loadJSONC(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// loadYAML parses a YAML manifest.
func loadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
