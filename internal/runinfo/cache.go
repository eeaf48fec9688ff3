// Package runinfo implements a content-hash cache for skippable
// provisioning stages.
//
// A stage declares its input files; after a successful run their SHA-256
// hashes are stored in <stage>.deps.json under the cache directory. On the
// next run the stage is skipped when every recorded hash still matches.
// This is bookkeeping for idempotence, not provisioning state: deleting
// the cache directory only costs one redundant re-run.
package runinfo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// infoExt is the suffix of per-stage cache files.
const infoExt = ".deps.json"

// Status describes the outcome of a cache check.
type Status string

const (
	// StatusMatch — nothing changed, the stage may be skipped.
	StatusMatch Status = "match"

	// StatusNoInfo — no previous execution info exists.
	StatusNoInfo Status = "no-info"

	// StatusMissingInput — a recorded input file no longer exists.
	StatusMissingInput Status = "missing-input"

	// StatusChangedInput — an input file's content hash changed.
	StatusChangedInput Status = "changed-input"
)

// ShouldRun reports whether the stage must execute for this status.
func (s Status) ShouldRun() bool {
	return s != StatusMatch
}

// Message returns the human-readable explanation logged next to the
// run/skip decision.
func (s Status) Message() string {
	switch s {
	case StatusMatch:
		return "nothing changed, previous execution info matches"
	case StatusNoInfo:
		return "no previous execution info found"
	case StatusMissingInput:
		return "input file not found"
	case StatusChangedInput:
		return "input file has changed"
	default:
		return string(s)
	}
}

// Cache stores per-stage run info under Dir.
type Cache struct {
	Dir string
}

// NewCache creates a Cache rooted at dir. The directory is created lazily
// on the first Store.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir}
}

// runInfo is the on-disk format: input path → content hash.
type runInfo struct {
	Inputs map[string]string `json:"inputs"`
}

// Check compares the recorded input hashes for stage against the current
// file contents.
func (c *Cache) Check(stage string, inputs []string) (Status, error) {
	data, err := os.ReadFile(c.infoPath(stage))
	if err != nil {
		if os.IsNotExist(err) {
			return StatusNoInfo, nil
		}
		return StatusNoInfo, fmt.Errorf("reading run info for %q: %w", stage, err)
	}

	var previous runInfo
	if err := json.Unmarshal(data, &previous); err != nil {
		// A corrupt cache file just means the stage runs again.
		return StatusNoInfo, nil
	}

	// The input set itself changing (files added or removed from the
	// declaration) also invalidates the record.
	if len(previous.Inputs) != len(inputs) {
		return StatusChangedInput, nil
	}

	for _, path := range inputs {
		recorded, ok := previous.Inputs[path]
		if !ok {
			return StatusChangedInput, nil
		}
		current, err := fileHash(path)
		if err != nil {
			if os.IsNotExist(err) {
				return StatusMissingInput, nil
			}
			return StatusNoInfo, err
		}
		if current != recorded {
			return StatusChangedInput, nil
		}
	}
	return StatusMatch, nil
}

// Store records the current input hashes for stage after a successful run.
func (c *Cache) Store(stage string, inputs []string) error {
	info := runInfo{Inputs: make(map[string]string, len(inputs))}
	for _, path := range inputs {
		hash, err := fileHash(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
		info.Inputs[path] = hash
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", c.Dir, err)
	}

	data, err := json.MarshalIndent(info, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.infoPath(stage), data, 0644)
}

func (c *Cache) infoPath(stage string) string {
	return filepath.Join(c.Dir, stage+infoExt)
}

// fileHash returns the hex SHA-256 of the file's contents.
func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
