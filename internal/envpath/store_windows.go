//go:build windows

package envpath

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// machinePathKey is the registry location of the machine-scoped environment
// block. The "Path" value there is what [Environment]::GetEnvironmentVariable
// ("Path", "Machine") reads.
const machinePathKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

// userPathKey is the registry location of the user-scoped environment block
// under HKEY_CURRENT_USER.
const userPathKey = `Environment`

// registryStore reads persisted PATH values from the Windows registry.
type registryStore struct{}

// NewSystemStore returns the registry-backed Store.
func NewSystemStore() Store {
	return registryStore{}
}

// MachinePath reads the machine-scoped persisted PATH from HKLM.
func (registryStore) MachinePath() (string, error) {
	return readRegistryPath(registry.LOCAL_MACHINE, machinePathKey)
}

// UserPath reads the user-scoped persisted PATH from HKCU. A missing value
// is not an error — fresh user profiles may not have one yet.
func (registryStore) UserPath() (string, error) {
	return readRegistryPath(registry.CURRENT_USER, userPathKey)
}

func readRegistryPath(root registry.Key, keyPath string) (string, error) {
	k, err := registry.OpenKey(root, keyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("opening registry key %q: %w", keyPath, err)
	}
	defer k.Close()

	value, valType, err := k.GetStringValue("Path")
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading Path from %q: %w", keyPath, err)
	}

	// Machine-scoped Path is usually REG_EXPAND_SZ with embedded
	// %SystemRoot%-style references that must be expanded before use.
	if valType == registry.EXPAND_SZ {
		expanded, expandErr := registry.ExpandString(value)
		if expandErr != nil {
			return "", fmt.Errorf("expanding Path from %q: %w", keyPath, expandErr)
		}
		return expanded, nil
	}
	return value, nil
}
