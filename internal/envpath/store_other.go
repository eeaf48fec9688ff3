//go:build !windows

package envpath

import "os"

// processStore is the non-Windows stand-in for the registry-backed store.
// There is no machine/user split to read, so the live process value serves
// as the machine scope. This keeps the package buildable and testable on
// development hosts; the production target is Windows.
type processStore struct{}

// NewSystemStore returns the process-environment-backed Store.
func NewSystemStore() Store {
	return processStore{}
}

// MachinePath returns the live process PATH.
func (processStore) MachinePath() (string, error) {
	return os.Getenv("PATH"), nil
}

// UserPath returns "" — there is no user-scoped persisted PATH here.
func (processStore) UserPath() (string, error) {
	return "", nil
}
