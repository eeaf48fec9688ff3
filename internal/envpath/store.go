package envpath

// Store provides the OS-persisted PATH values at machine and user scope.
//
// The package-manager installer appends its shim directory to the
// user-level persisted PATH, which the already-running winstrap process
// does not see. Re-reading both scopes through this interface and
// concatenating them is how the in-process search path picks up the newly
// installed tools.
//
// Tests substitute a fake Store; production code uses NewSystemStore.
type Store interface {
	// MachinePath returns the machine-scoped persisted PATH value.
	MachinePath() (string, error)

	// UserPath returns the user-scoped persisted PATH value.
	UserPath() (string, error)
}
