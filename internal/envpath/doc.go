// Package envpath models the process environment as an explicitly passed,
// mutable value instead of ambient global state.
//
// The provisioning steps mutate exactly one shared resource: the
// process-wide search-path variable. Threading an Environment value through
// each step keeps the steps independently testable and makes the two
// mutation points (after the package-manager install, after interpreter
// discovery) visible in the call graph.
//
// The Store interface abstracts the OS-level persisted PATH values
// (machine- and user-scoped). On Windows these live in the registry; the
// non-Windows implementation falls back to the live process value so the
// package builds and tests everywhere.
package envpath
