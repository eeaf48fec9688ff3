// Package model defines the domain types and value objects for the
// winstrap CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (CommandResult, ExitCode, CLIError) describe the outcome of a
// single provisioning run — winstrap keeps no persistent state beyond the
// run-info cache managed by the runinfo package.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
// HandoffExit is the silent counterpart used to propagate the follow-on
// build script's exit code without treating it as a winstrap failure.
package model
