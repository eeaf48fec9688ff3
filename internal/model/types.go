package model

import (
	"fmt"
	"strings"
)

// CommandResult records the outcome of one external command invocation.
//
// Every command winstrap shells out to (the Scoop installer, scoop itself,
// the Python interpreter during handoff) produces exactly one CommandResult.
// The error-handling policy — fatal by default, tolerated for explicitly
// marked steps — is applied by the caller inspecting ExitCode; the executor
// layer never decides severity itself.
type CommandResult struct {
	// Name is the resolved executable that was invoked.
	Name string `json:"name"`

	// Args are the arguments the executable was invoked with.
	Args []string `json:"args,omitempty"`

	// ExitCode is the process exit status. Zero means success.
	ExitCode int `json:"exitCode"`

	// Output is the combined stdout/stderr of the command. It is included
	// in fatal error messages so the user sees why a tool failed.
	Output string `json:"output,omitempty"`
}

// CommandLine reconstructs the invoked command line for log and error output.
func (r CommandResult) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	return r.Name + " " + strings.Join(r.Args, " ")
}

// Success reports whether the command exited with status zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// ExitCode defines standard CLI exit codes for the winstrap binary.
// These codes allow CI systems to programmatically determine which
// provisioning step failed. When the handoff script runs, its exit code
// is propagated verbatim and overrides this classification.
type ExitCode int

const (
	// ExitSuccess indicates the run completed successfully (including the
	// no-op case where no handoff script exists).
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDownloadError indicates the package-manager installer script
	// could not be downloaded.
	ExitDownloadError ExitCode = 2

	// ExitInstallError indicates a package-manager command (installer,
	// configuration, or a fatal baseline package install) failed.
	ExitInstallError ExitCode = 3

	// ExitInterpreterError indicates the Python interpreter could not be
	// located or installed.
	ExitInterpreterError ExitCode = 4

	// ExitManifestError indicates the project manifest exists but could
	// not be parsed.
	ExitManifestError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// CommandFailed builds the fatal-step error for a command that exited
// non-zero. The message names the exact command line and its exit code, so
// the user knows precisely where the run stopped.
func CommandFailed(code ExitCode, res CommandResult) *CLIError {
	msg := fmt.Sprintf("command %q failed with exit code %d", res.CommandLine(), res.ExitCode)
	if out := strings.TrimSpace(res.Output); out != "" {
		msg = fmt.Sprintf("%s\n%s", msg, out)
	}
	return NewCLIError(code, msg)
}

// HandoffExit signals that the handoff script ran and exited with the given
// code. It is not a winstrap failure: the CLI layer exits with the carried
// code without printing an error message.
type HandoffExit struct {
	// Code is the handoff script's exit code, propagated verbatim.
	Code int
}

// Error satisfies the error interface so HandoffExit can travel through
// cobra's RunE return path.
func (e *HandoffExit) Error() string {
	return fmt.Sprintf("handoff script exited with code %d", e.Code)
}
