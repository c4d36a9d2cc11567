package errors

import (
	"fmt"
)

// CommandError carries the process exit code a command should terminate with.
// The review command uses it to map the gate verdict onto exit codes without
// printing a second error message on top of the rendered report.
type CommandError struct {
	ExitCode    int
	CommonError string
	Silent      bool
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.CommonError
}

// NewCommandError creates a new CommandError wrapping err with the given code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
	}
}

// NewSilentExit creates a CommandError that only sets the exit code. Used for
// the blocking-findings verdict, where the report itself is the message.
func NewSilentExit(code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: fmt.Sprintf("exit code %d", code),
		Silent:      true,
	}
}
