package cli

import (
	"errors"
	"fmt"

	"tasktracker/internal/userdata"
)

const (
	ExitSuccess           = 0
	ExitSessionFailure    = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError carries a semantic exit code for failures that happen before
// a session starts.
type InvocationError struct {
	ExitCode int
	Message  string
	Cause    error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *InvocationError) Unwrap() error { return e.Cause }

func invalidInvocation(err error) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: err.Error(), Cause: err}
}

func configError(err error) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf("configuration error: %v", err), Cause: err}
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	var re *userdata.ReadError
	var we *userdata.WriteError
	if errors.As(err, &re) || errors.As(err, &we) || errors.Is(err, ErrNoInput) {
		return ExitSessionFailure
	}
	return ExitInternalError
}
