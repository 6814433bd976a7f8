package cli

import (
	"context"
	"errors"
	"fmt"

	"slicecheck/internal/catalog"
	"slicecheck/internal/compare"
)

const (
	ExitSuccess           = 0
	ExitEvaluationFailure = 1
	ExitInvalidInvocation = 2
	ExitSetupError        = 3
	ExitInternalError     = 4
)

// InvocationError is a problem with how slicecheck was invoked or
// configured, detected before any evaluation work starts.
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

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func setupError(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &InvocationError{ExitCode: ExitSetupError, Message: msg, Cause: cause}
}

// evaluationFailed carries a non-zero evaluation exit code through cobra.
// It has no message of its own; the summary already explains the failure.
type evaluationFailed struct{ code int }

func (e *evaluationFailed) Error() string { return fmt.Sprintf("evaluation failed (exit %d)", e.code) }

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var failed *evaluationFailed
	if errors.As(err, &failed) {
		return failed.code
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}

	var malformed *catalog.MalformedError
	var oracle *compare.OracleError
	switch {
	case errors.As(err, &malformed), errors.As(err, &oracle):
		return ExitSetupError
	case errors.Is(err, context.Canceled):
		return ExitEvaluationFailure
	}
	return ExitInternalError
}

// silent reports whether err needs no message on stderr.
func silent(err error) bool {
	var failed *evaluationFailed
	return errors.As(err, &failed)
}
