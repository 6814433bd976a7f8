package compare

import (
	"errors"
	"fmt"
	"os"
)

// OracleError reports an expected artifact that cannot be read or parsed.
//
// This is a setup defect in the oracle set, not a task outcome, so it aborts
// the run instead of becoming a verdict.
type OracleError struct {
	Task  string
	Path  string
	Cause error
}

func (e *OracleError) Error() string {
	if e == nil {
		return ""
	}
	if errors.Is(e.Cause, os.ErrNotExist) {
		return fmt.Sprintf("oracle for task %q missing: %s", e.Task, e.Path)
	}
	return fmt.Sprintf("oracle for task %q unusable: %v", e.Task, e.Cause)
}

func (e *OracleError) Unwrap() error { return e.Cause }
