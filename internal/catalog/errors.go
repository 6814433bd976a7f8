package catalog

import "fmt"

// MalformedError reports a catalog that cannot be used.
//
// It is fatal for an evaluation run: no task executes when the catalog is
// malformed.
type MalformedError struct {
	Source  string
	Code    string
	Message string
	Cause   error
}

func (e *MalformedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("malformed catalog %s (%s): %s", e.Source, e.Code, e.Message)
	}
	return fmt.Sprintf("malformed catalog %s: %s", e.Source, e.Message)
}

func (e *MalformedError) Unwrap() error { return e.Cause }

const (
	CodeUnreadable    = "Unreadable"
	CodeSyntax        = "Syntax"
	CodeMissingTasks  = "MissingTasks"
	CodeInvalidTask   = "InvalidTask"
	CodeDuplicateName = "DuplicateName"
)

func malformed(source, code string, cause error, format string, args ...any) error {
	return &MalformedError{Source: source, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}
