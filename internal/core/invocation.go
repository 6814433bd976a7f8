package core

import "strings"

// Invocation is a fully constructed request to run an external program.
//
// Path and Args are passed to the operating system verbatim; no shell is
// involved, so arguments never need quoting.
type Invocation struct {
	// Name is a human-readable label used in logs (e.g. "build", a task name).
	Name string

	// Path is the program to execute. Resolved through PATH when it contains
	// no separator.
	Path string

	// Args are the program arguments, excluding argv[0].
	Args []string

	// Dir is the working directory of the child process. Empty means the
	// Executor's WorkingDir.
	Dir string

	// Env is the explicit environment handed to the process.
	Env map[string]string

	// InheritEnv prepends the host environment before Env is applied.
	// Build tools need PATH, HOME and JAVA_HOME; tests usually leave this off.
	InheritEnv bool
}

// CommandLine renders the invocation for logs.
func (inv Invocation) CommandLine() string {
	parts := make([]string, 0, len(inv.Args)+1)
	parts = append(parts, inv.Path)
	for _, a := range inv.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
