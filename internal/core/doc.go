// Package core provides the process boundary shared by every external
// collaborator of the evaluation harness.
//
// # Design Principles
//
// The build tool and the analyzer under test are opaque programs. This package
// reduces both to the same shape:
//
//  1. An Invocation describes what to run, where, and with which environment
//  2. Execute blocks until the process exits and both streams are drained
//  3. A non-zero exit status is a result, never an error
//
// # Core Types
//
// Invocation: A fully constructed command line plus working directory.
// ExecutionResult: Captured stdout, stderr and exit code of one process.
// Executor: Runs invocations without touching the harness's own cwd.
package core
