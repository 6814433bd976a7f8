package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"syscall"
)

// ExecutionResult contains the captured outcome of one external process.
type ExecutionResult struct {
	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the process exit code.
	// 0 indicates success, non-zero indicates failure.
	ExitCode int
}

// Succeeded reports whether the process exited with status 0.
func (r *ExecutionResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// HasDiagnostics reports whether anything was written to stderr.
func (r *ExecutionResult) HasDiagnostics() bool {
	return r != nil && len(r.Stderr) > 0
}

// Executor runs invocations as child processes.
//
// The working directory is applied to the child only (exec.Cmd.Dir). The
// harness never calls os.Chdir, so relative-path resolution in later phases
// cannot be corrupted by a collaborator that fails halfway.
type Executor struct {
	// WorkingDir is the default directory for invocations without Dir.
	WorkingDir string

	// Logger receives the command line of every started process at debug
	// level. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewExecutor creates a new Executor with the given working directory.
func NewExecutor(workingDir string) *Executor {
	return &Executor{WorkingDir: workingDir}
}

// Execute runs the invocation and waits for it to finish.
//
// There is no built-in timeout: a hung collaborator blocks until ctx is
// cancelled, at which point the whole process group is killed.
func (e *Executor) Execute(ctx context.Context, inv Invocation) (*ExecutionResult, error) {
	if inv.Path == "" {
		return nil, fmt.Errorf("invocation %q: program path is empty", inv.Name)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.Command(inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	if cmd.Dir == "" {
		cmd.Dir = e.WorkingDir
	}
	cmd.Env = buildEnv(inv.Env, inv.InheritEnv)

	// Own process group so cancellation reaches grandchildren (gradle daemons, jvm forks).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("starting process", "name", inv.Name, "command", inv.CommandLine(), "dir", cmd.Dir)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("invocation %q: failed to start: %w", inv.Name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("invocation %q cancelled: %w", inv.Name, ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("invocation %q: %w", inv.Name, err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecutionResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}

// buildEnv constructs the child environment.
//
// Without inherit the environment starts empty and only declared variables
// are visible. Declared variables are appended in sorted order so the
// resulting slice is stable; later entries win on lookup.
func buildEnv(env map[string]string, inherit bool) []string {
	var result []string
	if inherit {
		result = append(result, os.Environ()...)
	} else {
		result = []string{}
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}
