package compare

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"slicecheck/internal/trace"
)

// Comparator compares produced artifacts against oracles.
type Comparator struct {
	// FailureDir receives {task}_expected.xml and {task}_actual.xml for
	// tasks that do not match. Created on demand.
	FailureDir string

	Logger *slog.Logger
}

// New creates a Comparator writing failure artifacts into failureDir.
func New(failureDir string, logger *slog.Logger) *Comparator {
	return &Comparator{FailureDir: failureDir, Logger: logger}
}

// ExpectedCopyPath returns where the oracle of task is preserved.
func (c *Comparator) ExpectedCopyPath(task string) string {
	return filepath.Join(c.FailureDir, task+"_expected.xml")
}

// ActualCopyPath returns where the produced artifact of task is preserved.
func (c *Comparator) ActualCopyPath(task string) string {
	return filepath.Join(c.FailureDir, task+"_actual.xml")
}

// LoadOracle parses the expected artifact of task. Any failure is an
// *OracleError.
func LoadOracle(task, path string) (*trace.Canonical, error) {
	tr, err := trace.ParseFile(path)
	if err != nil {
		return nil, &OracleError{Task: task, Path: path, Cause: err}
	}
	return tr.Canonical(), nil
}

// Check compares the artifact at actualPath against the oracle at
// expectedPath without touching the failure directory.
//
// The only error returned is an *OracleError; every problem with the
// produced artifact becomes a verdict:
//   - absent or unparsable actual: Indeterminate
//   - canonical mappings differ: Mismatch, with Changes and Diff
//   - otherwise: Match
func Check(task, expectedPath, actualPath string, logger *slog.Logger) (Outcome, error) {
	expected, err := LoadOracle(task, expectedPath)
	if err != nil {
		return Outcome{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("task", task)
	out := Outcome{Task: task}

	actualTrace, err := trace.ParseFile(actualPath)
	if err != nil {
		out.Verdict = Indeterminate
		out.Reason = "unparsable"
		if errors.Is(err, os.ErrNotExist) {
			out.Reason = "missing"
		}
		log.Warn("no usable artifact", "path", actualPath, "reason", out.Reason, "error", err)
		return out, nil
	}

	actual := actualTrace.Canonical()
	if expected.Equal(actual) {
		out.Verdict = Match
		if digest, err := actual.Hash(); err == nil {
			log.Debug("artifact matches oracle", "entries", actual.Len(), "digest", digest)
		}
		return out, nil
	}

	out.Verdict = Mismatch
	out.Changes = trace.Diff(expected, actual)
	out.Diff, err = trace.UnifiedDiff(task+"_expected.xml", task+"_actual.xml", expected, actual)
	if err != nil {
		log.Debug("diff rendering failed", "error", err)
	}
	log.Warn("artifact differs from oracle", "changes", len(out.Changes))
	return out, nil
}

// Compare produces the verdict for one task and keeps the failure
// directory in step with it: an indeterminate task leaves only the oracle
// copy, a mismatch leaves both copies, and a match leaves neither.
func (c *Comparator) Compare(task, expectedPath, actualPath string) (Outcome, error) {
	out, err := Check(task, expectedPath, actualPath, c.logger())
	if err != nil {
		return Outcome{}, err
	}
	switch out.Verdict {
	case Match:
		c.discardStale(task)
	case Indeterminate:
		out.PreserveErr = c.preserve(&out, expectedPath, "")
	default:
		out.PreserveErr = c.preserve(&out, expectedPath, actualPath)
	}
	return out, nil
}

// preserve copies the oracle and, when given, the actual artifact into the
// failure directory. Without an actual artifact any stale actual copy from
// an earlier run is removed so the directory reflects this run only.
func (c *Comparator) preserve(out *Outcome, expectedPath, actualPath string) error {
	if err := ensureDirDurable(c.FailureDir, 0o755); err != nil {
		c.logger().Error("cannot create failure directory", "path", c.FailureDir, "error", err)
		return fmt.Errorf("ensure failure dir: %w", err)
	}

	var errs []error
	dst := c.ExpectedCopyPath(out.Task)
	if err := copyFileAtomic(expectedPath, dst); err != nil {
		errs = append(errs, fmt.Errorf("preserve oracle: %w", err))
	} else {
		out.Preserved = append(out.Preserved, dst)
	}

	actualDst := c.ActualCopyPath(out.Task)
	if actualPath == "" {
		if err := os.Remove(actualDst); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove stale actual copy: %w", err))
		}
	} else if err := copyFileAtomic(actualPath, actualDst); err != nil {
		errs = append(errs, fmt.Errorf("preserve actual: %w", err))
	} else {
		out.Preserved = append(out.Preserved, actualDst)
	}

	err := errors.Join(errs...)
	if err != nil {
		c.logger().Error("failure artifacts incomplete", "task", out.Task, "error", err)
	}
	return err
}

// discardStale removes copies left behind by an earlier failing run of a
// task that now matches.
func (c *Comparator) discardStale(task string) {
	for _, p := range []string{c.ExpectedCopyPath(task), c.ActualCopyPath(task)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			c.logger().Debug("cannot remove stale failure artifact", "path", p, "error", err)
		}
	}
}

func (c *Comparator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
