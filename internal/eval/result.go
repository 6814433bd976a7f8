package eval

import (
	"slicecheck/internal/compare"
	"slicecheck/internal/coverage"
)

// Exit codes of an evaluation run.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Result is the outcome of one evaluation run. It is built once by the
// evaluator and only read afterwards.
type Result struct {
	RunID    string
	Coverage coverage.Report

	// Outcomes are in catalog order.
	Outcomes []compare.Outcome

	// FailureDir is where non-matching artifacts were preserved.
	FailureDir string

	index map[string]int
}

func newResult(runID string, cov coverage.Report, failureDir string, outcomes []compare.Outcome) *Result {
	r := &Result{
		RunID:      runID,
		Coverage:   cov,
		Outcomes:   outcomes,
		FailureDir: failureDir,
		index:      make(map[string]int, len(outcomes)),
	}
	for i, o := range outcomes {
		r.index[o.Task] = i
	}
	return r
}

// Verdict returns the verdict recorded for task.
func (r *Result) Verdict(task string) (compare.Verdict, bool) {
	if r == nil {
		return "", false
	}
	i, ok := r.index[task]
	if !ok {
		return "", false
	}
	return r.Outcomes[i].Verdict, true
}

// Verdicts returns a copy of the task to verdict mapping.
func (r *Result) Verdicts() map[string]compare.Verdict {
	out := make(map[string]compare.Verdict, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.Task] = o.Verdict
	}
	return out
}

// AllMatch reports whether every task matched. An empty run matches
// vacuously.
func (r *Result) AllMatch() bool {
	for _, o := range r.Outcomes {
		if !o.Verdict.Passed() {
			return false
		}
	}
	return true
}

// Failed returns the outcomes that did not match, in catalog order.
func (r *Result) Failed() []compare.Outcome {
	var out []compare.Outcome
	for _, o := range r.Outcomes {
		if !o.Verdict.Passed() {
			out = append(out, o)
		}
	}
	return out
}

// ExitCode is ExitSuccess iff every verdict is a match.
func (r *Result) ExitCode() int {
	if r.AllMatch() {
		return ExitSuccess
	}
	return ExitFailure
}
