// Package compare decides, per task, whether the analyzer's trace artifact
// matches its oracle and preserves both sides when it does not.
package compare

import (
	"fmt"

	"slicecheck/internal/trace"
)

// Verdict is the per-task outcome of a comparison.
type Verdict string

const (
	// Match: the produced artifact equals the oracle structurally.
	Match Verdict = "match"
	// Mismatch: both artifacts parsed but their canonical mappings differ.
	Mismatch Verdict = "mismatch"
	// Indeterminate: the oracle exists but no usable artifact was produced.
	Indeterminate Verdict = "indeterminate"
)

// Symbol returns the glyph shown in the summary table.
func (v Verdict) Symbol() string {
	switch v {
	case Match:
		return "✔"
	case Mismatch:
		return "✘"
	case Indeterminate:
		return "∅"
	default:
		return "?"
	}
}

// Passed reports whether the verdict counts toward a successful run.
func (v Verdict) Passed() bool { return v == Match }

func (v Verdict) String() string { return string(v) }

// Outcome is the full result of comparing one task.
type Outcome struct {
	Task    string
	Verdict Verdict

	// Reason explains an indeterminate verdict ("missing" or "unparsable").
	Reason string

	// Changes lists key-level differences for a mismatch.
	Changes []trace.Change

	// Diff is the rendered unified diff for a mismatch.
	Diff string

	// Preserved lists the files written to the failure directory.
	Preserved []string

	// PreserveErr is set when copying into the failure directory failed.
	// The verdict stands regardless.
	PreserveErr error
}

// Summary is a one-line description used in logs and the summary table.
func (o Outcome) Summary() string {
	switch o.Verdict {
	case Match:
		return ""
	case Indeterminate:
		return "no usable artifact (" + o.Reason + ")"
	default:
		return fmt.Sprintf("%d differing entr%s", len(o.Changes), plural(len(o.Changes), "y", "ies"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
