package trace

import (
	"bytes"
	"fmt"

	"github.com/sourcegraph/go-diff/diff"
)

// ChangeKind classifies one key-level difference.
type ChangeKind string

const (
	// ChangeModified: key present on both sides with different instructions.
	ChangeModified ChangeKind = "modified"
	// ChangeMissing: key expected but not produced.
	ChangeMissing ChangeKind = "missing"
	// ChangeUnexpected: key produced but not expected.
	ChangeUnexpected ChangeKind = "unexpected"
)

// Change is one key-level difference between expected and actual.
type Change struct {
	Kind     ChangeKind
	Key      string
	Expected string
	Actual   string
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeModified:
		return fmt.Sprintf("%s: expected %q, got %q", c.Key, c.Expected, c.Actual)
	case ChangeMissing:
		return fmt.Sprintf("%s: missing (expected %q)", c.Key, c.Expected)
	default:
		return fmt.Sprintf("%s: unexpected %q", c.Key, c.Actual)
	}
}

// Diff lists the differences from expected to actual. Expected keys come
// first in expected order, then unexpected keys in actual order. Equal
// mappings produce no changes.
func Diff(expected, actual *Canonical) []Change {
	var changes []Change
	for _, k := range expected.Keys() {
		ev, _ := expected.Get(k)
		av, ok := actual.Get(k)
		switch {
		case !ok:
			changes = append(changes, Change{Kind: ChangeMissing, Key: k, Expected: ev})
		case av != ev:
			changes = append(changes, Change{Kind: ChangeModified, Key: k, Expected: ev, Actual: av})
		}
	}
	for _, k := range actual.Keys() {
		if _, ok := expected.Get(k); ok {
			continue
		}
		av, _ := actual.Get(k)
		changes = append(changes, Change{Kind: ChangeUnexpected, Key: k, Actual: av})
	}
	return changes
}

// FileDiff builds a single-hunk unified diff over the canonical lines
// ("key instruction") of both sides.
func FileDiff(origName, newName string, expected, actual *Canonical) *diff.FileDiff {
	var body bytes.Buffer
	for _, k := range expected.Keys() {
		ev, _ := expected.Get(k)
		av, ok := actual.Get(k)
		switch {
		case ok && av == ev:
			fmt.Fprintf(&body, " %s %s\n", k, ev)
		case ok:
			fmt.Fprintf(&body, "-%s %s\n", k, ev)
			fmt.Fprintf(&body, "+%s %s\n", k, av)
		default:
			fmt.Fprintf(&body, "-%s %s\n", k, ev)
		}
	}
	for _, k := range actual.Keys() {
		if _, ok := expected.Get(k); ok {
			continue
		}
		av, _ := actual.Get(k)
		fmt.Fprintf(&body, "+%s %s\n", k, av)
	}

	hunk := &diff.Hunk{
		OrigLines: int32(expected.Len()),
		NewLines:  int32(actual.Len()),
		Body:      body.Bytes(),
	}
	if hunk.OrigLines > 0 {
		hunk.OrigStartLine = 1
	}
	if hunk.NewLines > 0 {
		hunk.NewStartLine = 1
	}

	return &diff.FileDiff{
		OrigName: origName,
		NewName:  newName,
		Hunks:    []*diff.Hunk{hunk},
	}
}

// UnifiedDiff renders FileDiff as text. Equal mappings render as "".
func UnifiedDiff(origName, newName string, expected, actual *Canonical) (string, error) {
	if expected.Equal(actual) {
		return "", nil
	}
	out, err := diff.PrintFileDiff(FileDiff(origName, newName, expected, actual))
	if err != nil {
		return "", fmt.Errorf("trace: render diff: %w", err)
	}
	return string(out), nil
}
