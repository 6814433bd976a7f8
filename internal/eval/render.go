package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"slicecheck/internal/compare"
	"slicecheck/internal/coverage"
)

var (
	colorMatch    = lipgloss.Color("#2CD7C7")
	colorMismatch = lipgloss.Color("#E74C3C")
	colorUnknown  = lipgloss.Color("#F4D03F")
	colorMuted    = lipgloss.Color("#6C7A80")
)

// RenderOptions controls the summary.
type RenderOptions struct {
	// ShowDiff appends the unified diff of every mismatching task.
	ShowDiff bool

	// NoColor disables styling even when w is a terminal.
	NoColor bool
}

type summaryStyles struct {
	title, muted lipgloss.Style
	verdict      map[compare.Verdict]lipgloss.Style
}

func newSummaryStyles(r *lipgloss.Renderer) summaryStyles {
	return summaryStyles{
		title: r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(colorMuted),
		verdict: map[compare.Verdict]lipgloss.Style{
			compare.Match:         r.NewStyle().Foreground(colorMatch),
			compare.Mismatch:      r.NewStyle().Foreground(colorMismatch).Bold(true),
			compare.Indeterminate: r.NewStyle().Foreground(colorUnknown),
		},
	}
}

// Render writes the human-readable summary of res to w. Color is used only
// when w is a terminal and opts.NoColor is unset.
func Render(w io.Writer, res *Result, opts RenderOptions) error {
	r := lipgloss.NewRenderer(w)
	if opts.NoColor {
		r.SetColorProfile(termenv.Ascii)
	}
	st := newSummaryStyles(r)

	var b strings.Builder
	cov := res.Coverage
	fmt.Fprintf(&b, "%s\n", st.title.Render("Coverage"))
	fmt.Fprintf(&b, "    Line Cov: %.4f, Branch Cov: %.4f, Avg: %.4f\n",
		cov.LineCoverage, cov.BranchCoverage, cov.Average())
	if cov.Status != "" && cov.Status != coverage.StatusCollected {
		fmt.Fprintf(&b, "    %s\n", st.muted.Render("("+string(cov.Status)+")"))
	}

	fmt.Fprintf(&b, "%s\n", st.title.Render("Tasks"))
	if len(res.Outcomes) == 0 {
		fmt.Fprintf(&b, "    %s\n", st.muted.Render("no tasks declared"))
	}
	width := 0
	for _, o := range res.Outcomes {
		width = max(width, len(o.Task))
	}
	for _, o := range res.Outcomes {
		style := st.verdict[o.Verdict]
		line := fmt.Sprintf("    %s %-*s  %s", style.Render(o.Verdict.Symbol()), width, o.Task, style.Render(o.Verdict.String()))
		if s := o.Summary(); s != "" {
			line += "  " + st.muted.Render(s)
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	failed := res.Failed()
	passed := len(res.Outcomes) - len(failed)
	fmt.Fprintf(&b, "%d/%d tasks match\n", passed, len(res.Outcomes))
	if len(failed) > 0 && res.FailureDir != "" {
		fmt.Fprintf(&b, "%s\n", st.muted.Render("failure artifacts: "+res.FailureDir))
	}

	if opts.ShowDiff {
		for _, o := range failed {
			if o.Diff == "" {
				continue
			}
			fmt.Fprintf(&b, "\n%s\n%s", st.title.Render(o.Task), o.Diff)
			if !strings.HasSuffix(o.Diff, "\n") {
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
