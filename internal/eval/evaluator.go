// Package eval orchestrates one evaluation run: catalog, oracles, coverage,
// analyzer, comparison and summary, strictly in that order.
package eval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"slicecheck/internal/analyzer"
	"slicecheck/internal/catalog"
	"slicecheck/internal/compare"
	"slicecheck/internal/coverage"
)

// Request names the locations of one run. All paths should be absolute.
type Request struct {
	CatalogPath string

	// OracleDir holds {task}.xml for every task.
	OracleDir string

	ProjectDir string
	ScratchDir string
	FailureDir string
}

// OraclePath returns the expected artifact of task.
func (r Request) OraclePath(task catalog.Task) string {
	return filepath.Join(r.OracleDir, task.ArtifactName())
}

// Evaluator wires the collaborators of a run.
type Evaluator struct {
	Coverage *coverage.Collector
	Analyzer analyzer.Analyzer

	// Jobs bounds concurrent analyzer invocations.
	Jobs int

	// Out receives the summary. Nil skips rendering.
	Out    io.Writer
	Render RenderOptions

	Sink   Sink
	Logger *slog.Logger
}

// Evaluate performs a full run and returns its exit code.
//
// A malformed catalog or an unusable oracle aborts the run with an error
// before the build or the analyzer is started. Everything after that is
// reported through the Result: a failing build yields zero coverage, and a
// failing analyzer yields an indeterminate verdict.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (int, *Result, error) {
	runID := uuid.NewString()
	log := e.logger().With("run_id", runID)

	e.phase(PhaseCatalog)
	cat, err := catalog.Load(req.CatalogPath)
	if err != nil {
		return ExitFailure, nil, err
	}
	log.Info("catalog loaded", "path", req.CatalogPath, "tasks", cat.Len())

	e.phase(PhaseOracles)
	for _, task := range cat.Tasks {
		if _, err := compare.LoadOracle(task.Name, req.OraclePath(task)); err != nil {
			return ExitFailure, nil, err
		}
	}

	e.phase(PhaseCoverage)
	cov := e.Coverage.Collect(ctx, req.ProjectDir)

	e.phase(PhaseAnalyze)
	driver := analyzer.NewDriver(e.Analyzer, req.ScratchDir, req.ProjectDir, log)
	driver.Jobs = e.Jobs
	driver.RunAll(ctx, cat.Tasks)

	e.phase(PhaseCompare)
	cmp := compare.New(req.FailureDir, log)
	outcomes := make([]compare.Outcome, 0, cat.Len())
	for _, task := range cat.Tasks {
		out, err := cmp.Compare(task.Name, req.OraclePath(task), analyzer.OutputPath(req.ScratchDir, task))
		if err != nil {
			// The oracle was readable during preflight. Report what was
			// compared so far before giving up.
			res := newResult(runID, cov, req.FailureDir, outcomes)
			e.summarize(log, res)
			return ExitFailure, res, fmt.Errorf("oracle changed during run: %w", err)
		}
		log.Info("task evaluated", "task", task.Name, "verdict", out.Verdict)
		SafeRecord(e.Sink, Event{Kind: EventVerdict, Phase: PhaseCompare, Task: task.Name, Verdict: out.Verdict})
		outcomes = append(outcomes, out)
	}

	res := newResult(runID, cov, req.FailureDir, outcomes)

	e.summarize(log, res)
	return res.ExitCode(), res, nil
}

func (e *Evaluator) summarize(log *slog.Logger, res *Result) {
	e.phase(PhaseSummary)
	if e.Out == nil {
		return
	}
	if err := Render(e.Out, res, e.Render); err != nil {
		log.Warn("cannot write summary", "error", err)
	}
}

func (e *Evaluator) phase(p Phase) {
	SafeRecord(e.Sink, Event{Kind: EventPhaseStarted, Phase: p})
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
