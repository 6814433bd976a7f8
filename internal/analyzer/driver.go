package analyzer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"slicecheck/internal/catalog"
)

// OutputPath returns the artifact location of task inside dir.
func OutputPath(dir string, task catalog.Task) string {
	return filepath.Join(dir, task.ArtifactName())
}

// Driver invokes an Analyzer for catalog tasks.
//
// The driver does not judge the analyzer's exit status. A crashed or failed
// invocation simply leaves no artifact, which the comparison later reports
// as indeterminate.
type Driver struct {
	Analyzer   Analyzer
	ScratchDir string
	ProjectDir string

	// Jobs bounds concurrent invocations in RunAll; values below 2 run
	// tasks one after another.
	Jobs int

	Logger *slog.Logger
}

// NewDriver creates a sequential Driver.
func NewDriver(a Analyzer, scratchDir, projectDir string, logger *slog.Logger) *Driver {
	return &Driver{Analyzer: a, ScratchDir: scratchDir, ProjectDir: projectDir, Jobs: 1, Logger: logger}
}

// Run invokes the analyzer for one task, writing to ScratchDir/{name}.xml.
//
// An artifact left at that path by an earlier run is removed first so that
// it cannot be mistaken for this run's output.
func (d *Driver) Run(ctx context.Context, task catalog.Task) {
	log := d.logger().With("task", task.Name)
	out := OutputPath(d.ScratchDir, task)

	if err := os.MkdirAll(d.ScratchDir, 0o755); err != nil {
		log.Error("cannot create scratch directory", "path", d.ScratchDir, "error", err)
		return
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		log.Warn("cannot remove stale artifact", "path", out, "error", err)
	}

	log.Debug("running analyzer", "target", task.String(), "output", out)
	res, err := d.Analyzer.Analyze(ctx, Request{Task: task, OutputPath: out, ProjectDir: d.ProjectDir})
	switch {
	case err != nil:
		log.Warn("analyzer invocation failed", "error", err)
	case res == nil:
	case !res.Succeeded():
		log.Debug("analyzer exited non-zero", "exit_code", res.ExitCode, "stderr", string(res.Stderr))
	case res.HasDiagnostics():
		log.Debug("analyzer wrote diagnostics", "stderr", string(res.Stderr))
	}
}

// RunAll invokes the analyzer for every task in catalog order. With Jobs
// above 1 up to Jobs tasks run at once; each task writes only its own
// artifact path, so no coordination is needed beyond the wait.
func (d *Driver) RunAll(ctx context.Context, tasks []catalog.Task) {
	if d.Jobs < 2 {
		for _, t := range tasks {
			d.Run(ctx, t)
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Jobs)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			d.Run(gctx, t)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
