package coverage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"slicecheck/internal/core"
)

// BuildRunner runs the project's build-and-test cycle. A returned error
// means the build could not be run at all.
type BuildRunner interface {
	Build(ctx context.Context, projectDir string) (*core.ExecutionResult, error)
}

// CommandRunner is a BuildRunner executing a fixed command line in the
// project directory.
type CommandRunner struct {
	Executor *core.Executor
	Command  []string
	Env      map[string]string
}

// DefaultBuildCommand assembles the project and runs its tests, which also
// writes the coverage report.
var DefaultBuildCommand = []string{"./gradlew", "assemble", "test"}

// NewCommandRunner creates a runner for command; an empty command means
// DefaultBuildCommand.
func NewCommandRunner(command []string) *CommandRunner {
	if len(command) == 0 {
		command = DefaultBuildCommand
	}
	return &CommandRunner{Executor: core.NewExecutor(""), Command: command}
}

// Build implements BuildRunner.
func (r *CommandRunner) Build(ctx context.Context, projectDir string) (*core.ExecutionResult, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("build command is empty")
	}
	exec := r.Executor
	if exec == nil {
		exec = core.NewExecutor(projectDir)
	}
	return exec.Execute(ctx, core.Invocation{
		Name:       "build",
		Path:       r.Command[0],
		Args:       r.Command[1:],
		Dir:        projectDir,
		Env:        r.Env,
		InheritEnv: true,
	})
}

// Status records how the coverage figures were obtained.
type Status string

const (
	StatusCollected     Status = "collected"
	StatusBuildFailed   Status = "build_failed"
	StatusReportMissing Status = "report_missing"
	StatusReportInvalid Status = "report_invalid"
)

// Report is the outcome of one collection. Unless Status is
// StatusCollected both ratios are 0.
type Report struct {
	LineCoverage   float64
	BranchCoverage float64
	Status         Status
	Counters       Counters

	// Diagnostics is the build's stderr output, or the reason the report
	// could not be used.
	Diagnostics string
}

// Average returns the mean of line and branch coverage.
func (r Report) Average() float64 {
	return (r.LineCoverage + r.BranchCoverage) / 2
}

// DefaultReportPath is where the build writes its CSV report, relative to
// the project directory.
var DefaultReportPath = filepath.Join("build", "jacoco", "csv")

// Collector drives a BuildRunner and aggregates its coverage report.
type Collector struct {
	Runner BuildRunner

	// ReportPath locates the CSV report; relative paths resolve against the
	// project directory.
	ReportPath string

	// Exclude drops report rows before aggregation. Nil keeps every row.
	Exclude ExcludeFunc

	// Diagnostics receives build stderr verbatim. Nil discards it.
	Diagnostics io.Writer

	Logger *slog.Logger
}

// NewCollector creates a Collector with the default report path and
// exclusion set.
func NewCollector(runner BuildRunner, logger *slog.Logger) *Collector {
	return &Collector{
		Runner:     runner,
		ReportPath: DefaultReportPath,
		Exclude:    DefaultExclusions().Exclude,
		Logger:     logger,
	}
}

// Collect runs the build and reduces the report to two ratios.
//
// Collect never fails. A build that writes to stderr (or cannot start), a
// missing report and an unreadable report all degrade to (0, 0) with the
// corresponding Status; coverage is then unknown, not an error.
func (c *Collector) Collect(ctx context.Context, projectDir string) Report {
	log := c.logger()

	res, err := c.Runner.Build(ctx, projectDir)
	if err != nil {
		log.Error("build could not run", "project", projectDir, "error", err)
		c.surface([]byte(err.Error() + "\n"))
		return Report{Status: StatusBuildFailed, Diagnostics: err.Error()}
	}
	if res.HasDiagnostics() {
		c.surface(res.Stderr)
		log.Warn("build reported diagnostics, coverage counted as zero", "exit_code", res.ExitCode)
		return Report{Status: StatusBuildFailed, Diagnostics: string(res.Stderr)}
	}

	path := c.reportPath(projectDir)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("coverage report not found", "path", path)
			return Report{Status: StatusReportMissing, Diagnostics: "coverage report not found: " + path}
		}
		log.Warn("coverage report unreadable", "path", path, "error", err)
		return Report{Status: StatusReportInvalid, Diagnostics: err.Error()}
	}
	defer f.Close()

	counters, err := ParseReport(f, c.Exclude)
	if err != nil {
		log.Warn("coverage report invalid", "path", path, "error", err)
		return Report{Status: StatusReportInvalid, Diagnostics: fmt.Sprintf("%s: %v", path, err)}
	}

	rep := Report{
		LineCoverage:   counters.LineCoverage(),
		BranchCoverage: counters.BranchCoverage(),
		Status:         StatusCollected,
		Counters:       counters,
	}
	log.Info("coverage collected",
		"line", rep.LineCoverage,
		"branch", rep.BranchCoverage,
		"rows", counters.Rows,
		"excluded", counters.Excluded)
	return rep
}

func (c *Collector) reportPath(projectDir string) string {
	p := c.ReportPath
	if p == "" {
		p = DefaultReportPath
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectDir, p)
}

func (c *Collector) surface(b []byte) {
	if c.Diagnostics == nil || len(b) == 0 {
		return
	}
	_, _ = c.Diagnostics.Write(b)
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
