package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"slicecheck/internal/analyzer"
	"slicecheck/internal/catalog"
	"slicecheck/internal/compare"
	"slicecheck/internal/core"
	"slicecheck/internal/coverage"
	"slicecheck/internal/eval"
)

func runEvaluation(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	s, err := opts.resolve(cmd, stderr)
	if err != nil {
		return err
	}

	executor := core.NewExecutor(s.Project)
	executor.Logger = s.Logger

	runner := coverage.NewCommandRunner(s.BuildCommand)
	runner.Executor = executor
	collector := coverage.NewCollector(runner, s.Logger)
	collector.ReportPath = s.CoverageReport
	collector.Exclude = s.ExclusionSet().Exclude
	collector.Diagnostics = stderr

	slicer := &analyzer.JavaSlicer{
		Executor:  executor,
		JavaBin:   s.Java,
		Jar:       s.Jar,
		MainClass: s.MainClass,
	}

	ev := &eval.Evaluator{
		Coverage: collector,
		Analyzer: slicer,
		Jobs:     s.Jobs,
		Out:      stdout,
		Render:   eval.RenderOptions{ShowDiff: s.ShowDiff, NoColor: opts.noColor},
		Sink:     eval.LogSink{Logger: s.Logger},
		Logger:   s.Logger,
	}
	code, _, err := ev.Evaluate(cmd.Context(), eval.Request{
		CatalogPath: s.Tasks,
		OracleDir:   s.Expected,
		ProjectDir:  s.Project,
		ScratchDir:  s.Scratch,
		FailureDir:  s.Failures,
	})
	if err != nil {
		return err
	}
	if code != eval.ExitSuccess {
		return &evaluationFailed{code: code}
	}
	return nil
}

func runValidate(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	s, err := opts.resolve(cmd, stderr)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(s.Tasks)
	if err != nil {
		return err
	}
	req := eval.Request{OracleDir: s.Expected}
	var errs []error
	for _, task := range cat.Tasks {
		oracle, err := compare.LoadOracle(task.Name, req.OraclePath(task))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.Logger.Debug("oracle ok", "task", task.Name, "entries", oracle.Len())
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d task(s) valid, every expected artifact parses\n", cat.Len())
	return nil
}

func runCompare(cmd *cobra.Command, opts *options, expectedArg, actualArg string, stdout, stderr io.Writer) error {
	s, err := opts.resolve(cmd, stderr)
	if err != nil {
		return err
	}
	expectedPath, err := resolveUnderWorkDir(s.WorkDir, expectedArg)
	if err != nil {
		return err
	}
	actualPath, err := resolveUnderWorkDir(s.WorkDir, actualArg)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(actualPath), filepath.Ext(actualPath))
	out, err := compare.Check(name, expectedPath, actualPath, s.Logger)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s %s", out.Verdict.Symbol(), out.Verdict)
	if sum := out.Summary(); sum != "" {
		line += ": " + sum
	}
	fmt.Fprintln(stdout, line)
	if out.Diff != "" {
		fmt.Fprint(stdout, out.Diff)
	}
	if !out.Verdict.Passed() {
		return &evaluationFailed{code: ExitEvaluationFailure}
	}
	return nil
}
