// Package cli is the command-line surface of slicecheck: flag and
// configuration handling, command wiring and exit code mapping.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Run executes slicecheck with args (excluding argv[0]) and returns the
// process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil && !silent(err) {
		fmt.Fprintln(stderr, "slicecheck:", err)
	}
	return ExitCode(err)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "slicecheck",
		Short: "Evaluate a program slicer against recorded expected slices",
		Long: `slicecheck runs the slicer once per catalog task, compares every produced
trace against its expected artifact and reports coverage of the slicer's own
test suite. Running without a subcommand is the same as "slicecheck run".`,
		Args:          noPositionalArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluation(cmd, opts, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocationf("%v", err)
	})
	opts.bind(root)

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Build, run every task and compare against the expected artifacts",
			Args:  noPositionalArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runEvaluation(cmd, opts, stdout, stderr)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the task catalog and every expected artifact without running anything",
			Args:  noPositionalArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runValidate(cmd, opts, stdout, stderr)
			},
		},
		&cobra.Command{
			Use:   "compare <expected.xml> <actual.xml>",
			Short: "Compare two trace artifacts structurally",
			Args: func(_ *cobra.Command, args []string) error {
				if len(args) != 2 {
					return invalidInvocationf("compare takes exactly 2 arguments, got %d", len(args))
				}
				return nil
			},
			RunE: func(cmd *cobra.Command, args []string) error {
				return runCompare(cmd, opts, args[0], args[1], stdout, stderr)
			},
		},
	)
	return root
}

func noPositionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return invalidInvocationf("%s: unexpected arguments %q", cmd.CommandPath(), args)
	}
	return nil
}
