package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/detent/workflow-doctor/internal/debug"
	"github.com/detent/workflow-doctor/internal/output"
	"github.com/detent/workflow-doctor/internal/runner"
	"github.com/detent/workflow-doctor/internal/sentry"
	"github.com/detent/workflow-doctor/internal/workflow"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	workflowsDir string
	workflowFile string
	ignore       []string
	outputFormat string
	parallel     int
	failFast     bool
	debugLog     string
)

var rootCmd = &cobra.Command{
	Use:   "workflow-doctor",
	Short: "Static hygiene checks for GitHub Actions workflows",
	Long: `workflow-doctor reads the workflow files in a directory and reports
security and correctness concerns without running anything or contacting
GitHub:

  - missing top-level and job-level permissions
  - action references that are unpinned or pinned to a floating branch or tag
  - workflows triggered by pull_request_target

Warnings never change the exit code. The command exits 1 when the workflows
directory is missing or a file cannot be parsed, and 2 when the YAML parser
fails its startup check.`,
	Example: `  # Analyze .github/workflows
  workflow-doctor

  # Analyze another directory
  workflow-doctor --workflows-dir ci/workflows

  # Emit SARIF for code scanning
  workflow-doctor --output sarif > doctor.sarif`,
	Version:       Version,
	Args:          cobra.NoArgs,
	RunE:          runDoctor,
	SilenceUsage:  true, // Don't show usage on runtime errors
	SilenceErrors: true, // We handle errors ourselves
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.Flags()
	flags.StringVarP(&workflowsDir, "workflows-dir", "w", runner.WorkflowsDir, "workflows directory path")
	flags.StringVar(&workflowFile, "workflow", "", "specific workflow file (e.g., ci.yml)")
	flags.StringArrayVar(&ignore, "ignore", nil, "skip workflow files whose name matches this glob (repeatable)")
	flags.StringVarP(&outputFormat, "output", "o", string(output.TextFormat), "output format: text, json, sarif")
	flags.IntVar(&parallel, "parallel", 0, "files analyzed at once (0 = number of CPUs)")
	flags.BoolVar(&failFast, "fail-fast", false, "stop at the first workflow that fails to parse")
	flags.StringVar(&debugLog, "debug-log", "", "append debug trace to this file")

	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		_, _ = fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", err)
		return err
	})
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	stderr := cmd.ErrOrStderr()

	if err := workflow.CheckParser(); err != nil {
		_, _ = fmt.Fprintf(stderr, "A working YAML parser is required to read workflow files: %v\n", err)
		return err
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	if debugLog != "" {
		if err := debug.Init(debugLog); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return err
		}
		defer debug.Close()
	}

	r, err := runner.New(runner.Config{
		WorkflowsDir: workflowsDir,
		WorkflowFile: workflowFile,
		Ignore:       ignore,
		Parallel:     parallel,
		FailFast:     failFast,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return err
	}

	sentry.SetRunTags(string(format), parallel)

	summary, err := r.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, workflow.ErrDirNotFound) {
			_, _ = fmt.Fprintln(stderr, err)
		} else {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if err := output.Write(out, summary, format, useColor(out)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return summary.Err()
}

// useColor is true only for a terminal stdout without NO_COLOR set.
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
