package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario-file|dir>",
		Short: "Run edit scenarios through the harness",
		Long: `Run YAML edit scenarios. Each scenario loads a composition, applies,
undoes and redoes edits in a session backed by an in-memory store, and
checks the expected outcomes and final-state assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  reel test ./scenarios
  reel test ./scenarios --filter "undo-*"
  reel test ./scenarios/reorder.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern on the file name")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	files, err := harness.FindScenarios(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenarios not found: %v", err), nil)
	}
	files, err = filterScenarios(files, opts.Filter)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	f.VerboseLog("Running %d scenario file(s) from %s", len(files), path)

	res := harness.RunSuite(files)

	if f.JSON() {
		if res.Failed > 0 {
			return f.Fail(ExitFailure, ErrCodeScenariosFailed, res.Summary(), res)
		}
		return f.Success(res)
	}

	if res.Total == 0 {
		fmt.Fprintln(f.Writer, "No scenarios found.")
		return nil
	}
	for _, fail := range res.Failures {
		name := fail.Scenario
		if name == "" {
			name = filepath.Base(fail.Path)
		}
		_, _ = errorColor.Fprintf(f.Writer, "\u2717 %s\n", name)
		for _, e := range fail.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", strings.ReplaceAll(e, "\n", "\n  "))
		}
	}
	if res.Failed > 0 {
		_, _ = errorColor.Fprintln(f.Writer, res.Summary())
		return &ExitError{Code: ExitFailure, Message: res.Summary(), Reported: true}
	}
	f.OK("%s", res.Summary())
	return nil
}

// filterScenarios keeps the files whose base name, without extension,
// matches pattern. An empty pattern keeps everything.
func filterScenarios(files []string, pattern string) ([]string, error) {
	if pattern == "" {
		return files, nil
	}
	kept := []string{}
	for _, file := range files {
		base := filepath.Base(file)
		matched, err := filepath.Match(pattern, strings.TrimSuffix(base, filepath.Ext(base)))
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			kept = append(kept, file)
		}
	}
	return kept, nil
}
