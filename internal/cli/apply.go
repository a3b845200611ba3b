package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/plan"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Resolve string // element id chosen from an ambiguous outcome
}

// ApplyResult is the JSON payload of a successful apply or undo.
type ApplyResult struct {
	Receipt string    `json:"receipt"`
	Version int64     `json:"version"`
	Patch   *ir.Patch `json:"patch,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <composition-id> <plan-file>",
		Short: "Apply an edit plan to a stored composition",
		Long: `Apply an edit plan (JSON or YAML, "-" for JSON on stdin) to a stored
composition and save the new version.

When the selector matches several elements nothing is changed and the
candidates are listed; re-run with --resolve <element-id> to pick one.

Exit codes:
  0 - Edit applied
  1 - Edit rejected, ambiguous, or the composition changed concurrently
  2 - Command error (unreadable plan, missing composition, etc.)

Examples:
  reel apply demo plan.json
  reel apply demo plan.yaml --resolve 0192f1c4-...
  echo '{"operation":"delete","selector":{"index":0}}' | reel apply demo -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Resolve, "resolve", "", "element id to apply the plan to")

	return cmd
}

func runApply(opts *ApplyOptions, id, planPath string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	p, err := readPlan(planPath, cmd.InOrStdin())
	if err != nil {
		if _, ok := engine.KindOf(err); ok {
			return f.failWith(err, nil)
		}
		return f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	comp, err := st.Load(ctx, id)
	if err != nil {
		return f.failWith(err, nil)
	}

	exec := engine.New(engine.WithLogger(opts.logger(cmd)))
	out, err := exec.Apply(comp, p, opts.Resolve)
	if err != nil {
		return f.failWith(err, suggestionsOf(err))
	}

	if out.Status == engine.StatusAmbiguous {
		return reportAmbiguous(f, out.Candidates)
	}

	if err := st.Save(ctx, out.Composition, comp.Version); err != nil {
		return f.failWith(err, nil)
	}
	f.VerboseLog("Saved %s at version %d", id, out.Composition.Version)

	if f.JSON() {
		return f.Success(ApplyResult{Receipt: out.Receipt, Version: out.Composition.Version, Patch: out.Patch})
	}
	f.OK("%s", out.Receipt)
	f.Dim("%s is now at version %d", id, out.Composition.Version)
	return nil
}

// readPlan decodes a plan file; "-" reads JSON from stdin.
func readPlan(path string, stdin io.Reader) (ir.EditPlan, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return ir.EditPlan{}, fmt.Errorf("reading plan: %w", err)
	}
	return plan.DecodeFile(path, data)
}

func suggestionsOf(err error) any {
	var ee *engine.EditError
	if errors.As(err, &ee) && len(ee.Suggestions) > 0 {
		return map[string]any{"suggestions": ee.Suggestions}
	}
	return nil
}

func reportAmbiguous(f *OutputFormatter, candidates []engine.Candidate) error {
	msg := fmt.Sprintf("selector matched %d elements; re-run with --resolve <id>", len(candidates))
	if f.JSON() {
		return f.Fail(ExitFailure, ErrCodeAmbiguous, msg, map[string]any{"candidates": candidates})
	}
	f.Warn("%s", msg)
	for _, c := range candidates {
		label := c.Label
		if label == "" {
			label = "(unlabeled)"
		}
		fmt.Fprintf(f.Writer, "  %s  %-8s %-20s at %s\n", c.ID, c.Type, label, c.Start)
	}
	return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
}
