package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/plan"
	"github.com/roach88/reel/internal/selector"
)

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Selector    string             `json:"selector"`
	Matches     []engine.Candidate `json:"matches"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <composition-id> <selector-json>",
		Short: "Show which elements a selector refers to",
		Long: `Resolve a selector against a stored composition without editing it.

Exit codes:
  0 - One or more elements matched
  1 - Nothing matched (suggestions are printed)
  2 - Command error or malformed selector

Examples:
  reel resolve demo '{"label": "clip"}'
  reel resolve demo '{"type": "video", "index": 1}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runResolve(opts *RootOptions, id, raw string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sel, err := plan.DecodeSelector([]byte(raw))
	if err != nil {
		return f.failWith(err, nil)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	comp, err := st.Load(context.Background(), id)
	if err != nil {
		return f.failWith(err, nil)
	}

	res := ResolveResult{Selector: sel.String(), Matches: []engine.Candidate{}}
	for _, m := range selector.Resolve(sel, comp.Elements) {
		res.Matches = append(res.Matches, engine.Candidate{
			ID:    m.ID,
			Label: m.Label,
			Type:  m.Type,
			Start: ir.Timecode(m.From, comp.Metadata.FPS),
			From:  m.From,
		})
	}
	if len(res.Matches) == 0 {
		res.Suggestions = selector.Suggest(sel, comp.Elements)
		msg := fmt.Sprintf("no element matches %s", res.Selector)
		if f.JSON() {
			return f.Fail(ExitFailure, ErrCodeNoMatch, msg, res)
		}
		f.Warn("%s", msg)
		for _, s := range res.Suggestions {
			f.Dim("did you mean: %s", s)
		}
		return &ExitError{Code: ExitFailure, Message: msg, Reported: true}
	}

	if f.JSON() {
		return f.Success(res)
	}
	f.OK("%s matched %d element(s)", res.Selector, len(res.Matches))
	for _, c := range res.Matches {
		label := c.Label
		if label == "" {
			label = "(unlabeled)"
		}
		fmt.Fprintf(f.Writer, "  %s  %-8s %-20s at %s\n", c.ID, c.Type, label, c.Start)
	}
	return nil
}
