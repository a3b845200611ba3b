package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/history"
)

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <composition-id>",
		Short: "Revert the most recent edit of a stored composition",
		Long: `Revert the most recent patch of a stored composition and save the result
as a new version. The patch is removed from the log.

Redo is only available inside a session (see "reel test"); once a patch has
been undone here it can be re-applied with "reel apply".

Exit codes:
  0 - Patch reverted
  1 - Nothing to undo, or the composition changed concurrently
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(rootOpts, args[0], cmd)
		},
	}
}

func runUndo(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

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

	logger := opts.logger(cmd)
	session := history.NewSession(engine.New(engine.WithLogger(logger)), comp, history.WithLogger(logger))
	out, err := session.Undo()
	if err != nil {
		return f.failWith(err, nil)
	}

	if err := st.Save(ctx, out.Composition, comp.Version); err != nil {
		return f.failWith(err, nil)
	}

	if f.JSON() {
		return f.Success(ApplyResult{Receipt: out.Receipt, Version: out.Composition.Version, Patch: out.Patch})
	}
	f.OK("%s", out.Receipt)
	f.Dim("%s is now at version %d", id, out.Composition.Version)
	return nil
}
