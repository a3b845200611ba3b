package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/plan"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	ID       string `json:"id"`
	Version  int64  `json:"version"`
	Elements int    `json:"elements"`
	Digest   string `json:"digest"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <composition-file>",
		Short: "Store a composition document",
		Long: `Load a composition from a .json, .yaml or .cue file, validate it,
and store it under its id.

Examples:
  reel init demo.cue
  reel --db project.db init demo.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}
}

func runInit(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	comp, err := plan.LoadComposition(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidComposition, err.Error(), nil)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Create(context.Background(), comp); err != nil {
		return f.failWith(err, nil)
	}

	res := InitResult{
		ID:       comp.ID,
		Version:  comp.Version,
		Elements: len(ir.CollectIDs(comp.Elements)),
		Digest:   ir.MustDigest(comp),
	}
	if f.JSON() {
		return f.Success(res)
	}
	f.OK("Stored composition %s at version %d (%d elements)", res.ID, res.Version, res.Elements)
	f.Dim("digest %s", res.Digest)
	return nil
}
