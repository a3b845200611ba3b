package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/store"
)

// HistoryEntry is one patch as printed by the history command.
type HistoryEntry struct {
	Seq         int64     `json:"seq"`
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	TargetID    string    `json:"targetId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Operation string
	Target    string
	Since     int64
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <composition-id>",
		Short: "List the patch log of a stored composition",
		Long: `List the patch log of a stored composition, oldest first.

Examples:
  reel history demo
  reel history demo --op delete
  reel history demo --target v2 --since 4 --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Operation, "op", "", "only patches of this operation")
	cmd.Flags().StringVar(&opts.Target, "target", "", "only patches that touched this element id")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only patches with seq >= since")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many patches (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	query := store.PatchQuery{
		Operation: ir.Operation(opts.Operation),
		TargetID:  opts.Target,
		SinceSeq:  opts.Since,
		Limit:     opts.Limit,
	}
	if err := query.Validate(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
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
	patches, err := st.QueryPatches(ctx, id, query)
	if err != nil {
		return f.failWith(err, nil)
	}

	entries := make([]HistoryEntry, len(patches))
	for i, p := range patches {
		entries[i] = historyEntry(p, comp)
	}

	if f.JSON() {
		return f.Success(map[string]any{"id": id, "version": comp.Version, "patches": entries})
	}
	if len(entries) == 0 {
		f.Dim("%s has no patches (version %d)", id, comp.Version)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "%4d  %-8s %s\n", e.Seq, e.Operation, e.Description)
		if opts.Verbose {
			f.Dim("      %s %s", e.ID, e.Timestamp.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

// historyEntry describes p against the current document. Elements removed
// by later patches fall back to the patch's own recorded state.
func historyEntry(p ir.Patch, comp *ir.Composition) HistoryEntry {
	return HistoryEntry{
		Seq:         p.Seq,
		ID:          p.ID,
		Operation:   string(p.Operation),
		TargetID:    p.TargetID,
		Timestamp:   p.Timestamp,
		Description: engine.Describe(p, comp.Elements),
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored compositions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List(context.Background())
	if err != nil {
		return f.failWith(err, nil)
	}

	if f.JSON() {
		return f.Success(summaries)
	}
	if len(summaries) == 0 {
		f.Dim("no compositions in %s", opts.DB)
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(f.Writer, "%-24s v%-4d %3d patches  %s\n", s.ID, s.Version, s.Patches, s.Digest)
	}
	return nil
}
