package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reel/internal/compiler"
	"github.com/roach88/reel/internal/ir"
	"github.com/roach88/reel/internal/plan"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output       string // output file path
	StrictEasing bool
}

// CompileResult is the JSON payload of the compile command. Source is
// omitted when it was written to a file.
type CompileResult struct {
	ID       string           `json:"id"`
	Version  int64            `json:"version"`
	Digest   string           `json:"digest"`
	Output   string           `json:"output,omitempty"`
	Source   string           `json:"source,omitempty"`
	Blocks   []compiler.Block `json:"blocks"`
	Warnings []string         `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <composition-id|file>",
		Short: "Compile a composition to a Remotion TSX module",
		Long: `Compile a composition to a TSX module. The argument is a composition
file (.json, .yaml, .cue) when such a file exists, otherwise a composition
id in the store.

Output is deterministic: the same composition always compiles to the same
bytes and digest.

Exit codes:
  0 - Compiled (warnings may have been printed)
  1 - Fatal compile error
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.StrictEasing, "strict-easing", false, "fail on unknown easing names")

	return cmd
}

func runCompile(opts *CompileOptions, target string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	comp, err := loadTarget(opts.RootOptions, f, target)
	if err != nil {
		return err
	}

	copts := []compiler.Option{compiler.WithLogger(opts.logger(cmd))}
	if opts.StrictEasing {
		copts = append(copts, compiler.WithStrictEasing())
	}
	prog, err := compiler.Compile(comp, copts...)
	if err != nil {
		return f.failWith(err, nil)
	}
	f.VerboseLog("Compiled %d element(s) from %s", len(prog.Blocks), comp.ID)

	res := CompileResult{
		ID:       comp.ID,
		Version:  comp.Version,
		Digest:   prog.Digest,
		Blocks:   prog.Blocks,
		Warnings: prog.Warnings,
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(prog.Source), 0o644); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, "write output: "+err.Error(), nil)
		}
		res.Output = opts.Output
	} else {
		res.Source = prog.Source
	}

	if f.JSON() {
		return f.Success(res)
	}
	for _, w := range prog.Warnings {
		f.Warn("%s", w)
	}
	if opts.Output == "" {
		_, err := f.Writer.Write([]byte(prog.Source))
		return err
	}
	f.OK("Wrote %s (%d elements)", opts.Output, len(prog.Blocks))
	f.Dim("digest %s", prog.Digest)
	return nil
}

// loadTarget reads a composition from a file when target names one, and
// from the store otherwise.
func loadTarget(opts *RootOptions, f *OutputFormatter, target string) (*ir.Composition, error) {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		comp, err := plan.LoadComposition(target)
		if err != nil {
			return nil, f.Fail(ExitCommandError, ErrCodeInvalidComposition, err.Error(), nil)
		}
		return comp, nil
	}

	st, err := opts.openStore(f)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	comp, err := st.Load(context.Background(), target)
	if err != nil {
		return nil, f.failWith(err, nil)
	}
	return comp, nil
}
