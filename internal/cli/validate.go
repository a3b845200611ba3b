package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/roach88/reel/internal/compiler"
	"github.com/roach88/reel/internal/plan"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Plan bool // validate an edit plan instead of a composition
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Kind     string   `json:"kind"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a composition or edit plan without storing it",
		Long: `Validate a composition document (.json, .yaml, .cue) against the schema
and the structural rules, and report compile warnings. With --plan the file
is checked as an edit plan instead; plans are not resolved against any
composition.

Exit codes:
  0 - Valid
  1 - Invalid (every problem found is listed)
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Plan, "plan", false, "validate an edit plan")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}

	res := ValidationResult{Kind: "composition"}
	if opts.Plan {
		res.Kind = "plan"
		if _, err := plan.DecodeFile(path, data); err != nil {
			res.Errors = []string{err.Error()}
		}
	} else {
		comp, err := plan.ParseComposition(path, data)
		if err != nil {
			res.Errors = problems(err)
		} else if prog, err := compiler.Compile(comp, compiler.WithLogger(opts.logger(cmd))); err != nil {
			res.Errors = []string{err.Error()}
		} else {
			res.Warnings = prog.Warnings
		}
	}
	res.Valid = len(res.Errors) == 0

	if !res.Valid {
		code := ErrCodeInvalidComposition
		if opts.Plan {
			code = ErrCodeMalformed
		}
		if f.JSON() {
			return f.Fail(ExitFailure, code, "invalid "+res.Kind, res)
		}
		for _, e := range res.Errors {
			_ = f.Error(code, e, nil)
		}
		return &ExitError{Code: ExitFailure, Message: "invalid " + res.Kind, Reported: true}
	}

	if f.JSON() {
		return f.Success(res)
	}
	for _, w := range res.Warnings {
		f.Warn("%s", w)
	}
	f.OK("%s is a valid %s", path, res.Kind)
	return nil
}

// problems flattens an aggregated validation error into one message per
// problem.
func problems(err error) []string {
	var le *plan.LoadError
	if errors.As(err, &le) {
		err = le.Err
	}
	errs := multierr.Errors(err)
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
