package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/roach88/reel/internal/compiler"
	"github.com/roach88/reel/internal/engine"
	"github.com/roach88/reel/internal/history"
	"github.com/roach88/reel/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Edit rejected or ambiguous, scenarios failed
	ExitCommandError = 2 // Command error (invalid paths, database errors, etc.)
)

// Error codes reported in JSON responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeMalformed    = "E201" // Plan rejected: Malformed
	ErrCodeNoMatch      = "E202" // Plan rejected: NotFound
	ErrCodeOutOfBounds  = "E203" // Plan rejected: OutOfBounds
	ErrCodeInvalidRange = "E204" // Plan rejected: InvalidRange
	ErrCodeAmbiguous    = "E205" // Selector matched several elements

	ErrCodeVersionConflict = "E210" // Stored version moved on
	ErrCodeNoComposition   = "E211" // Composition id not in the store
	ErrCodeExists          = "E212" // Composition id already stored
	ErrCodeCorrupt         = "E213" // Stored digest mismatch
	ErrCodeNothingToUndo   = "E220" // Empty patch log

	ErrCodeCompileFailed      = "E230" // Fatal compile error
	ErrCodeInvalidComposition = "E240" // Composition document failed validation
	ErrCodeScenariosFailed    = "E250" // One or more scenarios failed
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error was already written by the formatter.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E201", "E210", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON reports whether output is machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format. In text
// mode data is printed as is.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	_, _ = errorColor.Fprintf(f.Writer, "\u2717 Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports an error and returns the matching ExitError.
func (f *OutputFormatter) Fail(exit int, code, message string, details any) error {
	_ = f.Error(code, message, details)
	return &ExitError{Code: exit, Message: fmt.Sprintf("%s: %s", code, message), Reported: true}
}

// OK prints a green check line in text mode.
func (f *OutputFormatter) OK(format string, args ...any) {
	_, _ = successColor.Fprintf(f.Writer, "\u2713 "+format+"\n", args...)
}

// Warn prints a yellow warning line in text mode.
func (f *OutputFormatter) Warn(format string, args ...any) {
	_, _ = warningColor.Fprintf(f.Writer, "\u26a0 "+format+"\n", args...)
}

// Dim prints a de-emphasized line in text mode.
func (f *OutputFormatter) Dim(format string, args ...any) {
	_, _ = dimColor.Fprintf(f.Writer, format+"\n", args...)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps a domain error to its response code and exit code.
func classify(err error) (code string, exit int) {
	if kind, ok := engine.KindOf(err); ok {
		switch kind {
		case engine.ErrMalformed:
			return ErrCodeMalformed, ExitFailure
		case engine.ErrNotFound:
			return ErrCodeNoMatch, ExitFailure
		case engine.ErrOutOfBounds:
			return ErrCodeOutOfBounds, ExitFailure
		case engine.ErrInvalidRange:
			return ErrCodeInvalidRange, ExitFailure
		}
	}

	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return ErrCodeVersionConflict, ExitFailure
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNoComposition, ExitCommandError
	case errors.Is(err, store.ErrExists):
		return ErrCodeExists, ExitCommandError
	case errors.Is(err, store.ErrCorrupt):
		return ErrCodeCorrupt, ExitCommandError
	case errors.Is(err, history.ErrNothingToUndo):
		return ErrCodeNothingToUndo, ExitFailure
	case errors.As(err, &compileErr):
		return ErrCodeCompileFailed, ExitFailure
	}
	return ErrCodeGeneric, ExitCommandError
}

// failWith reports err with the code and exit status classify assigns.
func (f *OutputFormatter) failWith(err error, details any) error {
	code, exit := classify(err)
	return f.Fail(exit, code, err.Error(), details)
}
