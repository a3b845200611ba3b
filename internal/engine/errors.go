package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/reel/internal/ir"
)

// ErrorKind categorizes why an edit was rejected.
type ErrorKind = ir.ErrorKind

const (
	// ErrMalformed indicates a structurally invalid plan or changes object.
	ErrMalformed = ir.KindMalformed

	// ErrNotFound indicates a selector or resolved id matched nothing.
	ErrNotFound = ir.KindNotFound

	// ErrOutOfBounds indicates a numeric value outside its permitted range.
	ErrOutOfBounds = ir.KindOutOfBounds

	// ErrInvalidRange indicates an inconsistent timing span or id set.
	ErrInvalidRange = ir.KindInvalidRange
)

// EditError is returned when an edit plan is rejected.
//
// A rejected edit never changes the composition. EditError carries enough
// structure for a caller to tell a bad plan (Malformed) from a stale
// reference (NotFound) without parsing the message.
type EditError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Operation is the operation that was rejected, if known.
	Operation ir.Operation

	// Suggestions lists close matches for NotFound selector errors.
	Suggestions []string

	// Err is the underlying validation error, if any.
	Err error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	if e.Operation != "" {
		fmt.Fprintf(&b, "%s: ", e.Operation)
	}
	b.WriteString(e.Message)
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean: %s)", strings.Join(e.Suggestions, ", "))
	}
	return b.String()
}

// Unwrap returns the underlying validation error.
func (e *EditError) Unwrap() error {
	return e.Err
}

// newEditError builds an EditError with a formatted message.
func newEditError(kind ErrorKind, op ir.Operation, format string, args ...any) *EditError {
	return &EditError{Kind: kind, Operation: op, Message: fmt.Sprintf(format, args...)}
}

// ErrIDsExhausted is returned by Apply when the id generator keeps
// producing ids that are already in use. It is not an EditError: the plan
// is fine, the generator is not.
var ErrIDsExhausted = errors.New("id generator produced no unused id")

// fromValidation converts an aggregated validation error into an EditError.
// The kind is taken from the first field error; the message lists all of
// them.
func fromValidation(op ir.Operation, err error) *EditError {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee
	}
	return &EditError{
		Kind:      ir.ErrorKindOf(err),
		Operation: op,
		Message:   err.Error(),
		Err:       err,
	}
}

// KindOf returns the kind of an EditError in err's chain, and false when err
// is not an edit rejection.
func KindOf(err error) (ErrorKind, bool) {
	var ee *EditError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return "", false
}

// IsMalformed returns true if err rejects a structurally invalid plan.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ErrMalformed
}

// IsNotFound returns true if err reports a selector that matched nothing.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ErrNotFound
}

// IsOutOfBounds returns true if err reports a value outside its range.
func IsOutOfBounds(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ErrOutOfBounds
}

// IsInvalidRange returns true if err reports an inconsistent span or id set.
func IsInvalidRange(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ErrInvalidRange
}
