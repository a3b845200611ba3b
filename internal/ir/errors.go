package ir

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a document or edit was rejected.
type ErrorKind string

const (
	// KindMalformed: wrong shape, missing required field, unknown name.
	KindMalformed ErrorKind = "Malformed"

	// KindNotFound: a selector or id matched nothing.
	KindNotFound ErrorKind = "NotFound"

	// KindOutOfBounds: a numeric value lies outside its permitted range.
	KindOutOfBounds ErrorKind = "OutOfBounds"

	// KindInvalidRange: a timing span or id set is inconsistent.
	KindInvalidRange ErrorKind = "InvalidRange"
)

// FieldError is a single validation failure located by a field path such
// as "elements[2].properties.volume".
type FieldError struct {
	Path    string
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func fieldErr(path string, kind ErrorKind, format string, args ...any) *FieldError {
	return &FieldError{Path: path, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorKindOf returns the kind of the first FieldError in err's chain,
// or KindMalformed when err carries none.
func ErrorKindOf(err error) ErrorKind {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindMalformed
}

// joinPath appends a child segment to a field path.
func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child != "" && child[0] == '[' {
		return parent + child
	}
	return parent + "." + child
}
