package args

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArgument is the kind of a required argument that was absent.
	ErrMissingArgument = errors.New("missing argument")
	// ErrWrongType is the kind of a token that matched but could not be converted.
	ErrWrongType = errors.New("wrong type")
	// ErrResolutionFailed is the kind of an entity reference that is not in scope.
	ErrResolutionFailed = errors.New("resolution failed")
)

// Error is a user-facing argument error. Message is shown to the invoker as
// is, Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, a ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}
