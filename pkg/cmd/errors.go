package cmd

import (
	"errors"
	"fmt"
)

// ErrMissingPermissions is matched by every *MissingPermissionsError.
var ErrMissingPermissions = errors.New("missing permissions")

// ParsingError is returned by Process when the argument string does not fit
// the schema. Its text is the cause followed by the command's usage.
type ParsingError struct {
	Cause error
	Usage string
}

func (e *ParsingError) Error() string { return e.Cause.Error() + "\n\n" + e.Usage }
func (e *ParsingError) Unwrap() error { return e.Cause }

// MissingPermissionsError is returned by Process before any parsing when the
// actor lacks a permission the command requires.
type MissingPermissionsError struct {
	Permission Permission
}

func (e *MissingPermissionsError) Error() string {
	return fmt.Sprintf("You need the **%s** permission to use this command.", e.Permission.Title())
}

func (e *MissingPermissionsError) Unwrap() error { return ErrMissingPermissions }

// UserMessage returns the text to show the invoker for errors that are meant
// to be shown, and false for everything else.
func UserMessage(err error) (string, bool) {
	var pe *ParsingError
	if errors.As(err, &pe) {
		return pe.Error(), true
	}
	var mp *MissingPermissionsError
	if errors.As(err, &mp) {
		return mp.Error(), true
	}
	return "", false
}
