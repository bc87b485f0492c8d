package services

import "errors"

// Kind classifies a business-rule rejection. All kinds are terminal: they are
// surfaced to the caller as-is and never retried. Infrastructure failures
// (transaction aborts, connectivity) are returned as plain errors instead.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalidState
	KindInvalidInput
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func notFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func forbidden(msg string) error    { return &Error{Kind: KindForbidden, Message: msg} }
func invalidState(msg string) error { return &Error{Kind: KindInvalidState, Message: msg} }
func invalidInput(msg string) error { return &Error{Kind: KindInvalidInput, Message: msg} }
func conflict(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the rejection kind of err, or 0 if err is an infrastructure
// failure rather than a business-rule rejection.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
