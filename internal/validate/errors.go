package validate

import "errors"

// ErrValidation is matched by every prerequisite failure.
var ErrValidation = errors.New("validation failed")

// Error is a failed prerequisite with a hint on how to fix it.
type Error struct {
	// Check names the failed prerequisite: "name", "destination" or a tool.
	Check   string
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

func newError(check, hint, message string) *Error {
	return &Error{Check: check, Message: message, Hint: hint}
}
