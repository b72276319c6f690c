package cli

import (
	"errors"

	"github.com/jakoblorz/create-stack/internal/validate"
)

// Exit codes
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
)

// ExitError carries the process exit code of a failed run. The reason has
// already been printed when it is returned from a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps err to an exit code: validation failures exit with 2,
// everything else with 1.
func exitCode(err error) int {
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	if errors.Is(err, validate.ErrValidation) {
		return ExitValidation
	}
	return ExitFailure
}

// hintOf returns the hint of the first validation error in err's chain.
func hintOf(err error) string {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return verr.Hint
	}
	return ""
}
