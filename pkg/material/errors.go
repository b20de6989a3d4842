package material

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel every InvalidArgumentError matches.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError reports a local argument problem detected before any
// network call was made.
type InvalidArgumentError struct {
	Arg    string
	Value  any
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%v: %s", e.Arg, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidArgument.
func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

func invalidArg(arg string, value any, reason string) error {
	return &InvalidArgumentError{Arg: arg, Value: value, Reason: reason}
}
