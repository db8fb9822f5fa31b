package qubo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is wrapped by every error caused by a malformed term.
	ErrInvalidKey = errors.New("invalid key")
	// ErrMissingVariable is returned when a solution does not assign a
	// value to a variable that is needed.
	ErrMissingVariable = errors.New("missing variable")
)

// KeyError reports a term rejected by a container's KeyPolicy.
type KeyError struct {
	Term   Term
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %s formatted incorrectly: %s", e.Term, e.Reason)
}

func (e *KeyError) Unwrap() error {
	return ErrInvalidKey
}

// MissingVariable names the index a solution failed to provide.
type MissingVariable int

func (e MissingVariable) Error() string {
	return fmt.Sprintf("no value for variable %d in solution", int(e))
}

func (e MissingVariable) Unwrap() error {
	return ErrMissingVariable
}
