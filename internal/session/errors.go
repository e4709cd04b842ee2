package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the
	// current phase, e.g. submitting twice or advancing before answering.
	// Callers that gate input on Phase() never see it.
	ErrInvalidState = errors.New("invalid session state")

	// ErrInvalidFilter is returned for an unknown mode or category.
	ErrInvalidFilter = errors.New("invalid filter")
)

// PersistError reports that progress could not be saved. The in-memory
// state has already been updated and stays authoritative; only durability
// was lost.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save progress after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
