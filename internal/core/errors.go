package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an update or lookup targets an absent id.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps a failure of the underlying store. The store state
// is left as it was before the failing call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError unless it is nil or already
// carries ErrNotFound.
func Persistence(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ValidationError describes invalid user input caught before any store call.
// Positions index the offending fields of the originating form.
type ValidationError struct {
	Messages  []string
	Positions []int
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Add records one problem.
func (e *ValidationError) Add(position int, msg string) {
	e.Messages = append(e.Messages, msg)
	e.Positions = append(e.Positions, position)
}

// OrNil returns nil when no problem was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Messages) == 0 {
		return nil
	}
	return e
}
