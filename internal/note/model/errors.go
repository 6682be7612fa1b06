package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateContent is returned when a note with identical content already exists.
var ErrDuplicateContent = errors.New("note content already exists")

// ValidationError reports malformed client input: an undecodable body, a
// missing field or an id that is not an integer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps any engine-level failure with the store operation that hit it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
