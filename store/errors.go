package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrConflict      = errors.New("document update conflict")
	ErrMissingID     = errors.New("document is missing _id")
	ErrEmptyIndex    = errors.New("index must reference at least one field")
	ErrClosed        = errors.New("store is closed")
	ErrIndexNotFound = func(name string) error { return fmt.Errorf("index %s not found", name) }
	ErrCannotEncode  = func(v any) error { return fmt.Errorf("cannot encode index value '%v' of type %T", v, v) }
	ErrInvalidID     = func(v any) error { return fmt.Errorf("document _id must be a string, got %T", v) }
	ErrRevMismatch   = func(id, want, got string) error {
		return fmt.Errorf("%w: %s has revision %q, got %q", ErrConflict, id, want, got)
	}
)
