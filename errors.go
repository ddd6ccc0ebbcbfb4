package thunderdoc

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRows   = errors.New("rows per page must be positive")
	ErrNilStore      = errors.New("model requires a store")
	ErrEmptyName     = errors.New("model requires a name")
	ErrInvalidSort   = func(err error) error { return fmt.Errorf("invalid sort: %w", err) }
	ErrEnsureIndex   = func(fields []string, err error) error { return fmt.Errorf("ensure index on %v: %w", fields, err) }
	ErrUnknownProp   = func(prop string) error { return fmt.Errorf("full-text property %s is not declared", prop) }
	ErrNegativeCache = func(size int) error { return fmt.Errorf("index cache size must not be negative, got %d", size) }
)
