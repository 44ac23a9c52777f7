package repository

import "errors"

var (
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalid wraps validation failures of a record about to be written.
	ErrInvalid = errors.New("invalid record")
	// ErrNotFound is returned by writes whose target row does not exist.
	ErrNotFound = errors.New("not found")
)
