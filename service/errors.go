package service

import "errors"

var (
	// ErrValidation marks disallowed or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks an insert that would duplicate a unique key.
	ErrConflict = errors.New("conflict")
)
