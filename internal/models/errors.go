package models

import "errors"

// Error kinds returned by the repositories. Callers match them with errors.Is;
// the wrapped message carries the specifics.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrSelfReference    = errors.New("invalid self reference")
	ErrValidation       = errors.New("validation failed")
)
