package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrSourceMissing and ErrSourceEmpty classify bulk input files.
	ErrSourceMissing = errors.New("bulk source missing")
	ErrSourceEmpty   = errors.New("bulk source empty")
)
