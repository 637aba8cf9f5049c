package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrProviderUnavailable marks catalog/result provider failures. It also
	// matches ErrDependencyUnavailable.
	ErrProviderUnavailable = fmt.Errorf("provider unavailable: %w", ErrDependencyUnavailable)
)
