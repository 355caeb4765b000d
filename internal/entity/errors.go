package entity

import (
	"errors"
	"fmt"
)

// Storage and cache level errors. Adapters wrap these with their op prefix.
var (
	// ErrCodeExists is returned when a link with the same code is already stored.
	ErrCodeExists = errors.New("code exists")
	// ErrLinkNotFound is returned when no link has the requested code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrCacheMiss is returned by caches when the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")
)

// Error kinds carried by ServiceError. ErrLinkNotFound doubles as the not-found kind.
var (
	ErrValidation              = errors.New("validation error")
	ErrCodeGenerationExhausted = errors.New("code generation exhausted")
	ErrBackend                 = errors.New("backend error")
)

// ServiceError is the only error shape that leaves the link service.
// The backend cause is logged where the error is built and is not reachable
// through Unwrap, so callers can branch on Kind only.
type ServiceError struct {
	Op      string
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}
