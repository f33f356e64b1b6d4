package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by services and delivery.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateSlug      = errors.New("slug already in use")
	ErrNoFields           = errors.New("no fields provided")
	ErrUpstream           = errors.New("upstream failure")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError carries field-specific messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
