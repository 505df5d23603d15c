package service

import (
	"errors"
	"fmt"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrInvalidStatus      = errors.New("invalid status transition")
	ErrConsentRequired    = errors.New("consent is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError names the offending field. It matches ErrInvalidInput with
// errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
