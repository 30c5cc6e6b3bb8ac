package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrForbidden           = errors.New("access forbidden")
	ErrRecordNotFound      = errors.New("record not found")
	ErrDuplicateNationalID = errors.New("national id already registered")
	ErrInvalidOTPCode      = errors.New("invalid recovery code")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	ErrMailDeliveryFailed  = errors.New("mail delivery failed")
)

// ValidationError reports the first field that failed record validation.
type ValidationError struct {
	Field  string // machine name, e.g. "hours_count"
	Label  string // human-readable name used in the message
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Label, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, label, reason string) *ValidationError {
	return &ValidationError{Field: field, Label: label, Reason: reason}
}
