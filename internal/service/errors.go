package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Albion-ops/bytewave-hub/internal/validation"
)

// Failure classes surfaced to callers. Handlers map them onto HTTP status
// codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAuthRequired = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrLoadFailed   = errors.New("load failed")
)

// FieldErrors is a validation failure carrying per-field details.
type FieldErrors struct {
	Errors []validation.ValidationError
}

func (e *FieldErrors) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Unwrap makes FieldErrors match ErrValidation.
func (e *FieldErrors) Unwrap() error {
	return ErrValidation
}

func invalid(errs []validation.ValidationError) error {
	return &FieldErrors{Errors: errs}
}

func invalidField(field, message string, value interface{}) error {
	return invalid([]validation.ValidationError{{Field: field, Message: message, Value: value}})
}

func loadFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, op, err)
}
