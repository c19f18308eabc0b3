package service

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error a strategy returns matches exactly one of these
// with errors.Is; the HTTP layer maps kinds to status codes and never looks
// at the wrapped cause.
var (
	ErrValidation         = errors.New("validation_failed")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrEmailTaken         = errors.New("email_taken")
	ErrTokenInvalid       = errors.New("token_invalid")
	ErrSessionInvalid     = errors.New("session_invalid")
	ErrUnsupported        = errors.New("unsupported_operation")
	ErrConfiguration      = errors.New("configuration_error")
	ErrStore              = errors.New("store_error")
	ErrUserNotFound       = errors.New("user_not_found")
)

var kinds = []error{
	ErrValidation,
	ErrInvalidCredentials,
	ErrEmailTaken,
	ErrTokenInvalid,
	ErrSessionInvalid,
	ErrUnsupported,
	ErrConfiguration,
	ErrStore,
	ErrUserNotFound,
}

// Field names used in ValidationError, in reporting order.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldMode     = "mode"
)

var fieldOrder = []string{FieldEmail, FieldPassword, FieldMode}

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation_failed: " + e.Message()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message joins the field messages in a stable order.
func (e *ValidationError) Message() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range fieldOrder {
		if m, ok := e.Fields[f]; ok {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, ", ")
}

func invalidField(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// isKind reports whether err is already classified.
func isKind(err error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
