package service

import (
	"errors"
	"strings"
)

// Errors returned by AuthService. Token and store failures are folded into
// ErrUnauthorized before they leave the service; wrapped detail is for logs
// and development diagnostics only.
var (
	// ErrUnauthorized covers unknown accounts, wrong passwords, deleted
	// accounts and bad, expired, forged or already used rotation tokens.
	// Callers cannot tell these apart.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned for suspended and inactive accounts.
	ErrForbidden = errors.New("forbidden")

	ErrConflict       = errors.New("conflict")
	ErrBotCheckFailed = errors.New("bot check failed")
)

// FieldError is a validation failure for one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
