package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabauth/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeUnauthorized   = "UNAUTHORIZED"
	ErrorCodeForbidden      = "FORBIDDEN"
	ErrorCodeConflict       = "CONFLICT"
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeBadRequest     = "BAD_REQUEST"
	ErrorCodeBotCheckFailed = "BOT_CHECK_FAILED"
	ErrorCodeInternal       = "INTERNAL_ERROR"
	ErrorCodeNotFound       = "NOT_FOUND"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is a failed API call. The server writes it with WriteError and the
// SDK returns it from every call that receives a non-2xx envelope.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int

	// Code is one of the ErrorCode* constants.
	Code string

	// Message is a human-readable description of the error
	Message string

	// Details is internal error text, only sent in development mode.
	Details string

	ValidationErrors []FieldError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *APIError by Code, so errors.Is(err, ErrUnauthorized)
// works on errors decoded by the SDK.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *APIError) WithDetails(details string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithValidationErrors returns a copy of e carrying per-field failures.
func (e *APIError) WithValidationErrors(fields []FieldError) *APIError {
	cp := *e
	cp.ValidationErrors = fields
	return &cp
}

// WriteError writes e as an error envelope for r.
func (e *APIError) WriteError(w http.ResponseWriter, r *http.Request) {
	body := &ErrorBody{
		Code:             e.Code,
		Details:          e.Details,
		ValidationErrors: e.ValidationErrors,
	}
	httpx.WriteJSON(w, e.StatusCode, Envelope[any]{
		Success:   false,
		Code:      e.StatusCode,
		Message:   e.Message,
		Error:     body,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

// WriteData writes a success envelope carrying data.
func WriteData(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	httpx.WriteJSON(w, status, Envelope[any]{
		Success:   true,
		Code:      status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrUnauthorized covers bad credentials and bad, expired or reused tokens.
	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeUnauthorized,
		Message:    "authentication required",
	}

	// ErrForbidden is returned for suspended and inactive accounts and for
	// missing roles.
	ErrForbidden = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       ErrorCodeForbidden,
		Message:    "access denied",
	}

	ErrConflict = &APIError{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeConflict,
		Message:    "registration could not be completed",
	}

	ErrValidation = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "validation failed",
	}

	// ErrBadRequest is returned when the body cannot be decoded.
	ErrBadRequest = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeBadRequest,
		Message:    "malformed request body",
	}

	ErrBotCheckFailed = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeBotCheckFailed,
		Message:    "bot verification failed",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInternal,
		Message:    "internal server error",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeNotFound,
		Message:    "not found",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError, falling
// back to the status line when the body is not an envelope.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && env.Error.Code != "" {
		return &APIError{
			StatusCode:       resp.StatusCode,
			Code:             env.Error.Code,
			Message:          env.Message,
			Details:          env.Error.Details,
			ValidationErrors: env.Error.ValidationErrors,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
