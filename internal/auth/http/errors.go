package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/slogx"
)

// writeServiceError maps a service error onto the API envelope. Internal
// error text only reaches the client when dev is set.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	var apiErr *authsdk.APIError

	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := make([]authsdk.FieldError, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = authsdk.FieldError{Field: f.Field, Message: f.Message}
		}
		apiErr = authsdk.ErrValidation.WithValidationErrors(fields)
	case errors.Is(err, service.ErrUnauthorized):
		apiErr = authsdk.ErrUnauthorized
	case errors.Is(err, service.ErrForbidden):
		apiErr = authsdk.ErrForbidden
	case errors.Is(err, service.ErrConflict):
		apiErr = authsdk.ErrConflict
	case errors.Is(err, service.ErrBotCheckFailed):
		apiErr = authsdk.ErrBotCheckFailed
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		apiErr = authsdk.ErrInternal
	}

	if dev && apiErr.Code != authsdk.ErrorCodeValidation {
		apiErr = apiErr.WithDetails(err.Error())
	}
	apiErr.WriteError(w, r)
}
