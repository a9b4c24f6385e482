package controllers

import (
	"net/http"

	"shay-b-io/api/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// statusForError maps the domain error taxonomy onto HTTP statuses:
// malformed input 400, unknown seller/account 404, provider rejection
// 402, state conflict 409, transient upstream failure 504.
func statusForError(err error) (int, string) {
	var ve validator.ValidationErrors
	switch {
	case models.IsValidationError(err), errors.As(err, &ve),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrUnsupportedPurpose),
		errors.Is(err, models.ErrDocumentTooLarge):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, models.ErrSellerNotFound), errors.Is(err, models.ErrAccountNotRegistered):
		return http.StatusNotFound, "not_found"
	case models.IsStateConflict(err):
		return http.StatusConflict, "state_conflict"
	case models.IsProviderError(err):
		return http.StatusPaymentRequired, "provider_error"
	case models.IsTransientError(err):
		return http.StatusGatewayTimeout, "transient_error"
	}

	return http.StatusInternalServerError, "internal_error"
}
