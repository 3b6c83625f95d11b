package httpx

import (
	"errors"
	"net/http"

	"github.com/tienda-pos/tienda/internal/shared"
)

// RespondError maps domain errors to HTTP problem responses.
func RespondError(w http.ResponseWriter, err error) {
	var stockErr *shared.InsufficientStockError
	var fieldErrs shared.FieldErrors

	switch {
	case errors.As(err, &stockErr):
		JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
			Title:  "Insufficient Stock",
			Status: http.StatusUnprocessableEntity,
			Detail: stockErr.Error(),
			Fields: map[string]string{"product_id": stockErr.ProductName},
		})
	case errors.As(err, &fieldErrs):
		ProblemFields(w, http.StatusBadRequest, "Validation Failed", fieldErrs)
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
