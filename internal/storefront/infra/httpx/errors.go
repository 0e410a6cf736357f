package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict,
		apperr.KindItemUnavailable,
		apperr.KindInsufficientStock,
		apperr.KindUsageLimitReached,
		apperr.KindAlreadyUsedByCustomer,
		apperr.KindInvalidTransition:
		return http.StatusConflict
	case apperr.KindEmptyCart,
		apperr.KindInvalidAddress,
		apperr.KindInvalidCoupon,
		apperr.KindBelowMinimum:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeAppError maps err to a status and an ErrorResponse. Internal errors
// are logged here and reach the client only as "internal error".
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, string(kind), apperr.MessageOf(err))
}
