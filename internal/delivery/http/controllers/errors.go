package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	h "clubevents/internal/delivery/http/helpers"
	"clubevents/internal/delivery/http/middleware"
	"clubevents/internal/domain"
)

// writeServiceError maps a service error onto the API error envelope. Unexpected
// errors are logged and answered without detail beyond the request ID.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, h.MsgLogInAgain)
	case errors.As(err, &verr):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(verr.Messages, "; "))
	case errors.Is(err, domain.ErrNoFields):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "no fields to update")
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
	default:
		requestID := middleware.RequestIDFromContext(r.Context())
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "request_id", requestID, "err", err)
		msg := h.MsgTryAgain
		if requestID != "" {
			msg = fmt.Sprintf("%s (request %s)", h.MsgTryAgain, requestID)
		}
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, msg)
	}
}
