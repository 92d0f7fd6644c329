package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

// writeServiceError maps service error kinds to HTTP statuses. Internal causes
// are logged and never shown to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var svcErr *service.Error
	msg := ""
	if errors.As(err, &svcErr) {
		msg = svcErr.Message
	}
	switch service.KindOf(err) {
	case service.KindNotFound:
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", fallback(msg, "Not found"), nil)
	case service.KindBadRequest:
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", fallback(msg, "Bad request"), nil)
	case service.KindUnauthorized:
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", fallback(msg, "User unauthorized"), nil)
	case service.KindForbidden:
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", fallback(msg, "Forbidden"), nil)
	case service.KindConflict:
		response.Error(w, r, http.StatusConflict, "CONFLICT", fallback(msg, "Conflict"), nil)
	default:
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "Internal server error", nil)
	}
}

func fallback(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
