package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"medchain/internal/domain"
	"medchain/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Server-side failures are logged; their details are not sent to the client.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	status := http.StatusInternalServerError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode()
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrEncoding):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrDecryption):
		logger.Warn("decryption failed", "error", err)
		httputil.RespondError(w, http.StatusUnprocessableEntity, "record cannot be decrypted with the configured key")
	case errors.Is(err, domain.ErrLedgerWrite):
		logger.Error("private ledger write failed", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "private ledger write failed")
	case status >= 500:
		logger.Error("request failed", "error", err, "status", status)
		httputil.RespondError(w, status, http.StatusText(status))
	default:
		logger.Error("unexpected error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
