package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/p2p_ledger/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var pe *apperrors.ParticipantError
	switch {
	case errors.As(err, &pe):
		if pe.Reason == apperrors.ParticipantNotFound || pe.Reason == apperrors.ParticipantDeleted {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrConversion):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperrors.ErrPersistenceConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Server-side failures are logged at
// error level with their cause; client errors only at warn.
func respondError(c *gin.Context, err error, msg string) {
	logger := loggerFor(c)
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(msg, slog.String("error", err.Error()))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.Int("status", status))
	}

	body := gin.H{"error": apperrors.UserMessage(err)}
	var ie *apperrors.InsufficientFundsError
	if errors.As(err, &ie) {
		body["shortfall"] = ie.Shortfall()
		body["unit"] = ie.Unit
	}
	c.JSON(status, body)
}
