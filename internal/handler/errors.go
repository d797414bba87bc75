package handler

import (
	"errors"
	"net/http"
	"storefront/internal/service"

	"github.com/labstack/echo/v4"
)

// httpError maps a storefront failure onto an HTTP status carrying the buyer-facing message.
func httpError(err error) error {
	return echo.NewHTTPError(statusOf(err), service.UserMessage(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrEmailRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, service.ErrLoginRequired),
		errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotPurchased),
		errors.Is(err, service.ErrVerificationFailed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}
