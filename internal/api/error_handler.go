package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors and upstream API errors to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the failure envelope: {"success": false, "error": {"code", "message"}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		env := domain.Envelope[any]{Success: false, Error: &body}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, env)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, domain.ErrorBody) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, domain.ErrorBody{Code: codeForStatus(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	// Errors relayed from the REST API keep the server's status and code.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = codeForStatus(apiErr.Status)
		}
		return apiErr.Status, domain.ErrorBody{Code: code, Message: apiErr.Error()}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrorBody{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, domain.ErrorBody{Code: "UNAUTHORIZED", Message: "Authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrorBody{Code: "FORBIDDEN", Message: "Access forbidden"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrorBody{Code: "USER_NOT_FOUND", Message: "User not found"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, domain.ErrorBody{Code: "USER_EXISTS", Message: "User already exists"}
	case errors.Is(err, domain.ErrTransport):
		log.Warn().Err(err).Str("path", c.Path()).Msg("upstream api unreachable")
		return http.StatusBadGateway, domain.ErrorBody{Code: "UPSTREAM_UNAVAILABLE", Message: "API is unreachable"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, domain.ErrorBody{Code: "INTERNAL_ERROR", Message: "Internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}
