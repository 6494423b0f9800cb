package devapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/travelreviews/webclient/internal/core/domain"
)

var (
	ErrWeakPassword    = errors.New("weak password")
	ErrAccountDisabled = errors.New("account is disabled")
	ErrInvalidRole     = errors.New("invalid role")
	ErrRoleChanged     = errors.New("user role has changed")
)

// apiError converts a service error into the coded error the envelope carries.
// Unknown errors are returned unchanged for the central handler to log.
func apiError(err error) error {
	var apiErr *domain.APIError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &apiErr):
		return err
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &domain.APIError{Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	case errors.Is(err, ErrAccountDisabled):
		return &domain.APIError{Status: http.StatusForbidden, Code: "ACCOUNT_DISABLED", Message: "Account is disabled"}
	case errors.Is(err, domain.ErrUserExists):
		return &domain.APIError{Status: http.StatusConflict, Code: "USER_EXISTS", Message: detail(err, domain.ErrUserExists, "User already exists")}
	case errors.Is(err, domain.ErrUserNotFound):
		return &domain.APIError{Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "User not found or inactive"}
	case errors.Is(err, ErrWeakPassword):
		return &domain.APIError{Status: http.StatusBadRequest, Code: "WEAK_PASSWORD", Message: detail(err, ErrWeakPassword, "Password is too weak")}
	case errors.Is(err, ErrInvalidRole):
		return &domain.APIError{Status: http.StatusBadRequest, Code: "INVALID_ROLE", Message: "Role must be one of: user, moderator, admin"}
	case errors.Is(err, ErrRoleChanged):
		return &domain.APIError{Status: http.StatusUnauthorized, Code: "ROLE_CHANGED", Message: "User role has changed. Please login again"}
	default:
		return err
	}
}

// detail returns the text a "%w: detail" wrap added to sentinel.
func detail(err, sentinel error, fallback string) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == err.Error() {
		return fallback
	}
	return msg
}
