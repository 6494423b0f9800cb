package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// RBAC admits requests whose token role ranks at least minRole. Unknown
// roles rank as user. It must run after Auth.
func RBAC(minRole domain.Role) echo.MiddlewareFunc {
	denied := &domain.APIError{
		Status:  http.StatusForbidden,
		Code:    "INSUFFICIENT_PERMISSIONS",
		Message: "insufficient permissions",
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role == "" || !domain.Role(role).AtLeast(minRole) {
				return denied
			}
			return next(c)
		}
	}
}
