package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/access"
	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/metrics"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// Guard protects a view-server route with the access gate. The session is read
// once per request.
//
//   - Pending: 503 with Retry-After while the session boots
//   - RedirectLogin: 302 to /login?next=<original URI>
//   - RedirectUnauthorized: 302 to /unauthorized
func Guard(sessions ports.SessionReader, required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := access.Decide(required, sessions.Snapshot())
			metrics.GateDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case access.Allow:
				return next(c)
			case access.Pending:
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session is still loading")
			case access.RedirectLogin:
				target := LoginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				return c.Redirect(http.StatusFound, target)
			default:
				return c.Redirect(http.StatusFound, UnauthorizedPath)
			}
		}
	}
}
