package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/api/handler"
	"github.com/travelreviews/webclient/internal/api/middleware"
	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/validation"
)

// Deps are the collaborators of the local view server.
type Deps struct {
	Sessions ports.SessionService
	Reviews  ports.ReviewsAPI
	Admin    ports.AdminAPI
	// Checks back /health/ready, keyed by dependency name.
	Checks map[string]handler.Check
	Log    zerolog.Logger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds the view server: the session views plus the role-gated
// pages of the site.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(MetricsMiddleware("view", d.Registerer))

	// --- Health and metrics ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Session views ---
	sessions := handler.NewSessionHandler(d.Sessions)
	e.GET(middleware.LoginPath, sessions.LoginForm)
	e.POST(middleware.LoginPath, sessions.Login)
	e.POST("/logout", sessions.Logout)
	e.GET(middleware.UnauthorizedPath, sessions.Unauthorized)

	// --- Gated views ---
	content := handler.NewContentHandler(d.Reviews, d.Admin)
	me := e.Group("/me", middleware.Guard(d.Sessions, domain.RoleAnonymous))
	me.GET("", sessions.Me)
	me.PUT("", sessions.UpdateMe)

	e.GET("/moderation/reviews", content.ModerationReviews, middleware.Guard(d.Sessions, domain.RoleModerator))
	e.GET("/admin/stats", content.AdminStats, middleware.Guard(d.Sessions, domain.RoleAdmin))

	return e
}

// MetricsMiddleware records echo request metrics under travelreviews_<subsystem>.
func MetricsMiddleware(subsystem string, reg prometheus.Registerer) echo.MiddlewareFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "travelreviews",
		Subsystem:  subsystem,
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}
