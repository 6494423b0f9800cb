// Package devapi is a small development backend that speaks the same REST
// contract the client consumes: auth, profile, reviews and administration.
//
//	@title						Travel Reviews development API
//	@version					1.0
//	@description				Local stand-in for the travel reviews backend.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package devapi

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/travelreviews/webclient/internal/api"
	"github.com/travelreviews/webclient/internal/api/middleware"
	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/devapi/docs"
	"github.com/travelreviews/webclient/internal/pkg/validation"
)

type Config struct {
	// BasePath prefixes every API route, e.g. /api/v1.
	BasePath  string
	JWTSecret string
	Log       zerolog.Logger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

func NewRouter(cfg Config, accounts *AccountService, reviews *ReviewCatalog) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(cfg.Log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(cfg.Log))
	e.Use(api.MetricsMiddleware("devapi", cfg.Registerer))

	h := NewHandler(accounts, reviews)
	e.GET("/metrics", echoprometheus.NewHandler())

	docs.SwaggerInfo.BasePath = cfg.BasePath
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group(cfg.BasePath)
	v1.GET("/health", h.Health)

	// --- Public routes ---
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.GET("/reviews", h.ListReviews)

	// --- Authenticated routes ---
	authMiddleware := middleware.Auth(cfg.JWTSecret)
	v1.GET("/auth/me", h.Me, authMiddleware, h.loadAccount)
	v1.PUT("/auth/profile", h.UpdateProfile, authMiddleware, h.loadAccount)
	v1.GET("/users/profile", h.Me, authMiddleware, h.loadAccount)
	v1.PUT("/users/profile", h.UpdateProfile, authMiddleware, h.loadAccount)

	// --- Administration ---
	moderator := middleware.RBAC(domain.RoleModerator)
	admin := middleware.RBAC(domain.RoleAdmin)
	v1.GET("/admin/stats", h.Stats, authMiddleware, h.loadAccount, moderator)
	v1.GET("/admin/users", h.ListUsers, authMiddleware, h.loadAccount, admin)
	v1.PUT("/admin/users/:id/role", h.SetRole, authMiddleware, h.loadAccount, admin)
	v1.DELETE("/admin/users/:id", h.DeleteUser, authMiddleware, h.loadAccount, admin)

	return e
}
