package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
)

const accessDeniedMessage = "You don't have permission to access this page. Please contact an administrator if you believe this is an error."

// SessionHandler serves the login, logout, profile and access-denied views.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

type sessionView struct {
	State domain.SessionState `json:"state"`
	User  *domain.UserProfile `json:"user,omitempty"`
	Next  string              `json:"next,omitempty"`
}

func viewOf(s domain.Session) sessionView {
	return sessionView{State: s.State(), User: s.User}
}

// LoginForm describes the login view and the current session.
func (h *SessionHandler) LoginForm(c echo.Context) error {
	view := viewOf(h.sessions.Snapshot())
	view.Next = safeNext(c.QueryParam("next"))
	return ok(c, http.StatusOK, view, "")
}

// Login signs in with email or username and password. A safe next path
// redirects with 303 on success.
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	creds := domain.Credentials{
		Email:    strings.TrimSpace(req.Email),
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}
	if err := c.Validate(creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.sessions.Login(c.Request().Context(), creds)
	if !res.Success {
		return echo.NewHTTPError(http.StatusUnauthorized, res.Message)
	}
	if next := safeNext(req.Next); next != "" {
		return c.Redirect(http.StatusSeeOther, next)
	}
	return ok(c, http.StatusOK, viewOf(h.sessions.Snapshot()), "Login successful")
}

// Logout always succeeds.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	return ok(c, http.StatusOK, viewOf(h.sessions.Snapshot()), "Logged out")
}

func (h *SessionHandler) Unauthorized(c echo.Context) error {
	return fail(c, http.StatusForbidden, "ACCESS_DENIED", accessDeniedMessage)
}

// Me returns the signed-in user. The route is guarded.
func (h *SessionHandler) Me(c echo.Context) error {
	return ok(c, http.StatusOK, viewOf(h.sessions.Snapshot()), "")
}

// UpdateMe applies a partial profile edit.
func (h *SessionHandler) UpdateMe(c echo.Context) error {
	var update domain.ProfileUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := h.sessions.UpdateProfile(c.Request().Context(), update)
	if !res.Success {
		if res.Message == domain.ErrNotAuthenticated.Error() {
			return echo.NewHTTPError(http.StatusUnauthorized, res.Message)
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, res.Message)
	}
	return ok(c, http.StatusOK, viewOf(h.sessions.Snapshot()), "Profile updated")
}

// safeNext accepts only local absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}
