package devapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/api/middleware"
	"github.com/travelreviews/webclient/internal/core/domain"
)

const contextAccount = "account"

// Handler serves the dev API endpoints.
type Handler struct {
	accounts *AccountService
	reviews  *ReviewCatalog
}

func NewHandler(accounts *AccountService, reviews *ReviewCatalog) *Handler {
	return &Handler{accounts: accounts, reviews: reviews}
}

type authData struct {
	User        *domain.UserProfile `json:"user"`
	AccessToken string              `json:"accessToken"`
}

type userData struct {
	User *domain.UserProfile `json:"user"`
}

// userView is the flat user document of the admin listing.
type userView struct {
	domain.UserProfile
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=user moderator admin"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, domain.Envelope[any]{Success: true, Data: data, Message: message})
}

func badRequest(err error) error {
	return &domain.APIError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: err.Error()}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "message": "API is running"})
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Registration  true  "User registration details"
// @Success      201   {object}  authData
// @Failure      400   {object}  domain.ErrorBody
// @Failure      409   {object}  domain.ErrorBody
// @Router       /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req domain.Registration
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}

	token, account, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return apiError(err)
	}
	return respond(c, http.StatusCreated, authData{User: account.Profile(), AccessToken: token}, "User registered successfully")
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  authData
// @Failure      400   {object}  domain.ErrorBody
// @Failure      401   {object}  domain.ErrorBody
// @Router       /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return &domain.APIError{Status: http.StatusBadRequest, Code: "MISSING_CREDENTIALS", Message: err.Error()}
	}

	token, account, err := h.accounts.Login(c.Request().Context(), req)
	if err != nil {
		return apiError(err)
	}
	return respond(c, http.StatusOK, authData{User: account.Profile(), AccessToken: token}, "Login successful")
}

// Me returns the caller's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userData
// @Failure      401  {object}  domain.ErrorBody
// @Router       /auth/me [get]
func (h *Handler) Me(c echo.Context) error {
	account := c.Get(contextAccount).(*domain.Account)
	return respond(c, http.StatusOK, userData{User: account.Profile()}, "")
}

// UpdateProfile applies a partial profile edit.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.ProfileUpdate  true  "Fields to change"
// @Success      200   {object}  userData
// @Router       /auth/profile [put]
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req domain.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}

	account := c.Get(contextAccount).(*domain.Account)
	updated, err := h.accounts.UpdateProfile(c.Request().Context(), account.ID, req)
	if err != nil {
		return apiError(err)
	}
	return respond(c, http.StatusOK, userData{User: updated.Profile()}, "Profile updated successfully")
}

// ListReviews returns a page of reviews.
//
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Param        page      query  int     false  "Page number"
// @Param        limit     query  int     false  "Page size"
// @Param        category  query  string  false  "Category filter"
// @Param        search    query  string  false  "Text search"
// @Router       /reviews [get]
func (h *Handler) ListReviews(c echo.Context) error {
	params := domain.ListParams{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	reviews, page := h.reviews.List(params)
	return c.JSON(http.StatusOK, domain.Envelope[[]domain.Review]{
		Success:    true,
		Data:       reviews,
		Message:    "Reviews retrieved successfully",
		Pagination: &page,
	})
}

// Stats returns dashboard counters.
//
// @Summary      Admin statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AdminStats
// @Router       /admin/stats [get]
func (h *Handler) Stats(c echo.Context) error {
	users, err := h.accounts.CountUsers(c.Request().Context())
	if err != nil {
		return err
	}
	total, pending := h.reviews.Counts()
	return respond(c, http.StatusOK, domain.AdminStats{
		TotalUsers:     users,
		TotalReviews:   total,
		PendingReviews: pending,
	}, "")
}

// ListUsers returns a page of accounts.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	page, limit := normalizePage(queryInt(c, "page"), queryInt(c, "limit"))
	accounts, total, err := h.accounts.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, userView{
			UserProfile: *a.Profile(),
			IsActive:    a.IsActive,
			CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	pages := (total + limit - 1) / limit
	return c.JSON(http.StatusOK, domain.Envelope[[]userView]{
		Success:    true,
		Data:       views,
		Pagination: &domain.Pagination{Page: page, Limit: limit, Total: total, Pages: pages, HasNext: page < pages},
	})
}

// SetRole changes a user's role.
//
// @Summary      Update user role
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string       true  "User ID"
// @Param        body  body  roleRequest  true  "New role"
// @Router       /admin/users/{id}/role [put]
func (h *Handler) SetRole(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err)
	}

	updated, err := h.accounts.SetRole(c.Request().Context(), c.Param("id"), domain.Role(req.Role))
	if err != nil {
		return apiError(err)
	}
	return respond(c, http.StatusOK, userData{User: updated.Profile()}, "User role updated successfully")
}

// DeleteUser removes an account.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Router       /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c echo.Context) error {
	if err := h.accounts.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return apiError(err)
	}
	return respond(c, http.StatusOK, nil, "User deleted successfully")
}

// loadAccount resolves the token subject to an active account whose role
// still matches the token. It must run after middleware.Auth.
func (h *Handler) loadAccount(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, _ := c.Get(middleware.ContextUserID).(string)
		role, _ := c.Get(middleware.ContextRole).(string)
		account, err := h.accounts.Authorize(c.Request().Context(), id, domain.Role(role))
		if err != nil {
			return apiError(err)
		}
		c.Set(contextAccount, account)
		return next(c)
	}
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}
