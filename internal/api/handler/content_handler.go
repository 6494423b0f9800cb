package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
)

// ContentHandler relays the moderation and admin views from the REST API.
type ContentHandler struct {
	reviews ports.ReviewsAPI
	admin   ports.AdminAPI
}

func NewContentHandler(reviews ports.ReviewsAPI, admin ports.AdminAPI) *ContentHandler {
	return &ContentHandler{reviews: reviews, admin: admin}
}

// ModerationReviews lists reviews for moderators.
func (h *ContentHandler) ModerationReviews(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}
	env, err := h.reviews.List(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, env)
}

// AdminStats returns the dashboard counters.
func (h *ContentHandler) AdminStats(c echo.Context) error {
	env, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, env)
}

func listParams(c echo.Context) (domain.ListParams, error) {
	p := domain.ListParams{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	for name, dst := range map[string]*int{"page": &p.Page, "limit": &p.Limit} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
		}
		*dst = n
	}
	return p, nil
}
