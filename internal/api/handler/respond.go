package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// ok renders a successful envelope.
func ok(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, domain.Envelope[any]{Success: true, Data: data, Message: message})
}

// fail renders a failed envelope directly, for views whose failure is the content.
func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, domain.Envelope[any]{
		Success: false,
		Error:   &domain.ErrorBody{Code: code, Message: message},
	})
}
