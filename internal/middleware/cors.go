package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{echo.HeaderContentType, echo.HeaderAuthorization}, ", ")
)

// CORS opens the API to every origin. It must be registered with e.Pre so
// that OPTIONS on any path, routed or not, answers 200 with an empty body.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, corsMethods)
			h.Set(echo.HeaderAccessControlAllowHeaders, corsHeaders)

			if c.Request().Method == http.MethodOptions {
				h.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
				return c.NoContent(http.StatusOK)
			}
			return next(c)
		}
	}
}
