package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ",")
	corsHeaders = strings.Join([]string{echo.HeaderContentType, echo.HeaderAuthorization, "Content-Transfer-Encoding", echo.HeaderXRequestID}, ",")
)

// CORS sets permissive CORS headers on every response and answers preflight
// requests with 200 {"ok":true}. Register it with e.Pre so it also runs for
// unmatched routes and 405s.
func CORS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, corsMethods)
			h.Set(echo.HeaderAccessControlAllowHeaders, corsHeaders)

			if c.Request().Method == http.MethodOptions {
				return c.JSON(http.StatusOK, map[string]bool{"ok": true})
			}
			return next(c)
		}
	}
}
