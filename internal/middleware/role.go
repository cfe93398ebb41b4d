package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
)

// RequireAdmin returns middleware that rejects any request whose
// authenticated user does not hold the admin role. It assumes
// SessionAuth has already run; a missing context user is treated as
// unauthenticated rather than forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
			}
			if !auth.CanAdministrate(u) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Admin access required."})
			}
			return next(c)
		}
	}
}
