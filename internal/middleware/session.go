// Package middleware provides shared request processing: bearer
// session authentication, role enforcement, auth rate limiting and
// response caching.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/model"
)

// userContextKey is where SessionAuth stores the validated user.
const userContextKey = "current_user"

// BearerToken extracts the token from an Authorization header of the
// form "Bearer <token>". Returns "" when the header is absent or
// malformed.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// SessionAuth returns middleware that authenticates requests with an
// opaque bearer token. A missing token yields 401 "Authentication
// required."; a token that fails validation yields the uniform 401
// regardless of whether it expired, was revoked or never existed. On
// success the full user is stored in the request context for
// handlers and downstream middleware.
func SessionAuth(sessions *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
			}
			u, err := sessions.Validate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired token."})
			}
			c.Set(userContextKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the user placed in the context by SessionAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userContextKey).(model.User)
	return u, ok
}
