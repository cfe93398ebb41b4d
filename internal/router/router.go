// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/handler"
	"github.com/elegant-dining/reservation-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// and are not part of a resource surface. Currently just the health
// check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication surface. The open endpoints
// (register, login, logout, validate) live under /v1/auth behind the
// rate limiter; profile and the admin user listing sit behind the
// session middleware. Logout takes its token from the Authorization
// header but stays outside SessionAuth so revoking an already-dead
// token still returns 200.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessions *auth.Manager, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limit != nil {
		g.Use(limit)
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	// Validate reads the token from the request body, not the header;
	// the stored-token check existing clients perform on startup.
	g.POST("/validate", a.Validate)

	p := e.Group("/v1/auth", middleware.SessionAuth(sessions))
	p.GET("/profile", a.Profile)
	p.PUT("/profile", a.UpdateProfile)
	p.GET("/users", a.ListUsers, middleware.RequireAdmin())
}

// RegisterReservations wires both reservation surfaces. The legacy
// endpoints under /v1/reservations are unauthenticated for
// compatibility with the original client; the listing optionally sits
// behind the response cache. The protected surface under
// /v1/my/reservations applies session auth, with role and ownership
// checks inside the handlers.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, sessions *auth.Manager, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/reservations", r.ListPublic, cache)
	} else {
		e.GET("/v1/reservations", r.ListPublic)
	}
	e.POST("/v1/reservations", r.CreatePublic)
	e.PUT("/v1/reservations", r.UpdatePublic)
	e.DELETE("/v1/reservations", r.DeletePublic)

	p := e.Group("/v1/my/reservations", middleware.SessionAuth(sessions))
	p.GET("", r.ListMine)
	p.POST("", r.CreateMine)
	p.PUT("", r.UpdateMine)
	p.DELETE("", r.DeleteMine)
}

// RegisterUpload exposes the image upload endpoint. Unauthenticated,
// matching the original client which uploads before registering the
// reservation.
func RegisterUpload(e *echo.Echo, u *handler.UploadHandler) {
	e.POST("/v1/upload", u.Upload)
}
