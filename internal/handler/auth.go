package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elegant-dining/reservation-api/internal/auth"
	"github.com/elegant-dining/reservation-api/internal/config"
	"github.com/elegant-dining/reservation-api/internal/middleware"
	"github.com/elegant-dining/reservation-api/internal/model"
	"github.com/elegant-dining/reservation-api/internal/repository"
	"github.com/elegant-dining/reservation-api/internal/utils"
)

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *auth.Manager
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *auth.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	AdminSecret string `json:"admin_secret"`
}

type loginReq struct {
	Login    string `json:"login"` // username or email
	Password string `json:"password"`
}

type validateReq struct {
	Token string `json:"token"`
}

type profileReq struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type authResp struct {
	Message string           `json:"message"`
	User    model.Projection `json:"user"`
	Token   string           `json:"token"`
}

// Register creates a user and immediately opens a session for it.
// Failure order is fixed: missing fields, bad email, bad password,
// username taken, email taken, invalid admin secret. The insert still
// maps duplicate-key errors to the same conflicts, so two racing
// registrations resolve through the store's unique constraints.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Username == "" || req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username, email, password, and full name are required."})
	}
	if !utils.IsValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format."})
	}
	if !utils.IsValidPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be between 6 and 128 characters long."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if taken, err := h.Users.UsernameExists(ctx, req.Username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to create user."})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Username already exists."})
	}
	if taken, err := h.Users.EmailExists(ctx, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to create user."})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Email already exists."})
	}

	role, err := auth.ResolveRegistrationRole(req.Role, req.AdminSecret, h.Cfg.AdminSecret)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Invalid admin secret password."})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to create user."})
	}

	u := model.User{
		Username:     utils.Sanitize(req.Username),
		Email:        utils.Sanitize(req.Email),
		PasswordHash: hash,
		Role:         role,
		FullName:     utils.Sanitize(req.FullName),
		Phone:        utils.Sanitize(req.Phone),
		IsActive:     true,
	}
	uid, err := h.Users.Create(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Username already exists."})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to create user."})
	}

	token, _, err := h.Sessions.Issue(ctx, uid, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		// The user row exists; only session creation failed. Distinct
		// from invalid credentials.
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "User created but session creation failed."})
	}

	created, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to load created user."})
	}
	return c.JSON(http.StatusCreated, authResp{
		Message: "User registered successfully.",
		User:    created.Project(),
		Token:   token,
	})
}

// Login verifies credentials (username or email plus password) and
// opens a new session. Bad login and bad password are reported
// identically.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username/email and password are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
	}

	_ = h.Users.TouchLastLogin(ctx, u.ID)

	token, _, err := h.Sessions.Issue(ctx, u.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login successful but session creation failed."})
	}
	return c.JSON(http.StatusOK, authResp{
		Message: "Login successful.",
		User:    u.Project(),
		Token:   token,
	})
}

// Logout revokes the bearer session presented in the Authorization
// header. Revocation is idempotent: logging out a token that is
// already gone still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.BearerToken(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token is required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Logout failed."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful."})
}

// Validate checks a session token supplied in the request body. This
// endpoint reads the token from the body rather than the header on
// purpose: existing clients post the stored token here to decide
// whether to show the logged-in UI.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token is required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Sessions.Validate(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"valid":   false,
			"message": "Invalid or expired token.",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"user":  u.Project(),
	})
}

// Profile returns the authenticated user's safe projection.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	return c.JSON(http.StatusOK, u.Project())
}

// UpdateProfile replaces the authenticated user's mutable profile
// fields (full name, phone, email).
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authentication required."})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || strings.TrimSpace(req.FullName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Full name and email are required."})
	}
	if !utils.IsValidEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid email format."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Users.UpdateProfile(ctx, u.ID,
		utils.Sanitize(req.FullName), utils.Sanitize(req.Phone), utils.Sanitize(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already exists."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to update profile."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully."})
}

// ListUsers lists every account for the admin dashboard, including
// the active flag. The admin gate is applied by the router.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Unable to list users."})
	}
	out := make([]model.AdminProjection, 0, len(users))
	for _, u := range users {
		out = append(out, model.AdminProjection{Projection: u.Project(), IsActive: u.IsActive})
	}
	return c.JSON(http.StatusOK, out)
}
