package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carnavalia/catalog-api/internal/api/metrics"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// AuthHandler serves the /api/v1/auth routes.
type AuthHandler struct {
	auth  ports.AuthService
	users ports.UserService
}

func NewAuthHandler(auth ports.AuthService, users ports.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type loginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type tokenResponse struct {
	AccessToken      string       `json:"access_token"`
	TokenType        string       `json:"token_type"`
	ExpiresIn        int64        `json:"expires_in"`
	RefreshToken     string       `json:"refresh_token"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
	User             *domain.User `json:"user"`
}

type meResponse struct {
	User        *domain.User       `json:"user"`
	Authorities []domain.Authority `json:"authorities"`
}

func newTokenResponse(pair *domain.TokenPair, user *domain.User) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt.UTC(),
		User:             user,
	}
}

// Login handles POST /api/v1/auth/login. The identifier is the username,
// or the email when no username is sent.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}

	pair, user, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
		RemoteIP:   c.RealIP(),
	})
	metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newTokenResponse(pair, user))
}

// Refresh handles POST /api/v1/auth/refresh and rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, user, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, c.RealIP())
	metrics.RefreshesTotal.WithLabelValues(refreshResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newTokenResponse(pair, user))
}

// Logout handles POST /api/v1/auth/logout. Access tokens already handed out
// stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.Request().Context(), p, c.RealIP()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.users.LoadByUsername(c.Request().Context(), p.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: user, Authorities: p.Authorities})
}

// ChangePassword handles PUT /api/v1/auth/me/password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.users.ChangePassword(c.Request().Context(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}

func refreshResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid"
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	default:
		return "error"
	}
}
