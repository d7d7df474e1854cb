package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// UserHandler serves account management under /api/v1/users.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=50"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles"    validate:"required,min=1,dive,oneof=administrator specialist"`
}

type updateRolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=administrator specialist"`
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type userListResponse struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		// Bad input that slipped past validation, not a failed login.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "username, email and password are required")
		}
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// List handles GET /api/v1/users?page=&limit=.
func (h *UserHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.users.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateRoles handles PUT /api/v1/users/:id/roles.
func (h *UserHandler) UpdateRoles(c echo.Context) error {
	var req updateRolesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateRoles(c.Request().Context(), c.Param("id"), req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetEnabled handles PUT /api/v1/users/:id/enabled. Disabling an account
// also revokes its refresh token.
func (h *UserHandler) SetEnabled(c echo.Context) error {
	var req setEnabledRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.SetEnabled(c.Request().Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
