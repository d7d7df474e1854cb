package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	// ErrInvalidToken and ErrExpiredToken describe refresh token redemption failures.
	ErrInvalidToken = errors.New("invalid refresh token")
	ErrExpiredToken = errors.New("expired refresh token")

	ErrForbidden = errors.New("access forbidden")
	ErrNotFound  = errors.New("resource not found")
)
