package ports

import (
	"context"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// RefreshTokenRepository persists refresh tokens keyed by token value and by owner.
type RefreshTokenRepository interface {
	// Save stores token as its owner's only token, removing the previous one
	// in the same atomic step.
	Save(ctx context.Context, token *domain.RefreshToken) error
	// FindByToken returns domain.ErrInvalidToken when the token is unknown or
	// is no longer its owner's current token. Expired tokens are still
	// returned so the caller can tell them apart.
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// LoginThrottle counts consecutive failed logins per identifier.
type LoginThrottle interface {
	Failures(ctx context.Context, identifier string) (int64, error)
	RecordFailure(ctx context.Context, identifier string) (int64, error)
	Reset(ctx context.Context, identifier string) error
}
