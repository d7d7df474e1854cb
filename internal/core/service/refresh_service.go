package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

const (
	defaultRefreshTTL = 7 * 24 * time.Hour
	refreshTokenBytes = 32
)

// RefreshService keeps one rotating refresh token per user.
type RefreshService struct {
	tokens ports.RefreshTokenRepository
	users  ports.UserRepository
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

func NewRefreshService(tokens ports.RefreshTokenRepository, users ports.UserRepository, ttl time.Duration, log zerolog.Logger) *RefreshService {
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}
	return &RefreshService{tokens: tokens, users: users, ttl: ttl, now: time.Now, log: log}
}

// WithClock replaces the time source. Intended for tests.
func (s *RefreshService) WithClock(now func() time.Time) *RefreshService {
	s.now = now
	return s
}

// Issue replaces the user's refresh token with a freshly generated one.
// The store swaps tokens atomically, so concurrent issues for one user leave
// exactly one live token: the last one written.
func (s *RefreshService) Issue(ctx context.Context, user *domain.User) (*domain.RefreshToken, error) {
	value, err := generateOpaqueToken(refreshTokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token := &domain.RefreshToken{
		Token:     value,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return token, nil
}

// Redeem resolves a refresh token to its owner. Expired tokens are deleted.
func (s *RefreshService) Redeem(ctx context.Context, value string) (*domain.User, error) {
	if value == "" {
		return nil, domain.ErrInvalidToken
	}

	token, err := s.tokens.FindByToken(ctx, value)
	if err != nil {
		return nil, err
	}

	if token.Expired(s.now()) {
		if delErr := s.tokens.DeleteByToken(ctx, value); delErr != nil {
			s.log.Warn().Err(delErr).Str("user_id", token.UserID).Msg("failed to delete expired refresh token")
		}
		return nil, domain.ErrExpiredToken
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("redeem refresh token: %w", err)
	}
	if !user.Usable() {
		return nil, domain.ErrAccountDisabled
	}
	return user, nil
}

// Revoke deletes the user's refresh token, if any.
func (s *RefreshService) Revoke(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// generateOpaqueToken returns size random bytes encoded as unpadded base64url.
func generateOpaqueToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
