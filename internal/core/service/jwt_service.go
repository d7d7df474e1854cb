package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

const defaultAccessTTL = 15 * time.Minute

// accessClaims is the payload of an access token. Roles are space-joined.
type accessClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 access tokens with a server-held secret.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService returns a JWTService. A non-positive ttl falls back to 15 minutes.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret must not be empty")
	}
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// ExpirationSeconds returns the access token lifetime in seconds.
func (s *JWTService) ExpirationSeconds() int64 {
	return int64(s.ttl / time.Second)
}

// IssueAccessToken signs a token for username carrying roles. The result is
// deterministic for a given input and clock.
func (s *JWTService) IssueAccessToken(username string, roles []domain.Role) (string, time.Time, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := accessClaims{
		Roles: domain.RolesString(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate reports whether token carries a valid signature and has not expired.
// It never returns an error: any failure counts as invalid.
func (s *JWTService) Validate(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

// ExtractSubject returns the username the token was issued for.
func (s *JWTService) ExtractSubject(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRoles returns the roles carried by the token.
func (s *JWTService) ExtractRoles(token string) ([]domain.Role, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	return domain.ParseRoles(claims.Roles)
}

func (s *JWTService) parse(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		// strict base64 so a changed final signature character never decodes to the same bytes
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
