package ports

import (
	"context"
	"time"

	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// TokenService issues and checks signed access tokens.
type TokenService interface {
	IssueAccessToken(username string, roles []domain.Role) (string, time.Time, error)
	Validate(token string) bool
	ExtractSubject(token string) (string, error)
	ExtractRoles(token string) ([]domain.Role, error)
	ExpirationSeconds() int64
}

// UserLookup resolves an account by username.
type UserLookup interface {
	LoadByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RefreshTokenStore manages the single rotating refresh token of each user.
type RefreshTokenStore interface {
	Issue(ctx context.Context, user *domain.User) (*domain.RefreshToken, error)
	Redeem(ctx context.Context, token string) (*domain.User, error)
	Revoke(ctx context.Context, userID string) error
}

// LoginInput carries the credentials presented at login.
type LoginInput struct {
	Identifier string // username or email
	Password   string
	RemoteIP   string
}

// AuthService implements the login, refresh and logout flows.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken, remoteIP string) (*domain.TokenPair, *domain.User, error)
	Logout(ctx context.Context, principal domain.Principal, remoteIP string) error
}

// CreateUserInput carries the fields needed to register an account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// UserPage is one page of accounts ordered by username.
type UserPage struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService manages accounts.
type UserService interface {
	UserLookup
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, page, limit int) (*UserPage, error)
	UpdateRoles(ctx context.Context, id string, roles []string) (*domain.User, error)
	SetEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error)
	ChangePassword(ctx context.Context, id, current, next string) error
}
