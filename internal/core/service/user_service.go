package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

const minPasswordLength = 8

// UserService implements account lookup and management.
type UserService struct {
	repo    ports.UserRepository
	revoker RefreshRevoker
	logger  zerolog.Logger
}

// RefreshRevoker drops a user's refresh token. Used when an account is disabled.
type RefreshRevoker interface {
	Revoke(ctx context.Context, userID string) error
}

func NewUserService(repo ports.UserRepository, revoker RefreshRevoker, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, revoker: revoker, logger: logger}
}

// LoadByUsername returns the account named username or domain.ErrUserNotFound.
func (s *UserService) LoadByUsername(ctx context.Context, username string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByUsername(ctx, username)
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || len(in.Password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}

	roles, err := parseRoleList(in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Enabled:      true,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Str("roles", domain.RolesString(roles)).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns one page of accounts, normalised like catalogue listings.
func (s *UserService) List(ctx context.Context, page, limit int) (*ports.UserPage, error) {
	page, limit = normalizePage(page, limit)
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.UserPage{
		Items:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *UserService) UpdateRoles(ctx context.Context, id string, names []string) (*domain.User, error) {
	roles, err := parseRoleList(names)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Str("roles", domain.RolesString(roles)).Msg("user roles updated")
	return user, nil
}

// SetEnabled toggles the soft-disable flag. Disabling also revokes the
// account's refresh token so it cannot mint new access tokens.
func (s *UserService) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Enabled = enabled
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !enabled && s.revoker != nil {
		if err := s.revoker.Revoke(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to revoke refresh token of disabled user")
		}
	}

	s.logger.Info().Str("user_id", id).Bool("enabled", enabled).Msg("user enabled flag changed")
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < minPasswordLength {
		return domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	// Sessions opened with the old password do not survive the change.
	if s.revoker != nil {
		if err := s.revoker.Revoke(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to revoke refresh token after password change")
		}
	}
	s.logger.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// EnsureAdmin creates an administrator account when username is not taken yet.
// It is used to seed the first account at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("ensure admin: %w", err)
	}
	_, err = s.Create(ctx, ports.CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		Roles:    []string{string(domain.RoleAdministrator)},
	})
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func parseRoleList(names []string) ([]domain.Role, error) {
	roles, err := domain.ParseRoles(strings.Join(names, " "))
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, domain.ErrInvalidRole
	}
	return roles, nil
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
