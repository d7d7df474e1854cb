package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

const maxFailedLogins = 5

// dummyHash is compared against when the account does not exist so that
// unknown usernames cost the same bcrypt work as wrong passwords.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("carnival-dummy-password"), bcrypt.DefaultCost)

// AuthService implements login, refresh and logout.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenService
	refresh  ports.RefreshTokenStore
	throttle ports.LoginThrottle
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenService,
	refresh ports.RefreshTokenStore,
	throttle ports.LoginThrottle,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		refresh:  refresh,
		throttle: throttle,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Login checks the credentials and issues an access and refresh token pair.
// Unknown accounts and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.TokenPair, *domain.User, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.findByIdentifier(ctx, identifier)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = nil
	case err != nil:
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	// Username and email of one account share a single failure counter.
	throttleKey := loginThrottleKey(identifier, user)
	if s.throttled(ctx, throttleKey) {
		s.record(domain.EventLoginFailed, identifier, "", in.RemoteIP, "throttled")
		return nil, nil, domain.ErrTooManyAttempts
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		s.fail(ctx, throttleKey, identifier, in.RemoteIP, "unknown account")
		return nil, nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		s.fail(ctx, throttleKey, identifier, in.RemoteIP, "wrong password")
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.Usable() {
		s.record(domain.EventLoginFailed, user.Username, user.ID, in.RemoteIP, "account disabled")
		return nil, nil, domain.ErrAccountDisabled
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, throttleKey); err != nil {
			s.log.Warn().Err(err).Str("identifier", identifier).Msg("failed to reset login throttle")
		}
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.record(domain.EventLoginSucceeded, user.Username, user.ID, in.RemoteIP, "")
	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return pair, user, nil
}

// Refresh redeems a refresh token and rotates it into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, remoteIP string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.refresh.Redeem(ctx, refreshToken)
	if err != nil {
		s.record(domain.EventRefreshFailed, "", "", remoteIP, err.Error())
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh: %w", err)
	}

	s.record(domain.EventTokenRefreshed, user.Username, user.ID, remoteIP, "")
	return pair, user, nil
}

// Logout revokes the principal's refresh token. Outstanding access tokens
// remain valid until they expire.
func (s *AuthService) Logout(ctx context.Context, principal domain.Principal, remoteIP string) error {
	if err := s.refresh.Revoke(ctx, principal.UserID); err != nil {
		return err
	}
	s.record(domain.EventLoggedOut, principal.Username, principal.UserID, remoteIP, "")
	return nil
}

func (s *AuthService) throttled(ctx context.Context, key string) bool {
	if s.throttle == nil {
		return false
	}
	n, err := s.throttle.Failures(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("throttle_key", key).Msg("login throttle check failed, continuing")
		return false
	}
	return n >= maxFailedLogins
}

// loginThrottleKey counts failures per account once the identifier resolves,
// and per lowercased identifier otherwise.
func loginThrottleKey(identifier string, user *domain.User) string {
	if user != nil {
		return "user:" + user.ID
	}
	return "name:" + strings.ToLower(identifier)
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, domain.ErrUserNotFound) || !strings.Contains(identifier, "@") {
		return user, err
	}
	return s.users.FindByEmail(ctx, strings.ToLower(identifier))
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	refresh, err := s.refresh.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		ExpiresIn:        s.tokens.ExpirationSeconds(),
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *AuthService) fail(ctx context.Context, throttleKey, identifier, remoteIP, reason string) {
	if s.throttle != nil {
		if _, err := s.throttle.RecordFailure(ctx, throttleKey); err != nil {
			s.log.Warn().Err(err).Str("identifier", identifier).Msg("failed to record login failure")
		}
	}
	s.record(domain.EventLoginFailed, identifier, "", remoteIP, reason)
}

func (s *AuthService) record(typ domain.AuthEventType, username, userID, remoteIP, reason string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Type:       typ,
		Username:   username,
		UserID:     userID,
		RemoteIP:   remoteIP,
		Reason:     reason,
		OccurredAt: s.now().UTC(),
	})
}
