package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

type authFixture struct {
	users    *stubUserRepo
	tokens   *stubRefreshRepo
	throttle *stubThrottle
	audit    *stubAudit
	jwt      *JWTService
	refresh  *RefreshService
	userSvc  *UserService
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newStubUserRepo(),
		tokens:   newStubRefreshRepo(),
		throttle: newStubThrottle(),
		audit:    &stubAudit{},
	}
	jwtSvc, err := NewJWTService("secret", 15*time.Minute)
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}
	f.jwt = jwtSvc
	f.refresh = NewRefreshService(f.tokens, f.users, time.Hour, zerolog.Nop())
	f.userSvc = NewUserService(f.users, f.refresh, zerolog.Nop())
	f.svc = NewAuthService(f.users, f.jwt, f.refresh, f.throttle, f.audit, zerolog.Nop())
	return f
}

func (f *authFixture) register(t *testing.T, username, password string, roles ...string) *domain.User {
	t.Helper()
	u, err := f.userSvc.Create(context.Background(), ports.CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "carol", "s3cret-pass", "administrator")

	pair, user, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "carol", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.ExpiresIn != 900 {
		t.Fatalf("expected expires_in 900, got %d", pair.ExpiresIn)
	}
	if !f.jwt.Validate(pair.AccessToken) {
		t.Fatalf("issued access token does not validate")
	}
	roles, err := f.jwt.ExtractRoles(pair.AccessToken)
	if err != nil || len(roles) != 1 || roles[0] != domain.RoleAdministrator {
		t.Fatalf("unexpected roles claim: %v (%v)", roles, err)
	}
	if got := joinTypes(f.audit.types()); got != "login_succeeded" {
		t.Fatalf("unexpected audit trail: %s", got)
	}
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dave", "goodpass1", "specialist")

	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "DAVE@example.com", Password: "goodpass1"}); err != nil {
		t.Fatalf("login by email failed: %v", err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "dave", "goodpass1", "specialist")

	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "dave", Password: "badpass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if n := f.throttle.failures[loginThrottleKey("dave", u)]; n != 1 {
		t.Fatalf("expected one recorded failure, got %d", n)
	}
}

func TestAuthService_Login_UnknownUserIsInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "ghost", Password: "pass"}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_EmptyCredentials(t *testing.T) {
	f := newAuthFixture(t)

	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "erin", "password1", "specialist")
	if _, err := f.userSvc.SetEnabled(context.Background(), u.ID, false); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "erin", Password: "password1"}); err != domain.ErrAccountDisabled {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "frank", "password1", "specialist")

	for i := 0; i < maxFailedLogins; i++ {
		_, _, _ = f.svc.Login(context.Background(), ports.LoginInput{Identifier: "frank", Password: "wrong"})
	}

	// Even the right password is refused while throttled.
	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "frank", Password: "password1"}); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleSharedAcrossIdentifiers(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "julia", "password1", "specialist")

	// Alternating username and email feeds one counter.
	for i := 0; i < maxFailedLogins; i++ {
		identifier := "julia"
		if i%2 == 1 {
			identifier = "julia@example.com"
		}
		_, _, _ = f.svc.Login(context.Background(), ports.LoginInput{Identifier: identifier, Password: "wrong"})
	}

	for _, identifier := range []string{"julia", "JULIA@example.com"} {
		if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: identifier, Password: "password1"}); err != domain.ErrTooManyAttempts {
			t.Fatalf("%s: expected ErrTooManyAttempts, got %v", identifier, err)
		}
	}
}

func TestAuthService_Login_SuccessResetsThrottle(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "gina", "password1", "specialist")

	_, _, _ = f.svc.Login(context.Background(), ports.LoginInput{Identifier: "gina", Password: "wrong"})
	if _, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "gina", Password: "password1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if n := f.throttle.failures[loginThrottleKey("gina", u)]; n != 0 {
		t.Fatalf("expected throttle reset, got %d failures", n)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "hugo", "password1", "specialist")

	first, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "hugo", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, user, err := f.svc.Refresh(context.Background(), first.RefreshToken, "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if user.Username != "hugo" {
		t.Fatalf("unexpected user %s", user.Username)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, _, err := f.svc.Refresh(context.Background(), first.RefreshToken, ""); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for the rotated-out token, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "ines", "password1", "specialist")

	pair, _, err := f.svc.Login(context.Background(), ports.LoginInput{Identifier: "ines", Password: "password1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.svc.Logout(context.Background(), domain.NewPrincipal(u), "127.0.0.1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := f.svc.Refresh(context.Background(), pair.RefreshToken, ""); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	if got := joinTypes(f.audit.types()); got != "login_succeeded,logged_out,refresh_failed" {
		t.Fatalf("unexpected audit trail: %s", got)
	}
}
