package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carnavalia/catalog-api/internal/api/metrics"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

const bearerPrefix = "Bearer "

const (
	outcomeAuthenticated = "authenticated"
	outcomeAnonymous     = "anonymous"
	outcomeRejected      = "rejected"
)

var (
	errTokenInvalid  = errors.New("token failed validation")
	errAccountUnfit  = errors.New("account disabled or without roles")
	errSubjectAbsent = errors.New("token has no subject")
	errRoleRevoked   = errors.New("token carries a role the account no longer holds")
)

// Authenticate resolves a bearer token into a domain.Principal stored in the
// request context. It never rejects a request: missing, foreign-scheme and
// unusable tokens all continue unauthenticated, and authorization is left to
// RequireAuthenticated and RequireAuthority.
func Authenticate(tokens ports.TokenService, users ports.UserLookup, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			header := req.Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				metrics.AuthFilterTotal.WithLabelValues(outcomeAnonymous).Inc()
				return next(c)
			}
			token := strings.TrimSpace(header[len(bearerPrefix):])

			username, err := tokens.ExtractSubject(token)
			if err == nil && username == "" {
				err = errSubjectAbsent
			}
			if err != nil {
				reject(log, c, err)
				return next(c)
			}

			if _, ok := PrincipalFrom(req.Context()); ok {
				return next(c)
			}

			principal, err := resolve(req.Context(), tokens, users, username, token)
			if err != nil {
				reject(log, c, err)
				return next(c)
			}

			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
			metrics.AuthFilterTotal.WithLabelValues(outcomeAuthenticated).Inc()
			return next(c)
		}
	}
}

// resolve loads the account behind username and checks the token against it.
// A panic from a collaborator is turned into an error.
func resolve(ctx context.Context, tokens ports.TokenService, users ports.UserLookup, username, token string) (p domain.Principal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("authentication panic: %v", r)
		}
	}()

	user, err := users.LoadByUsername(ctx, username)
	if err != nil {
		return domain.Principal{}, err
	}
	if !tokens.Validate(token) {
		return domain.Principal{}, errTokenInvalid
	}
	if !user.Usable() {
		return domain.Principal{}, errAccountUnfit
	}
	claimed, err := tokens.ExtractRoles(token)
	if err != nil {
		return domain.Principal{}, errTokenInvalid
	}
	for _, r := range claimed {
		if !hasRole(user.Roles, r) {
			return domain.Principal{}, errRoleRevoked
		}
	}
	return domain.NewPrincipal(user), nil
}

func hasRole(roles []domain.Role, r domain.Role) bool {
	for _, have := range roles {
		if have == r {
			return true
		}
	}
	return false
}

// Expired and malformed tokens are logged alike.
func reject(log zerolog.Logger, c echo.Context, err error) {
	metrics.AuthFilterTotal.WithLabelValues(outcomeRejected).Inc()
	log.Debug().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("bearer token not accepted, continuing unauthenticated")
}
