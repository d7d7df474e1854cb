package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carnavalia/catalog-api/internal/api/metrics"
	"github.com/carnavalia/catalog-api/internal/core/domain"
)

// RequireAuthenticated responds 401 when Authenticate installed no principal.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := PrincipalFrom(c.Request().Context()); !ok {
				return deny(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireAuthority responds 401 without a principal and 403 when the
// principal holds none of the listed authorities.
func RequireAuthority(authorities ...domain.Authority) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c.Request().Context())
			if !ok {
				return deny(http.StatusUnauthorized, "authentication required")
			}
			for _, a := range authorities {
				if p.HasAuthority(a) {
					return next(c)
				}
			}
			return deny(http.StatusForbidden, "access forbidden")
		}
	}
}

func deny(code int, msg string) error {
	metrics.AccessDeniedTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	return echo.NewHTTPError(code, msg)
}
