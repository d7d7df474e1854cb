package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/carnavalia/catalog-api/internal/api/handler"
	"github.com/carnavalia/catalog-api/internal/api/metrics"
	"github.com/carnavalia/catalog-api/internal/api/middleware"
	"github.com/carnavalia/catalog-api/internal/core/domain"
	"github.com/carnavalia/catalog-api/internal/core/ports"
)

// CatalogServices groups the per-kind catalogue services.
type CatalogServices struct {
	Localities  ports.CatalogService[*domain.Locality]
	Contests    ports.CatalogService[*domain.Contest]
	Editions    ports.CatalogService[*domain.Edition]
	Groups      ports.CatalogService[*domain.Group]
	Persons     ports.CatalogService[*domain.Person]
	Memberships ports.CatalogService[*domain.Membership]
	Comments    ports.CatalogService[*domain.Comment]
	Images      ports.CatalogService[*domain.Image]
	Videos      ports.CatalogService[*domain.Video]
	Prizes      ports.CatalogService[*domain.Prize]
}

// Dependencies is everything NewRouter wires into handlers and middleware.
type Dependencies struct {
	Log       zerolog.Logger
	Tokens    ports.TokenService
	Auth      ports.AuthService
	Users     ports.UserService
	Catalog   CatalogServices
	Readiness []handler.DependencyCheck

	// AuthRPS and AuthBurst limit /api/v1/auth per client IP. AuthRPS <= 0 disables the limit.
	AuthRPS   float64
	AuthBurst int
}

// crudRoutes is implemented by every handler.CatalogHandler instantiation.
type crudRoutes interface {
	List(c echo.Context) error
	Get(c echo.Context) error
	Create(c echo.Context) error
	Update(c echo.Context) error
	Delete(c echo.Context) error
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Authenticate(deps.Tokens, deps.Users, deps.Log))

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Readiness...).Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	authenticated := middleware.RequireAuthenticated()

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users)
	auth := v1.Group("/auth")
	if deps.AuthRPS > 0 {
		auth.Use(authRateLimiter(deps.AuthRPS, deps.AuthBurst))
	}
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authenticated)
	auth.GET("/me", authHandler.Me, authenticated)
	auth.PUT("/me/password", authHandler.ChangePassword, authenticated)

	// --- User management ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := v1.Group("/users", middleware.RequireAuthority(domain.AuthorityUsersManage))
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id/roles", userHandler.UpdateRoles)
	users.PUT("/:id/enabled", userHandler.SetEnabled)

	// --- Catalogue ---
	write := middleware.RequireAuthority(domain.AuthorityCatalogWrite)
	del := middleware.RequireAuthority(domain.AuthorityCatalogDelete)
	cs := deps.Catalog

	mountCatalog(v1, domain.KindLocalities, handler.NewLocalityHandler(cs.Localities), write, del)
	mountCatalog(v1, domain.KindContests, handler.NewContestHandler(cs.Contests), write, del)
	mountCatalog(v1, domain.KindEditions, handler.NewEditionHandler(cs.Editions), write, del)
	mountCatalog(v1, domain.KindGroups, handler.NewGroupHandler(cs.Groups), write, del)
	mountCatalog(v1, domain.KindPersons, handler.NewPersonHandler(cs.Persons), write, del)
	mountCatalog(v1, domain.KindMemberships, handler.NewMembershipHandler(cs.Memberships), write, del)
	mountCatalog(v1, domain.KindComments, handler.NewCommentHandler(cs.Comments),
		middleware.RequireAuthority(domain.AuthorityCommentsWrite), del)
	mountCatalog(v1, domain.KindImages, handler.NewImageHandler(cs.Images), write, del)
	mountCatalog(v1, domain.KindVideos, handler.NewVideoHandler(cs.Videos), write, del)
	mountCatalog(v1, domain.KindPrizes, handler.NewPrizeHandler(cs.Prizes), write, del)

	return e
}

// mountCatalog registers public reads and guarded writes under /<kind>.
func mountCatalog(g *echo.Group, kind string, h crudRoutes, write, del echo.MiddlewareFunc) {
	r := g.Group("/" + kind)
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.POST("", h.Create, write)
	r.PUT("/:id", h.Update, write)
	r.DELETE("/:id", h.Delete, del)
}

func authRateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	if burst <= 0 {
		burst = int(rps) + 1
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "client identity unavailable")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		},
	})
}

// requestLogger emits one zerolog entry per request and records its latency.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).
				Observe(v.Latency.Seconds())

			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("remote_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
