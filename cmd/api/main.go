package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/carnavalia/catalog-api/internal/api"
	"github.com/carnavalia/catalog-api/internal/api/handler"
	"github.com/carnavalia/catalog-api/internal/core/service"
	"github.com/carnavalia/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/carnavalia/catalog-api/internal/infrastructure/db/redis"
	"github.com/carnavalia/catalog-api/internal/infrastructure/queue"
	"github.com/carnavalia/catalog-api/internal/pkg/config"
	"github.com/carnavalia/catalog-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "catalog-api",
	})
	if err != nil {
		return err
	}
	defer closeMongo(mongoClient, log)

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer closeRedis(rdb, log)

	userRepo := mongo.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	// --- Auth ---
	tokens, err := service.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTTL)
	if err != nil {
		return err
	}
	refresh := service.NewRefreshService(redisdb.NewRefreshTokenRepository(rdb), userRepo, cfg.JWT.RefreshTTL, log)
	users := service.NewUserService(userRepo, refresh, log)

	audit := queue.NewAuditDispatcher(cfg.Audit.Workers, cfg.Audit.Buffer, mongo.NewAuditRepository(db), log)
	// Workers outlive the signal context so Stop can drain them after the server shuts down.
	audit.Start(context.WithoutCancel(ctx))
	defer stopAudit(audit, log)

	auth := service.NewAuthService(userRepo, tokens, refresh, redisdb.NewLoginThrottle(rdb, 0), audit, log)

	if cfg.Bootstrap.Username != "" {
		if err := users.EnsureAdmin(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Email, cfg.Bootstrap.Password); err != nil {
			return err
		}
	}

	catalog, err := buildCatalog(ctx, db, log)
	if err != nil {
		return err
	}

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Log:       log,
		Tokens:    tokens,
		Auth:      auth,
		Users:     users,
		Catalog:   catalog,
		Readiness: []handler.DependencyCheck{handler.MongoCheck(db), handler.RedisCheck(rdb)},
		AuthRPS:   cfg.RateLimit.AuthRPS,
		AuthBurst: cfg.RateLimit.AuthBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

func stopAudit(d *queue.AuditDispatcher, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		log.Warn().Err(err).Int64("dropped", d.Dropped()).Msg("audit queue not drained")
	}
}

func closeMongo(client *mongodrv.Client, log zerolog.Logger) {
	if err := mongo.Disconnect(client, shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(rdb *redis.Client, log zerolog.Logger) {
	if err := redisdb.Close(rdb); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
}
