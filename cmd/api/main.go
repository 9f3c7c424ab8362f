package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/auth-service/internal/api/http"
	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/observability"
	"github.com/spec-kit/auth-service/internal/persistence"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
	"github.com/spec-kit/auth-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	privateKey, err := auth.LoadPrivateKey(cfg.Auth.PrivateKeyPEM, cfg.Auth.PrivateKeyFile)
	if err != nil {
		logger.Fatal("failed to load signing key", zap.Error(err))
	}
	if privateKey == nil {
		logger.Warn("no access token signing key configured; token issuance will fail")
	}
	codec := auth.NewTokenCodec(privateKey, cfg.Auth.RefreshTokenSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	tenantRepo := repository.NewTenantRepository(pool)
	refreshTokenRepo := repository.NewRefreshTokenRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	limiter := persistence.NewLoginLimiter(redis, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:         userRepo,
		RefreshTokenRepo: refreshTokenRepo,
		Codec:            codec,
		Limiter:          limiter,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	userService := service.NewUserService(cfg.Auth, userRepo, tenantRepo, dispatcher, logger)
	tenantService := service.NewTenantService(tenantRepo, logger)

	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	authMiddleware := auth.NewMiddleware(codec, refreshTokenRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.CookieDomain),
		Users:          handlers.NewUsersHandler(userService),
		Tenants:        handlers.NewTenantsHandler(tenantService),
		JWKS:           handlers.NewJWKSHandler(codec),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
