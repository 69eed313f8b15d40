package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"usertemplate/backend/internal/auth"
	"usertemplate/backend/internal/database"
	"usertemplate/backend/internal/handlers"
	"usertemplate/backend/internal/notifications"
	"usertemplate/backend/internal/ratelimit"
	"usertemplate/backend/internal/repository"
	"usertemplate/backend/internal/router"
	"usertemplate/backend/internal/security"
	"usertemplate/backend/internal/seeders"
	"usertemplate/backend/internal/services"
	"usertemplate/backend/pkg/config"
	plog "usertemplate/backend/pkg/log"
	"usertemplate/backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := plog.Must(cfg.LogLevel, cfg.Environment)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()
	logger.Info("Database connection established", zap.String("driver", cfg.DBDriver))

	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer, version)
	store := repository.NewGormStore(db)
	users := services.NewUserService(store, security.NewArgonHash(),
		services.WithLogger(logger),
		services.WithMetrics(m),
		services.WithResetTokenTTL(cfg.ResetTokenTTL),
		services.WithEnvironment(cfg.Environment),
	)

	if cfg.SeedDemoUsers {
		if err := seeders.SeedDemoUsers(ctx, users, logger); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTokenLifespan, cfg.CookieSecure)
	if err != nil {
		return err
	}

	mailer, err := notifications.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Deps{
		Users:           users,
		Tokens:          tokens,
		Mailer:          mailer,
		Limiter:         newLimiter(cfg, logger),
		DB:              store,
		Logger:          logger,
		FrontendBaseURL: cfg.FrontendBaseURL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
	})

	engine := router.SetupRouter(router.Deps{
		Handler:  h,
		Tokens:   tokens,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newLimiter picks the forgot-password limiter: redis when configured, an
// in-process window otherwise. A non-positive limit disables limiting.
func newLimiter(cfg *config.AppConfig, logger *zap.Logger) ratelimit.Limiter {
	if cfg.ForgotPasswordLimit <= 0 {
		logger.Warn("Forgot-password rate limiting disabled")
		return ratelimit.Nop{}
	}
	if cfg.RedisAddr != "" {
		logger.Info("Using redis rate limiter", zap.String("addr", cfg.RedisAddr))
		client := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return ratelimit.NewRedisLimiter(client, cfg.ForgotPasswordLimit, cfg.ForgotPasswordWindow)
	}
	return ratelimit.NewMemoryLimiter(cfg.ForgotPasswordLimit, cfg.ForgotPasswordWindow)
}
