//	@title						Persona API
//	@version					1.0
//	@description				Chat with a rate-limited persona assistant.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"persona/backend/internal/config"
	"persona/backend/internal/counter"
	"persona/backend/internal/db"
	"persona/backend/internal/handler"
	apphttp "persona/backend/internal/http"
	"persona/backend/internal/identity"
	"persona/backend/internal/ratelimit"
	"persona/backend/internal/repository"
	"persona/backend/internal/scheduler"
	"persona/backend/internal/service"
	"persona/backend/internal/service/ai"
	"persona/backend/pkg/logger"
	"persona/backend/pkg/network"
	"persona/backend/pkg/snowflake"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg := config.Load()
	logger.Init(logger.ParseLevel(cfg.LogLevel))

	if err := snowflake.Init(1); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		return err
	}

	users := repository.NewUserRepository(sqlDB)
	sessions := repository.NewSessionRepository(sqlDB)
	questions := repository.NewUnknownQuestionRepository(sqlDB)
	rateLimits := repository.NewRateLimitRepository(sqlDB)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	durable, closeDurable, err := counterBackend(ctx, cfg, rateLimits)
	if err != nil {
		return err
	}
	defer closeDurable()

	store := counter.NewStore(durable, counter.Options{Timeout: cfg.StoreTimeout})
	limiter, err := ratelimit.NewLimiter(store, ratelimit.Config{
		DailyLimit:  cfg.DailyLimit,
		HourlyLimit: cfg.HourlyLimit,
	})
	if err != nil {
		return err
	}
	engine := ratelimit.NewEngine(limiter, ratelimit.NewQuotaCache(cfg.QuotaCacheTTL))

	outbound := network.StaticProvider{ProxyURL: cfg.ProxyURL}
	clientFactory := network.NewClientFactory(outbound, outbound)
	devices := identity.NewLookup(cfg.GeoURL, clientFactory)

	provider, err := ai.NewProvider(ai.Config{
		Provider: cfg.AIProvider,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
	})
	if err != nil {
		return fmt.Errorf("configure model provider: %w", err)
	}

	profile, err := loadProfile(cfg.ProfilePath)
	if err != nil {
		return err
	}

	userService := service.NewUserService(users, sessions, questions)
	chatService := service.NewChatService(engine, userService, provider, ai.NewRateLimiter(cfg.AIRateLimit), service.ChatConfig{
		PersonaName:     cfg.PersonaName,
		Profile:         profile,
		HistoryLimit:    cfg.HistoryLimit,
		MaxMessageChars: cfg.MaxMessageChars,
		UpstreamTimeout: cfg.UpstreamTimeout,
	})
	authService := service.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret)
	adminService := service.NewAdminService(store, users, sessions, questions, sqlDB, provider.Name())

	ipExtractor, err := apphttp.NewIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	e := apphttp.NewRouter(
		handler.NewChatHandler(chatService, devices),
		handler.NewAdminHandler(adminService),
		handler.NewAuthHandler(authService),
		authService,
		cfg.StaticDir,
		cfg.Swagger,
		ipExtractor,
	)

	sweeper := scheduler.New(store, cfg.SweepInterval, cfg.CounterRetention)
	sweeper.Start()
	defer sweeper.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "counter_backend", store.Backend(), "provider", provider.Name())
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// counterBackend builds the durable counter tier. The memory backend has no
// durable tier at all.
func counterBackend(ctx context.Context, cfg config.Config, repo repository.RateLimitRepository) (counter.Backend, func(), error) {
	switch cfg.CounterBackend {
	case config.CounterBackendSQLite, "":
		return counter.NewSQLBackend(repo), func() {}, nil
	case config.CounterBackendRedis:
		backend, err := counter.NewRedisBackend(ctx, counter.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Retention: cfg.CounterRetention,
		})
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {
			if err := backend.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}, nil
	case config.CounterBackendMemory:
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown counter backend %q", cfg.CounterBackend)
	}
}

func loadProfile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read persona profile: %w", err)
	}
	return string(data), nil
}
