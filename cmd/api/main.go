package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/maitriconnect/maitri-api/internal/api/http"
	"github.com/maitriconnect/maitri-api/internal/api/http/handlers"
	"github.com/maitriconnect/maitri-api/internal/auth"
	"github.com/maitriconnect/maitri-api/internal/cache"
	"github.com/maitriconnect/maitri-api/internal/config"
	"github.com/maitriconnect/maitri-api/internal/email"
	"github.com/maitriconnect/maitri-api/internal/events"
	"github.com/maitriconnect/maitri-api/internal/observability"
	"github.com/maitriconnect/maitri-api/internal/persistence"
	"github.com/maitriconnect/maitri-api/internal/repository"
	"github.com/maitriconnect/maitri-api/internal/service"
	"github.com/maitriconnect/maitri-api/internal/upload"
	"github.com/maitriconnect/maitri-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Postgres.RunMigrations {
		if err := persistence.MigrateUp(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var publicCache cache.PublicEvents = cache.Noop{}
	healthDeps := map[string]handlers.Pinger{"postgres": pg, "redis": nil}
	if redis.Enabled() {
		publicCache = cache.NewRedisPublicEvents(redis.Client, cfg.Cache.PublicEventsTTL())
		healthDeps["redis"] = redis
	}

	uploads, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		logger.Fatal("failed to prepare upload directory", zap.Error(err))
	}

	sender, err := email.NewSender(cfg.Email, logger)
	if err != nil {
		logger.Fatal("failed to init email sender", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Uploads:    uploads,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		UserRepo:   userRepo,
		Uploads:    uploads,
		Cache:      publicCache,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:  dispatcher,
		UserRepo:    userRepo,
		Sender:      sender,
		Logger:      logger,
		Metrics:     metrics,
		FrontendURL: cfg.App.FrontendURL,
	})
	worker.StartSubscribers(logger, notificationService)

	authLimiter := httptransport.NewRateLimiter(cfg.RateLimit.AuthPerMinute)
	defer authLimiter.Stop()

	app := httptransport.NewApp(httptransport.ServerConfig{
		Name:      cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
		Timeout:   cfg.App.RequestTimeout(),
		Logger:    logger,
		Metrics:   metrics,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthDeps),
		Auth:        handlers.NewAuthHandler(authService),
		Events:      handlers.NewEventsHandler(eventService),
		Gate:        auth.NewGate(authService.TokenManager(), userRepo),
		EventOwner:  eventService.OwnerOf,
		AuthLimiter: authLimiter.Handler(),
		Metrics:     metrics.Handler(),
		UploadDir:   uploads.Dir(),
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	if err := waitForShutdown(logger, listenErr); err != nil {
		logger.Error("fiber listen", zap.Error(err))
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("graceful shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger, listenErr <-chan error) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return nil
	case err := <-listenErr:
		return err
	}
}
