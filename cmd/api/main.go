package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/agentapi"
	"github.com/spec-kit/support-console/internal/api/dto"
	httptransport "github.com/spec-kit/support-console/internal/api/http"
	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/clock"
	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/events"
	"github.com/spec-kit/support-console/internal/lifecycle"
	"github.com/spec-kit/support-console/internal/observability"
	"github.com/spec-kit/support-console/internal/persistence"
	"github.com/spec-kit/support-console/internal/reconcile"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
	"github.com/spec-kit/support-console/internal/store"
	"github.com/spec-kit/support-console/internal/worker"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("support_console")
	dispatcher := events.NewInMemoryDispatcher()
	clk := clock.Real()
	st := store.New()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		archive := worker.NewArchiveWorker(
			repository.NewTicketRepository(pg.PoolHandle()),
			repository.NewTicketHistoryRepository(pg.PoolHandle()),
			256, logger,
		)
		archive.Register(dispatcher)
		go archive.Run(ctx)
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var guard reconcile.ActionGuard = reconcile.NewMemoryGuard(clk, cfg.Console.DedupeWindow())
	if redis != nil {
		guard = redis.ActionGuard(cfg.Console.DedupeWindow())
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())

	var remote reconcile.Remote
	var client *agentapi.Client
	if cfg.Remote.BaseURL != "" {
		client = agentapi.NewClient(agentapi.Config{
			BaseURL: cfg.Remote.BaseURL,
			Timeout: cfg.Remote.Timeout(),
			Tokens:  auth.NewServiceTokenSource(tokens, cfg.Remote.ServiceAgentID),
			Logger:  logger,
		})
		remote = client
	} else {
		logger.Warn("REMOTE_BASE_URL not provided; console runs local-only")
	}

	engine := lifecycle.NewEngine(lifecycle.Dependencies{Clock: clk, Agents: st})
	reconciler := reconcile.New(reconcile.Dependencies{
		Store:         st,
		Engine:        engine,
		Remote:        remote,
		Guard:         guard,
		Dispatcher:    dispatcher,
		Recorder:      metrics,
		Logger:        logger,
		RemoteTimeout: cfg.Remote.Timeout(),
	})

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Console.NotificationBuffer)
	pollRecorder := worker.StartNotificationWorker(notifications, dispatcher, clk, metrics)

	if client != nil {
		poller := worker.NewPoller(worker.PollerConfig{
			Source:   client,
			Store:    st,
			Interval: cfg.Poll.Interval(),
			Timeout:  cfg.Remote.Timeout(),
			Logger:   logger,
			Recorder: pollRecorder,
		})
		go poller.Run(ctx)
	}

	var checks []handlers.Check
	if pg.Enabled() {
		checks = append(checks, handlers.Check{Name: "postgres", Probe: pg.Ping})
	}
	if redis != nil {
		checks = append(checks, handlers.Check{Name: "redis", Probe: redis.Ping})
	}

	validator := dto.NewValidator()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Queue:          handlers.NewQueueHandler(st, reconciler, clk, validator),
		Tickets:        handlers.NewTicketsHandler(st, reconciler, clk, validator),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
