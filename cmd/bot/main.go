package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hoodmarket/ticket-bot/internal/api/http"
	"github.com/hoodmarket/ticket-bot/internal/api/http/handlers"
	"github.com/hoodmarket/ticket-bot/internal/auth"
	"github.com/hoodmarket/ticket-bot/internal/config"
	"github.com/hoodmarket/ticket-bot/internal/events"
	"github.com/hoodmarket/ticket-bot/internal/observability"
	"github.com/hoodmarket/ticket-bot/internal/platform"
	"github.com/hoodmarket/ticket-bot/internal/router"
	"github.com/hoodmarket/ticket-bot/internal/service"
	"github.com/hoodmarket/ticket-bot/internal/store"
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

	snapshotStore, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init snapshot store", zap.Error(err))
	}
	defer closeStore()

	gateway := platform.NewGatewayClient(cfg.Platform, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Store:      snapshotStore,
		Channels:   gateway,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	archiveService := service.NewArchiveService(gateway, cfg.Platform.ArchiveChannelID, logger)
	feedbackService := service.NewFeedbackService(gateway, cfg.Platform.ReviewChannelID, dispatcher, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	securityNotices := service.NewSecurityNoticeService(
		gateway, cfg.Platform.TicketCategoryID, cfg.Platform.SecurityNoticeInterval(), logger)
	go securityNotices.Run(ctx)

	intentRouter := router.New(router.Dependencies{
		Tickets:  ticketService,
		Archive:  archiveService,
		Feedback: feedbackService,
		Client:   gateway,
		Config:   cfg.Platform,
		Logger:   logger,
		Metrics:  metrics,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, snapshotStore),
		Intents:        handlers.NewIntentsHandler(intentRouter),
		Admin:          handlers.NewAdminHandler(tokens, cfg.Auth.AdminPasswordHash, intentRouter),
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

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		rs := store.NewRedisStore(cfg.Redis, logger)
		return rs, rs.Close, nil
	case config.StoreBackendPostgres:
		ps, err := store.NewPostgresStore(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	default:
		fs, err := store.NewFileStore(cfg.Store.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
