package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/npdi-tracker/internal/api/http"
	"github.com/spec-kit/npdi-tracker/internal/api/http/handlers"
	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/config"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/enrichment"
	"github.com/spec-kit/npdi-tracker/internal/events"
	"github.com/spec-kit/npdi-tracker/internal/normalizer"
	"github.com/spec-kit/npdi-tracker/internal/observability"
	"github.com/spec-kit/npdi-tracker/internal/persistence"
	"github.com/spec-kit/npdi-tracker/internal/queue"
	"github.com/spec-kit/npdi-tracker/internal/reconcile"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	"github.com/spec-kit/npdi-tracker/internal/service"
	"github.com/spec-kit/npdi-tracker/internal/settings"
	"github.com/spec-kit/npdi-tracker/internal/worker"
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

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongo.Close(context.Background()) //nolint:errcheck

	if err := mongo.CreateIndexes(ctx); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	db := mongo.Database()
	ticketRepo := repository.NewTicketRepository(db)
	prefsRepo := repository.NewPreferencesRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db, seedSettings(cfg))

	settingsProvider := settings.NewProvider(
		settingsRepo,
		settings.NewRedisCache(redis.Client),
		time.Duration(cfg.Defaults.SettingsTTLSec)*time.Second,
		nil,
	)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	enricher := enrichment.NewClient(cfg.Enrichment, settingsProvider, logger)
	reconcileClient := reconcile.NewClient(cfg.Reconciliation, settingsProvider, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokenManager)

	norm := normalizer.New(cfg.Defaults.SBU)
	validator := service.NewSubmissionValidator(templateRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Normalizer: norm,
		Validator:  validator,
		Enricher:   enricher,
		Gate:       settingsProvider,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(ticketRepo, logger)
	notificationService := service.NewNotificationService(settingsProvider, logger)
	userService := service.NewUserService(userRepo, tokenManager, cfg.Auth.BcryptCost, logger)
	prefsService := service.NewPreferencesService(prefsRepo)
	templateService := service.NewTemplateService(templateRepo)
	settingsService := service.NewSettingsService(settingsRepo, settingsProvider)

	worker.RegisterNotificationHandlers(dispatcher, notificationService)

	var publisher queue.Publisher
	if cfg.Queue.URL != "" {
		rabbit, err := queue.NewRabbitMQPublisher(cfg.Queue.URL)
		if err != nil {
			logger.Warn("event mirror disabled", zap.Error(err))
		} else {
			publisher = rabbit
			defer rabbit.Close() //nolint:errcheck
			worker.RegisterQueueMirror(dispatcher, publisher, logger)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService, dashboardService),
		Integrations:   handlers.NewIntegrationsHandler(enricher, reconcileClient),
		Users:          handlers.NewUsersHandler(userService),
		Preferences:    handlers.NewPreferencesHandler(prefsService),
		Templates:      handlers.NewTemplatesHandler(templateService),
		Settings:       handlers.NewSettingsHandler(settingsService),
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

// seedSettings builds the integration-settings document served before an
// admin saves one. Integrations with an endpoint configured in the
// environment start enabled.
func seedSettings(cfg *config.Config) domain.IntegrationSettings {
	return domain.IntegrationSettings{
		Enrichment: domain.EnrichmentSettings{
			Enabled: cfg.Enrichment.BaseURL != "",
			BaseURL: cfg.Enrichment.BaseURL,
		},
		Reconciliation: domain.ReconciliationSettings{
			Enabled:   cfg.Reconciliation.BaseURL != "",
			BaseURL:   cfg.Reconciliation.BaseURL,
			Warehouse: cfg.Reconciliation.Warehouse,
			Token:     cfg.Reconciliation.Token,
		},
		Notification: domain.NotificationSettings{
			Enabled:    cfg.Notification.WebhookURL != "",
			WebhookURL: cfg.Notification.WebhookURL,
		},
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
