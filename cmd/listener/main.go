package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/application/listener"
	"github.com/sheetflow/listener/internal/domain/shared"
	"github.com/sheetflow/listener/internal/infrastructure/cache"
	"github.com/sheetflow/listener/internal/infrastructure/config"
	"github.com/sheetflow/listener/internal/infrastructure/event"
	"github.com/sheetflow/listener/internal/infrastructure/logger"
	"github.com/sheetflow/listener/internal/infrastructure/mail"
	"github.com/sheetflow/listener/internal/infrastructure/persistence"
	"github.com/sheetflow/listener/internal/infrastructure/platform"
	"github.com/sheetflow/listener/internal/infrastructure/storage"
	"github.com/sheetflow/listener/internal/infrastructure/telemetry"
	"github.com/sheetflow/listener/internal/interfaces/http/handler"
	"github.com/sheetflow/listener/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sheetflow listener",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracer, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize the delivery journal database
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	journal := persistence.NewGormDeliveryJournal(db.DB)
	log.Info("Delivery journal ready", zap.String("driver", cfg.Database.Driver))

	// Initialize the idempotency store
	var store shared.IdempotencyStore
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = redisStore
		log.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.RedisAddr()))
	} else {
		store = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize the platform client and egress adapters
	api := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.APIToken, log,
		platform.WithTimeout(cfg.Platform.Timeout))
	sender := mail.NewGomailSender(cfg.Mail.Host, cfg.Mail.Port, log)

	var archiver listener.Archiver
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Archiver(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize archive storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure archive bucket", zap.Error(err))
		}
		archiver = s3
		log.Info("CSV archival enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	idempotency := shared.IdempotencyConfig{
		Enabled: cfg.Event.IdempotencyEnabled,
		TTL:     cfg.Event.IdempotencyTTL,
	}
	wrap := func(h shared.EventHandler) shared.EventHandler {
		return event.NewIdempotentHandler(h, store, log,
			event.WithIdempotencyConfig(idempotency))
	}

	workspaceHandler := listener.NewWorkspaceConfigureHandler(api, journal, log)
	authorHandler := listener.NewAuthorValidatorHandler(api, journal, log, cfg.Transform.MaxRecordErrors)
	purchaseHandler := listener.NewPurchaseOrderHandler(api, sender, journal, listener.PurchaseOrderConfig{
		InventorySlug:   cfg.Transform.InventorySlug,
		OrdersSlug:      cfg.Transform.OrdersSlug,
		TriggerJobKind:  cfg.Transform.TriggerJobKind,
		ReorderTarget:   cfg.Transform.ReorderTarget,
		Recipient:       cfg.Mail.Recipient,
		MaxRecordErrors: cfg.Transform.MaxRecordErrors,
	}, log)
	if archiver != nil {
		purchaseHandler.WithArchiver(archiver)
	}

	eventBus.Subscribe(wrap(workspaceHandler))
	eventBus.Subscribe(wrap(authorHandler))
	eventBus.Subscribe(wrap(purchaseHandler))

	log.Info("Event handlers registered",
		zap.Strings("workspace_configure_events", workspaceHandler.EventTypes()),
		zap.Strings("author_validator_events", authorHandler.EventTypes()),
		zap.Strings("purchase_order_events", purchaseHandler.EventTypes()),
		zap.Bool("idempotency_enabled", idempotency.Enabled),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize HTTP surface
	webhookHandler := handler.NewWebhookHandler(eventBus, log)
	systemHandler := handler.NewSystemHandler(journal)

	engine := router.New(router.Config{
		HTTP:             cfg.HTTP,
		Env:              cfg.App.Env,
		TelemetryEnabled: cfg.Telemetry.Enabled,
	}, webhookHandler, systemHandler, log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
