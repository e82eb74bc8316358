package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/biashara/backend/internal/application/audit"
	appidentity "github.com/biashara/backend/internal/application/identity"
	appsales "github.com/biashara/backend/internal/application/sales"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/sales"
	"github.com/biashara/backend/internal/infrastructure/auth"
	"github.com/biashara/backend/internal/infrastructure/cache"
	"github.com/biashara/backend/internal/infrastructure/config"
	"github.com/biashara/backend/internal/infrastructure/event"
	"github.com/biashara/backend/internal/infrastructure/logger"
	"github.com/biashara/backend/internal/infrastructure/notification"
	"github.com/biashara/backend/internal/infrastructure/payment"
	"github.com/biashara/backend/internal/infrastructure/persistence"
	"github.com/biashara/backend/internal/interfaces/http/handler"
	"github.com/biashara/backend/internal/interfaces/http/middleware"
	"github.com/biashara/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Biashara Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	orderRepo := persistence.NewGormPaymentOrderRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store (Redis when enabled, in-memory fallback)
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Notification dispatcher
	var notifier sales.Notifier
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		notifier = notification.NewRedisDispatcher(redisClient, cfg.Notification.QueueName, cfg.Notification.Sender)
	} else {
		notifier = notification.NewNopDispatcher(log)
	}

	// Payment provider adapters
	providers := make([]sales.WebhookProvider, 0, 2)
	if cfg.Payment.FlutterwaveSecretHash != "" {
		fw, err := payment.NewFlutterwaveAdapter(&payment.FlutterwaveConfig{
			SecretHash: cfg.Payment.FlutterwaveSecretHash,
		})
		if err != nil {
			log.Fatal("Failed to create Flutterwave adapter", zap.Error(err))
		}
		providers = append(providers, fw)
	}
	if cfg.Payment.PaystackSecretKey != "" {
		ps, err := payment.NewPaystackAdapter(&payment.PaystackConfig{
			SecretKey: cfg.Payment.PaystackSecretKey,
		})
		if err != nil {
			log.Fatal("Failed to create Paystack adapter", zap.Error(err))
		}
		providers = append(providers, ps)
	}
	if len(providers) == 0 {
		log.Warn("No payment providers configured, webhook endpoints will reject deliveries")
	}

	// Application services
	recorder := appaudit.NewRecorder(auditRepo, log)
	orgService := appidentity.NewOrganizationService(orgRepo, memberRepo, eventBus, log)
	accessService := appidentity.NewAccessService(orgRepo, memberRepo, log)
	settingsService := appidentity.NewSettingsService(orgRepo, memberRepo, recorder, eventBus, log)
	eventBus.Subscribe(appaudit.NewTrailSubscriber(recorder))
	webhookService := appsales.NewWebhookService(appsales.WebhookServiceConfig{
		Providers:        providers,
		OrderRepo:        orderRepo,
		StoreRepo:        storeRepo,
		Notifier:         notifier,
		IdempotencyStore: idempotencyStore,
		EventPublisher:   eventBus,
		Recorder:         recorder,
		Logger:           log,
	})

	// Session verification
	sessionVerifier := auth.NewSessionVerifier(cfg.Session)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.RequestMeta(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	sessionMW := middleware.Session(sessionVerifier, orgService, log)
	settingsGate := middleware.RequireModuleWithConfig(middleware.GateConfig{
		Access:          accessService,
		Logger:          log,
		RedirectOnDeny:  cfg.Gate.RedirectOnDeny,
		DenyRedirectURL: cfg.Gate.DenyRedirectURL,
		OnboardingURL:   cfg.Gate.OnboardingURL,
	}, identity.ModuleSettings)
	settingsWriteGate := middleware.RequireCapability(accessService, log, identity.CapabilitySettingsWrite)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(router.SystemRoutes{Handler: handler.NewSystemHandler(db.DB)})
	r.Register(router.WebhookRoutes{Handler: handler.NewWebhookHandler(webhookService, log)})
	r.Register(router.AccessRoutes{Handler: handler.NewAccessHandler(accessService), Session: sessionMW})
	r.Register(router.SettingsRoutes{
		Handler:        handler.NewSettingsHandler(settingsService),
		Session:        sessionMW,
		Gate:           settingsGate,
		CapabilityGate: settingsWriteGate,
	})
	r.Register(router.AuditRoutes{Handler: handler.NewAuditHandler(recorder), Session: sessionMW, Gate: settingsGate})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
