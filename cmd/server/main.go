package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/eventos/backend/internal/application/billing"
	crmapp "github.com/eventos/backend/internal/application/crm"
	notificationapp "github.com/eventos/backend/internal/application/notification"
	"github.com/eventos/backend/internal/domain/billing"
	"github.com/eventos/backend/internal/domain/shared"
	"github.com/eventos/backend/internal/infrastructure/auth"
	"github.com/eventos/backend/internal/infrastructure/cache"
	"github.com/eventos/backend/internal/infrastructure/config"
	"github.com/eventos/backend/internal/infrastructure/event"
	"github.com/eventos/backend/internal/infrastructure/logger"
	"github.com/eventos/backend/internal/infrastructure/notification"
	"github.com/eventos/backend/internal/infrastructure/persistence"
	"github.com/eventos/backend/internal/infrastructure/telemetry"
	"github.com/eventos/backend/internal/interfaces/http/handler"
	"github.com/eventos/backend/internal/interfaces/http/middleware"
	"github.com/eventos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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
		_ = log.Sync()
	}()

	log.Info("Starting Eventos Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Idempotency store (redis with in-memory fallback)
	idempotencyStore, err := cache.NewIdempotencyStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db)
	eventRepo := persistence.NewGormEventRepository(db)
	quoteRepo := persistence.NewGormQuoteRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	txManager := persistence.NewGormTxManager(db)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Notification dispatcher reacts to payment events
	if cfg.Notification.Enabled {
		emailAdapter, err := notification.NewEmailAdapter(&notification.EmailConfig{
			Endpoint:       cfg.Notification.EmailEndpoint,
			APIKey:         cfg.Notification.EmailAPIKey,
			From:           cfg.Notification.EmailFrom,
			RequestTimeout: cfg.Notification.RequestTimeout,
		})
		if err != nil {
			log.Fatal("Failed to create email adapter", zap.Error(err))
		}
		whatsappAdapter, err := notification.NewWhatsAppAdapter(&notification.WhatsAppConfig{
			BaseURL:        cfg.Notification.WhatsAppURL,
			Token:          cfg.Notification.WhatsAppToken,
			RequestTimeout: cfg.Notification.RequestTimeout,
		})
		if err != nil {
			log.Fatal("Failed to create whatsapp adapter", zap.Error(err))
		}

		dispatcher := notificationapp.NewDispatcher(
			quoteRepo, eventRepo, clientRepo,
			emailAdapter, whatsappAdapter,
			cfg.Notification.AdminPhone, log,
		)
		eventBus.Subscribe(dispatcher)
		log.Info("Notification dispatcher registered",
			zap.Strings("event_types", dispatcher.EventTypes()))
	}

	// Application services
	depositPolicy, err := billing.NewDepositPolicy(decimal.NewFromInt(int64(cfg.Billing.DepositPercent)))
	if err != nil {
		log.Fatal("Invalid deposit policy", zap.Error(err))
	}

	idemConfig := shared.IdempotencyConfig{
		TTL:     cfg.Idempotency.TTL,
		Enabled: cfg.Idempotency.Enabled,
	}

	summaryService := billingapp.NewSummaryService(quoteRepo, eventRepo, paymentRepo, depositPolicy)
	paymentService := billingapp.NewPaymentService(
		quoteRepo, eventRepo, paymentRepo,
		txManager, eventBus, idempotencyStore, idemConfig, log,
	)
	clientService := crmapp.NewClientService(clientRepo, log)
	eventService := crmapp.NewEventService(eventRepo, clientRepo, eventBus, summaryService, log)
	quoteService := crmapp.NewQuoteService(quoteRepo, eventRepo, eventBus, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	clientHandler := handler.NewClientHandler(clientService)
	eventHandler := handler.NewEventHandler(eventService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	paymentHandler := handler.NewPaymentHandler(paymentService, summaryService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Health endpoints live outside API versioning and authentication
	engine.GET("/health", healthHandler(db))
	engine.GET("/ready", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))

	// CRM domain (clients, events, quotes)
	crmRoutes := router.NewDomainGroup("crm", "/crm")

	crmRoutes.POST("/clients", clientHandler.Create)
	crmRoutes.GET("/clients", clientHandler.List)
	crmRoutes.GET("/clients/:id", clientHandler.Get)
	crmRoutes.PUT("/clients/:id", clientHandler.Update)
	crmRoutes.DELETE("/clients/:id", clientHandler.Delete)

	crmRoutes.POST("/events", eventHandler.Create)
	crmRoutes.GET("/events", eventHandler.List)
	crmRoutes.GET("/events/calendar", eventHandler.Calendar)
	crmRoutes.GET("/events/:id", eventHandler.Get)
	crmRoutes.PUT("/events/:id", eventHandler.Update)
	crmRoutes.POST("/events/:id/transition", eventHandler.Transition)
	crmRoutes.GET("/events/:id/quotes", quoteHandler.ListByEvent)

	crmRoutes.POST("/quotes", quoteHandler.Create)
	crmRoutes.GET("/quotes/:id", quoteHandler.Get)
	crmRoutes.PUT("/quotes/:id/lines", quoteHandler.UpdateLines)
	crmRoutes.POST("/quotes/:id/send", quoteHandler.Send)
	crmRoutes.POST("/quotes/:id/accept", quoteHandler.Accept)
	crmRoutes.POST("/quotes/:id/reject", quoteHandler.Reject)

	// Billing domain (payments, summaries)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/quotes/:id/payments", paymentHandler.Register)
	billingRoutes.GET("/quotes/:id/payments", paymentHandler.List)
	billingRoutes.GET("/quotes/:id/summary", paymentHandler.Summary)
	billingRoutes.POST("/payments/:id/cancel", paymentHandler.Cancel)
	billingRoutes.DELETE("/payments/:id", paymentHandler.Delete)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(crmRoutes).
		Register(billingRoutes).
		Register(systemRoutes)

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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
