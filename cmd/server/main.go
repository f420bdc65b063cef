package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	diningapp "github.com/restaurant/backend/internal/application/dining"
	financeapp "github.com/restaurant/backend/internal/application/finance"
	inventoryapp "github.com/restaurant/backend/internal/application/inventory"
	ledgerapp "github.com/restaurant/backend/internal/application/ledger"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	"github.com/restaurant/backend/internal/domain/inventory"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/auth"
	"github.com/restaurant/backend/internal/infrastructure/cache"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/restaurant/backend/internal/infrastructure/event"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/infrastructure/persistence"
	"github.com/restaurant/backend/internal/infrastructure/scheduler"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"github.com/restaurant/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Restaurant Financial Engine API
//	@version		1.0
//	@description	Orders, table sessions, shifts, stock and loyalty for multi-tenant restaurants

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.Telemetry.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			baseLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log := providers.BridgeLogger(baseLog)
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting restaurant backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.StartProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(ctx, &cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	meter := providers.Meter(cfg.Telemetry.ServiceName)
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		TraceEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:   cfg.Telemetry.DBLogFullSQL,
		DBName:       cfg.Database.DBName,
	}, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	// Left as a nil interface when Redis is off so the in-memory store is used.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr()))
		}
		defer func() { _ = client.Close() }()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)
	defer func() { _ = idempotencyStore.Close() }()
	idempotencyCfg := shared.DefaultIdempotencyConfig()
	idempotencyCfg.Enabled = cfg.Payment.IdempotencyEnabled
	if cfg.Payment.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Payment.IdempotencyTTL
	}

	eventBus := event.NewInMemoryEventBus(log)
	if redisClient != nil {
		eventBus.Subscribe(event.NewRedisNotifier(redisClient, log))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         meter,
		Logger:        log,
		FloorProvider: telemetry.NewGormFloorMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	tenants := telemetry.NewGormTenantProvider(db.DB)
	if cfg.Telemetry.Enabled {
		businessMetrics.StartPeriodicCollection(ctx, tenants, 0)
	}
	defer businessMetrics.Stop()

	txScope := persistence.NewGormTransactionScope(db.DB)
	policy := inventory.DeductionPolicy{
		AllowNegativeOnSale:   cfg.Inventory.AllowNegativeOnSale,
		AllowNegativeOnManual: cfg.Inventory.AllowNegativeOnManual,
	}

	orderService := orderingapp.NewOrderService(
		txScope,
		persistence.NewGormCatalogReader(db.DB),
		persistence.NewGormCouponValidator(db.DB),
		policy,
		log,
	)
	orderService.SetEventPublisher(eventBus)
	orderService.SetBusinessMetrics(businessMetrics)

	paymentService := orderingapp.NewPaymentService(txScope, log)
	paymentService.SetEventPublisher(eventBus)
	paymentService.SetBusinessMetrics(businessMetrics)
	paymentService.SetIdempotencyStore(idempotencyStore, idempotencyCfg)

	sessionService := diningapp.NewTableSessionService(txScope, log)
	sessionService.SetEventPublisher(eventBus)
	sessionService.SetGuestJoinURL(cfg.Dining.GuestJoinURL)

	shiftService := financeapp.NewShiftService(txScope, log)
	shiftService.SetEventPublisher(eventBus)
	shiftService.SetBusinessMetrics(businessMetrics)

	stockService := inventoryapp.NewStockService(txScope, policy, log)
	rebuildService := ledgerapp.NewRebuildService(txScope, log)

	auditScheduler := scheduler.NewLedgerAuditScheduler(scheduler.LedgerAuditConfig{
		Enabled: cfg.Ledger.AuditEnabled,
		Cron:    cfg.Ledger.AuditCron,
		Timeout: cfg.Ledger.AuditTimeout,
	}, rebuildService, tenants, log)
	if err := auditScheduler.Start(); err != nil {
		log.Fatal("Failed to start ledger audit scheduler", zap.Error(err))
	}
	defer func() {
		if err := auditScheduler.Stop(); err != nil {
			log.Error("Error stopping ledger audit scheduler", zap.Error(err))
		}
	}()

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	middleware.SetupValidator()
	engine, err := router.New(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Auth: middleware.AuthConfig{
			JWTService:          auth.NewJWTService(cfg.JWT),
			AllowHeaderIdentity: cfg.App.Env == "development",
		},
		Logger:             log,
		SwaggerEnabled:     cfg.Swagger.Enabled,
		SwaggerRequireAuth: cfg.Swagger.RequireAuth,
	}, router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, paymentService, log),
		Dining:    handler.NewDiningHandler(sessionService, log),
		Finance:   handler.NewFinanceHandler(shiftService, log),
		Inventory: handler.NewInventoryHandler(stockService, log),
		Ledger:    handler.NewLedgerHandler(rebuildService, log),
		Health:    handler.NewHealthHandler(sqlDB, auditScheduler, log),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
