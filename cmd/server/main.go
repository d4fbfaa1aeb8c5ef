package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/profitalyze/backend/internal/application/catalog"
	predictionapp "github.com/profitalyze/backend/internal/application/prediction"
	reportapp "github.com/profitalyze/backend/internal/application/report"
	"github.com/profitalyze/backend/internal/infrastructure/cache"
	"github.com/profitalyze/backend/internal/infrastructure/config"
	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/infrastructure/persistence"
	"github.com/profitalyze/backend/internal/infrastructure/scoring"
	"github.com/profitalyze/backend/internal/infrastructure/storage"
	"github.com/profitalyze/backend/internal/infrastructure/telemetry"
	"github.com/profitalyze/backend/internal/interfaces/http/handler"
	"github.com/profitalyze/backend/internal/interfaces/http/middleware"
	"github.com/profitalyze/backend/internal/interfaces/http/router"
)

//	@title			Profitalyze API
//	@version		1.0
//	@description	Deal profitability analytics and margin prediction for an e-commerce catalog

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OTLP log export tees into the base logger when enabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Profitalyze backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.TracingEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfilesEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThresh))

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.TracingEnabled && cfg.Telemetry.DBTracingEnabled,
		LogFullSQL:      !cfg.IsProduction(),
		SlowQueryThresh: cfg.Database.SlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Database.SlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	httpMetrics, err := telemetry.NewHTTPMetrics(meterProvider.Meter("http.server"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	predictionMetrics, err := telemetry.NewPredictionMetrics(meterProvider.Meter("prediction"))
	if err != nil {
		log.Fatal("Failed to create prediction metrics", zap.Error(err))
	}

	var reportMetrics *telemetry.ReportMetrics
	if meterProvider.IsEnabled() {
		reportMetrics, err = telemetry.NewReportMetrics(telemetry.ReportMetricsConfig{
			Meter:           meterProvider.Meter("reports"),
			Logger:          log,
			CollectInterval: cfg.Telemetry.StatsInterval,
			StatsProvider:   telemetry.NewGormDatasetStatsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to create report metrics", zap.Error(err))
		}
		reportMetrics.StartPeriodicCollection(ctx)
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	dealImpactRepo := persistence.NewGormDealImpactRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)

	// Deal impact service with optional cache and export storage
	dealImpactOpts := []reportapp.DealImpactOption{
		reportapp.WithReportMetrics(reportMetrics),
		reportapp.WithLogger(log),
	}

	if cfg.Cache.Enabled {
		reportCache, err := cache.NewReportCacheFactory(cfg.Redis, cfg.Cache, cache.WithLogger(log)).CreateCache()
		if err != nil {
			log.Fatal("Failed to create report cache", zap.Error(err))
		}
		defer func() {
			if err := reportCache.Close(); err != nil {
				log.Error("Error closing report cache", zap.Error(err))
			}
		}()
		dealImpactOpts = append(dealImpactOpts, reportapp.WithReportCache(reportCache, cfg.Cache.TTL))
		log.Info("Report cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	if cfg.Storage.Enabled {
		exportStorage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create export storage", zap.Error(err))
		}
		if err := exportStorage.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare export bucket", zap.Error(err))
		}
		dealImpactOpts = append(dealImpactOpts,
			reportapp.WithExportStorage(exportStorage, cfg.Storage.ExportPrefix, cfg.Storage.PresignExpiration))
		log.Info("Report export enabled", zap.String("bucket", exportStorage.GetBucket()))
	}

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo)
	dealImpactService, err := reportapp.NewDealImpactService(dealImpactRepo, cfg.Analysis, dealImpactOpts...)
	if err != nil {
		log.Fatal("Invalid analysis defaults", zap.Error(err))
	}
	analyticsService := reportapp.NewAnalyticsService(analyticsRepo, reportMetrics)
	predictor := scoring.NewScriptPredictor(&cfg.Prediction,
		scoring.WithLogger(log),
		scoring.WithMetrics(predictionMetrics),
	)
	predictionService := predictionapp.NewService(predictor)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Products:   handler.NewProductHandler(productService),
		DealImpact: handler.NewDealImpactHandler(dealImpactService),
		Prediction: handler.NewPredictionHandler(predictionService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
	}
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request id must exist before tracing and
	// logging read it, and metrics see the status written by recovery.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.TracingEnabled,
	}))
	engine.Use(middleware.SpanAnnotator())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(httpMetrics))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Profiling())

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness endpoints stay outside the API prefix and the rate limit
	engine.GET("/", systemHandler.Root)
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	if rateLimiter != nil {
		r.Use(middleware.RateLimit(rateLimiter))
	}
	router.RegisterAPI(r, handlers).Setup()

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

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if reportMetrics != nil {
		reportMetrics.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
