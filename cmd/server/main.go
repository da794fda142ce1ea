package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/emedico/backend/internal/application/cart"
	catalogapp "github.com/emedico/backend/internal/application/catalog"
	chatapp "github.com/emedico/backend/internal/application/chat"
	"github.com/emedico/backend/internal/application/checkout"
	identityapp "github.com/emedico/backend/internal/application/identity"
	pharmacyapp "github.com/emedico/backend/internal/application/pharmacy"
	prescriptionapp "github.com/emedico/backend/internal/application/prescription"
	sessionapp "github.com/emedico/backend/internal/application/session"
	"github.com/emedico/backend/internal/domain/cart"
	"github.com/emedico/backend/internal/domain/identity"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/pharmacy"
	"github.com/emedico/backend/internal/domain/prescription"
	"github.com/emedico/backend/internal/domain/session"
	"github.com/emedico/backend/internal/infrastructure/auth"
	"github.com/emedico/backend/internal/infrastructure/cache"
	"github.com/emedico/backend/internal/infrastructure/config"
	"github.com/emedico/backend/internal/infrastructure/event"
	"github.com/emedico/backend/internal/infrastructure/logger"
	"github.com/emedico/backend/internal/infrastructure/migration"
	"github.com/emedico/backend/internal/infrastructure/ocr"
	"github.com/emedico/backend/internal/infrastructure/persistence"
	"github.com/emedico/backend/internal/infrastructure/persistence/memory"
	"github.com/emedico/backend/internal/infrastructure/printing"
	"github.com/emedico/backend/internal/infrastructure/scheduler"
	"github.com/emedico/backend/internal/infrastructure/storage"
	"github.com/emedico/backend/internal/infrastructure/telemetry"
	"github.com/emedico/backend/internal/interfaces/http/handler"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/emedico/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const storeName = "E-Medico"

// repositories groups the persistence adapters selected by database.driver
type repositories struct {
	carts         cart.CartRepository
	orders        order.OrderRepository
	prescriptions prescription.UploadRepository
	users         identity.UserRepository
	prefs         session.PreferenceStore
}

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
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry: traces, metrics and logs share one collector
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = telemetry.Bridge(log, loggerProvider, cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.App.Name,
		AuthToken:       cfg.Profiling.AuthToken,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.LinkProfiles()
	}

	log.Info("Starting E-Medico storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	// Database
	var db *persistence.Database
	if cfg.Database.Driver != "memory" {
		db, err = openDatabase(cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		log.Info("Database connected successfully")
	}

	// Redis backed stores fall back to process memory when Redis is absent
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		if redisClient, err = cacheFactory.Client(ctx); err != nil {
			log.Warn("Redis unreachable", zap.Error(err))
			redisClient = nil
		}
	}

	repos := newRepositories(ctx, cfg, db, cacheFactory, log)

	states, err := cacheFactory.CreateStateRepository(ctx, cfg.Session.IdleTimeout)
	if err != nil {
		log.Fatal("Failed to create session state store", zap.Error(err))
	}
	idempotency, err := cacheFactory.CreateIdempotencyStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	if closer, ok := idempotency.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}
	blacklist, err := cacheFactory.CreateTokenBlacklist(ctx)
	if err != nil {
		log.Fatal("Failed to create token blacklist", zap.Error(err))
	}

	objectStorage, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	var storefrontMetrics *telemetry.StorefrontMetrics
	if meterProvider.IsEnabled() {
		storefrontMetrics, err = telemetry.NewStorefrontMetrics(meterProvider.Meter("emedico-storefront"))
		if err != nil {
			log.Warn("Storefront metrics unavailable", zap.Error(err))
		}
	}

	// Initialize event bus
	eventBus := event.NewLocalBus(log)

	// Initialize application services
	medicines := memory.NewMedicineRepository(nil)
	catalogService := catalogapp.NewService(medicines)
	pharmacyService := pharmacyapp.NewService(pharmacy.Seed())

	sessionService := sessionapp.NewService(states, repos.prefs, log)
	sessionService.SetMetrics(storefrontMetrics)

	cartService := cartapp.NewService(repos.carts, medicines, log)
	cartService.SetEventPublisher(eventBus)
	cartService.SetMetrics(storefrontMetrics)

	prescriptionService := prescriptionapp.NewService(
		repos.prescriptions,
		objectStorage,
		ocr.NewSimulatedExtractor(),
		cfg.Storage.PreviewURLTTL,
		log,
	)
	prescriptionService.SetMetrics(storefrontMetrics)

	checkoutService := checkout.NewService(
		repos.orders,
		cartService,
		prescriptionService,
		idempotency,
		checkout.Config{IdempotencyTTL: cfg.Checkout.IdempotencyTTL},
		log,
	)
	checkoutService.SetEventPublisher(eventBus)
	checkoutService.SetMetrics(storefrontMetrics)

	if cfg.Printing.Enabled {
		renderer := printing.NewChrome(printing.ChromeConfig{
			Timeout:   cfg.Printing.Timeout,
			ExecPath:  cfg.Printing.ChromePath,
			NoSandbox: os.Geteuid() == 0,
		}, log.Named("chrome"))
		defer func() { _ = renderer.Close() }()
		checkoutService.SetReceiptPrinter(printing.NewReceiptPrinter(renderer, storeName))
		log.Info("Receipt printing enabled")
	}

	chatService := chatapp.NewService(cfg.Chat.ReplyDelay, log)
	chatService.SetMetrics(storefrontMetrics)

	// Session teardown releases everything keyed by the session
	sessionService.OnClose(func(_ context.Context, sessionID string) {
		chatService.Close(sessionID)
	})
	sessionService.OnClose(func(ctx context.Context, sessionID string) {
		if err := cartService.Discard(ctx, sessionID); err != nil {
			log.Warn("Failed to discard cart", zap.String("session_id", sessionID), zap.Error(err))
		}
	})
	sessionService.OnClose(func(ctx context.Context, sessionID string) {
		if err := prescriptionService.Clear(ctx, sessionID); err != nil {
			log.Warn("Failed to clear prescription", zap.String("session_id", sessionID), zap.Error(err))
		}
	})

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(repos.users, jwtService, blacklist, eventBus, identityapp.DefaultLockout(), log)

	// Register event handlers. A placed order clears its cart exactly once.
	eventBus.Subscribe(event.NewIdempotentHandler(
		"cart.clear-on-order",
		cartapp.NewOrderPlacedHandler(cartService, log),
		idempotency,
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Redis expires idle state by TTL; in-memory state needs a sweeper
	var sweeper *scheduler.SessionSweeper
	if finder, ok := states.(scheduler.IdleFinder); ok {
		sweeper = scheduler.NewSessionSweeper(scheduler.SweeperConfig{
			IdleTimeout:   cfg.Session.IdleTimeout,
			CheckInterval: cfg.Session.SweepInterval,
		}, finder, sessionService, log)
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("Failed to start session sweeper", zap.Error(err))
		}
	}

	// Initialize Gin
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	var httpMeter metric.Meter
	if meterProvider.IsEnabled() {
		httpMeter = meterProvider.Meter("http.server")
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Origins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.Methods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.Headers = cfg.HTTP.CORSAllowHeaders
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTS = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()),
		middleware.HTTPMetrics(httpMeter, log),
		middleware.ProfileLabels(profiler.IsEnabled()),
		middleware.CORS(corsCfg),
		middleware.Secure(securityCfg),
		middleware.ClientID(middleware.ClientIDConfig{Secure: cfg.App.IsProduction()}),
		logger.AccessLog(log),
		middleware.SpanIdentity(),
		middleware.SpanStatus(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if cfg.HTTP.RateLimitEnabled {
		limiter := newLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, "ratelimit:api:")
		engine.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{Limiter: limiter, Logger: log}))
	}

	// Health probes live outside the versioned API
	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion)
	if db != nil {
		systemHandler.AddCheck("database", db.Ping)
	}
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	chatCfg := handler.DefaultChatHandlerConfig()
	chatCfg.AllowedOrigins = cfg.HTTP.CORSAllowOrigins

	handlers := router.Handlers{
		System:       systemHandler,
		Session:      handler.NewSessionHandler(sessionService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		Pharmacy:     handler.NewPharmacyHandler(pharmacyService),
		Cart:         handler.NewCartHandler(cartService),
		Order:        handler.NewOrderHandler(checkoutService),
		Prescription: handler.NewPrescriptionHandler(prescriptionService),
		Chat:         handler.NewChatHandler(chatService, chatCfg),
		Auth:         handler.NewAuthHandler(authService),
	}
	authn := middleware.NewAuthenticator(jwtService, blacklist, log)
	guards := router.Guards{
		Session:      middleware.RequireSession(sessionService, "id"),
		Auth:         authn.Require(),
		OptionalAuth: authn.Optional(),
		Upload:       middleware.BodyLimit(prescription.MaxFileSize + 1<<20),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := newLimiter(redisClient, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow, "ratelimit:auth:")
		guards.AuthRateLimit = middleware.AuthRateLimit(authLimiter)
	}

	for _, route := range router.Mount(engine, router.StorefrontGroups(handlers, guards)...) {
		log.Debug("route mounted",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Close chat sockets first; hijacked connections are not drained by srv.Shutdown
	if err := chatService.Shutdown(shutdownCtx); err != nil {
		log.Warn("Chat shutdown incomplete", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			log.Warn("Session sweeper stop timed out", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stopped with pending events", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	// flushed last so the shutdown records above are exported
	_ = loggerProvider.Shutdown(shutdownCtx)
}

// openDatabase connects GORM and brings the schema up to date. SQLite uses
// AutoMigrate; PostgreSQL runs the embedded SQL migrations.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}

	dbSystem := "sqlite"
	if cfg.Database.Driver == "postgres" {
		dbSystem = "postgresql"
	}
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   dbSystem,
	}, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	if !cfg.Database.AutoMigrate {
		return db, nil
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	migrator, err := migration.New(sqlDB, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	// the migrator shares sqlDB, so it is not closed here
	if err := migrator.Up(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newRepositories picks GORM repositories when a database is configured and
// in-memory ones otherwise.
func newRepositories(ctx context.Context, cfg *config.Config, db *persistence.Database, factory *cache.Factory, log *zap.Logger) repositories {
	var repos repositories
	if db != nil {
		repos = repositories{
			carts:         persistence.NewGormCartRepository(db.DB),
			orders:        persistence.NewGormOrderRepository(db.DB),
			prescriptions: persistence.NewGormPrescriptionRepository(db.DB),
			users:         persistence.NewGormUserRepository(db.DB),
		}
	} else {
		repos = repositories{
			carts:         memory.NewCartRepository(),
			orders:        memory.NewOrderRepository(),
			prescriptions: memory.NewPrescriptionRepository(),
			users:         memory.NewUserRepository(),
		}
	}

	switch cfg.Session.PreferenceStore {
	case "database":
		if db != nil {
			repos.prefs = persistence.NewGormPreferenceStore(db.DB)
		}
	case "redis":
		prefs, err := factory.CreatePreferenceStore(ctx)
		if err != nil {
			log.Fatal("Failed to create preference store", zap.Error(err))
		}
		repos.prefs = prefs
	}
	if repos.prefs == nil {
		repos.prefs = memory.NewPreferenceStore()
	}
	log.Info("Preference store selected", zap.String("store", cfg.Session.PreferenceStore))
	return repos
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (prescriptionapp.ImageStore, error) {
	if cfg.Storage.Driver != "s3" {
		log.Info("Prescription images kept in memory")
		return storage.NewMemoryStore(), nil
	}

	s3Storage, err := storage.NewS3Store(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Prescription images stored in S3", zap.String("bucket", s3Storage.Bucket()))
	return s3Storage, nil
}

// newLimiter shares counters through Redis when it is available
func newLimiter(client *redis.Client, limit int, window time.Duration, prefix string) middleware.Limiter {
	if client != nil {
		return cache.NewRedisRateLimiter(client, limit, window, prefix)
	}
	return middleware.NewRateLimiter(limit, window)
}
