package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/p2p_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/p2p_ledger/internal/adapters/notify"
	"github.com/SscSPs/p2p_ledger/internal/adapters/rates"
	portsrepo "github.com/SscSPs/p2p_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/p2p_ledger/internal/core/services"
	"github.com/SscSPs/p2p_ledger/internal/handlers"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/SscSPs/p2p_ledger/internal/observability"
	"github.com/SscSPs/p2p_ledger/pkg/cache"
	"github.com/SscSPs/p2p_ledger/pkg/config"
	"github.com/SscSPs/p2p_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @title P2P Ledger API
// @version 1.0
// @description Peer-to-peer fiat and crypto transfers between wallets.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	repos, dbCheck, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	rateSource, closeRates := setupRateSource(ctx, cfg, metrics, logger)
	defer closeRates()

	dispatcher, closeNotifiers := setupNotifications(cfg, repos, metrics, logger)
	defer closeNotifiers()

	container := services.NewServiceContainer(cfg, repos, rateSource, dispatcher, metrics)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiterInstance, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to create rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, handlers.RouteOptions{
		TransferLimit: middleware.RateLimit(limiterInstance),
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthCheck:   dbCheck,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("ledger_backend", cfg.LedgerBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
	// let in-flight notifications drain before sinks close
	dispatcher.Wait()
}

// setupRepositories builds the storage backend. The returned health check is nil unless
// ENABLE_DB_CHECK is set for the postgres backend.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(context.Context) error, func(), error) {
	if cfg.LedgerBackend == config.BackendMemory {
		logger.Warn("Using in-memory ledger; data is lost on restart")
		store := memory.NewStore()
		return portsrepo.RepositoryProvider{
			AccountRepo:      store,
			Ledger:           store,
			TransferRepo:     store,
			NotificationRepo: store,
		}, nil, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, nil, err
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		database.ClosePgxPool(dbPool)
		return portsrepo.RepositoryProvider{}, nil, nil, err
	}

	var check func(context.Context) error
	if cfg.EnableDBCheck {
		check = dbPool.Ping
	}
	return pgsql.NewRepositoryProvider(dbPool), check, func() { database.ClosePgxPool(dbPool) }, nil
}

func setupRateSource(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*rates.CachedSource, func()) {
	provider := rates.NewFrankfurterProvider(cfg.RatesBaseURL, rates.NewHTTPClient(cfg.RatesFetchTimeout))
	opts := []rates.CacheOption{
		rates.WithTTL(cfg.RatesTTL),
		rates.WithMaxStaleness(cfg.RatesMaxStaleness),
		rates.WithFetchTimeout(cfg.RatesFetchTimeout),
		rates.WithMetrics(metrics),
		rates.WithLogger(logger),
	}

	closer := func() {}
	if cfg.RedisURL != "" {
		client, closeRedis, err := cache.New(ctx, cache.Config{URL: cfg.RedisURL})
		if err != nil {
			// the cache still works per instance without the shared snapshot
			logger.Warn("Redis unavailable, rate snapshots will not be shared", slog.String("error", err.Error()))
		} else {
			opts = append(opts, rates.WithSnapshotStore(rates.NewRedisSnapshotStore(client, cfg.RedisRatesKey, cfg.RatesMaxStaleness)))
			closer = closeRedis
		}
	}
	return rates.NewCachedSource(provider, opts...), closer
}

func setupNotifications(cfg *config.Config, repos portsrepo.RepositoryProvider, metrics *observability.Metrics, logger *slog.Logger) (*notify.Dispatcher, func()) {
	sinks := []notify.Sink{
		{Name: "store", Notifier: notify.NewStoreNotifier(repos.NotificationRepo)},
		{Name: "log", Notifier: notify.LogNotifier{}},
	}

	closer := func() {}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaNotificationTopic != "" {
		kafkaNotifier := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaNotificationTopic, logger))
		sinks = append(sinks, notify.Sink{Name: "kafka", Notifier: kafkaNotifier})
		closer = func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Error("Failed to close kafka writer", slog.String("error", err.Error()))
			}
		}
		logger.Info("Publishing transfer events to kafka", slog.String("topic", cfg.KafkaNotificationTopic))
	}

	return notify.NewDispatcher(notify.NewFanout(metrics, sinks...), cfg.NotificationTimeout), closer
}
