package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"customer-analytics-system/internal/application/analytics"
	"customer-analytics-system/internal/domain/anomaly"
	"customer-analytics-system/internal/infrastructure/cache/redis"
	"customer-analytics-system/internal/infrastructure/database/postgres"
	"customer-analytics-system/internal/infrastructure/http/router"
	"customer-analytics-system/internal/interfaces/http/handler"
	"customer-analytics-system/internal/pkg/config"
	"customer-analytics-system/internal/pkg/logger"
	"customer-analytics-system/internal/pkg/metrics"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", version).Msg("starting customer analytics API")

	// Database connection
	dbClient, err := postgres.NewClient(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer dbClient.Close()
	log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Msg("connected to postgres")

	metricsRepo := postgres.NewMetricsRepository(dbClient)

	// Snapshot cache is optional: without Redis every request recomputes.
	var redisClient *redis.Client
	var snapshotCache analytics.SnapshotCache
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed, snapshot caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			snapshotCache = redis.NewSnapshotCache(redisClient, cfg.Redis.SnapshotTTL)
			log.Info().Str("host", cfg.Redis.Host).Int("port", cfg.Redis.Port).Msg("connected to redis")
		}
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Fatal().Err(err).Msg("metrics registration failed")
		}
	}

	// Application layer, tuned from the analytics config section
	provider := analytics.NewSnapshotProvider(metricsRepo, snapshotCache, log)
	dashboardUC := analytics.NewDashboardUseCase(provider, log)
	distributionUC := analytics.NewDistributionUseCase(provider, metricsRepo, log)
	timeSeriesUC := analytics.NewTimeSeriesUseCase(metricsRepo, log)
	timeSeriesUC.SetDefaultDays(cfg.Analytics.DefaultSeriesDays)
	peersUC := analytics.NewPeerComparisonUseCase(provider, log)
	alertsUC := analytics.NewRiskAlertUseCase(provider, log)
	alertsUC.SetDefaultLimit(cfg.Analytics.AlertLimit)
	forecastUC := analytics.NewForecastUseCase(provider, metricsRepo, log)
	forecastUC.SetDefaults(cfg.Analytics.ForecastTop, cfg.Analytics.ForecastHistoryDays)
	simulationUC := analytics.NewSimulationUseCase(provider, log)

	analyticsHandler := handler.NewAnalyticsHandler(
		dashboardUC,
		distributionUC,
		timeSeriesUC,
		peersUC,
		alertsUC,
		forecastUC,
		simulationUC,
	)
	analyticsHandler.SetFilterDefaults(cfg.Analytics.MinScore, anomaly.Severity(cfg.Analytics.MinSeverity))

	healthHandler := handler.NewHealthHandler(version)
	healthHandler.Register("database", dbClient)
	if redisClient != nil {
		healthHandler.Register("redis", redisClient)
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	r := router.NewRouter(analyticsHandler, healthHandler, metricsPath)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
