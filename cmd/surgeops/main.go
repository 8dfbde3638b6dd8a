package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/portstack/surgeops/internal/api"
	"github.com/portstack/surgeops/internal/cache"
	"github.com/portstack/surgeops/internal/config"
	"github.com/portstack/surgeops/internal/dashboard"
	"github.com/portstack/surgeops/internal/engine"
	"github.com/portstack/surgeops/internal/generator"
	"github.com/portstack/surgeops/internal/metrics"
	"github.com/portstack/surgeops/internal/models"
	"github.com/portstack/surgeops/internal/mq"
	"github.com/portstack/surgeops/internal/patterns"
	"github.com/portstack/surgeops/internal/repo"
	"github.com/portstack/surgeops/internal/services"
	"github.com/portstack/surgeops/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting surgeops",
		slog.String("grpc_address", cfg.Server.Address),
		slog.String("http_address", cfg.HTTP.Address),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewRedisProvider(cache.RedisConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DB:           cfg.Cache.DB,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			MaxRetries:   cfg.Cache.MaxRetries,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("redis cache unavailable, running without shared state", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	var history repo.HistoryRepo
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := repo.OpenPostgres(ctx, cfg.Storage.DSN, cfg.Storage.MaxConns)
		if err != nil {
			logger.Error("failed to open postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := repo.RunMigrations(ctx, pool); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		history = repo.NewPostgresStore(pool)
	default:
		history = repo.NewMemoryStore(cfg.Storage.HistoryLimit)
	}

	genOpts := []generator.Option{
		generator.WithBaseline(cfg.Generator.Baseline),
		generator.WithLocation(cfg.Generator.Location),
	}
	if cfg.Generator.Seed != 0 {
		genOpts = append(genOpts, generator.WithSeed(cfg.Generator.Seed))
	}
	gen, err := generator.New(genOpts...)
	if err != nil {
		logger.Error("failed to build generator", slog.Any("error", err))
		os.Exit(1)
	}

	ruleEngine, err := engine.NewRuleEngine(cfg.Rules.Path, logger)
	if err != nil {
		logger.Error("failed to load rule pack", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("rule pack loaded", slog.String("path", cfg.Rules.Path), slog.Int("rules", ruleEngine.Len()))

	th := cfg.Dashboard.Thresholds
	detector := engine.NewDetector(engine.Thresholds{
		RaiseWaiting:  th.RaiseWaiting,
		RaiseCritical: th.RaiseCritical,
		ClearWaiting:  th.ClearWaiting,
		ClearCritical: th.ClearCritical,
	})
	planBuilder := engine.NewPlanBuilder(logger, ruleEngine, engine.WithSpikeThreshold(cfg.Dashboard.SpikeThreshold))

	dashOpts := []dashboard.Option{
		dashboard.WithConfig(dashboard.Config{
			RefreshInterval:  cfg.Dashboard.RefreshInterval,
			SurgeDecay:       cfg.Dashboard.SurgeDecay,
			AutoOpenPlan:     cfg.Dashboard.AutoOpenPlan,
			SubscriberBuffer: cfg.Dashboard.SubscriberBuffer,
			SpikeThreshold:   cfg.Dashboard.SpikeThreshold,
			Location:         cfg.Generator.Location,
			SnapshotTTL:      cfg.Cache.SnapshotTTL,
		}),
		dashboard.WithLogger(logger),
		dashboard.WithDetector(detector),
		dashboard.WithPlanBuilder(planBuilder),
		dashboard.WithHistory(history),
		dashboard.WithCache(cacheProvider),
	}
	if cfg.Weather.Provider == "open-meteo" {
		weather := repo.NewOpenMeteoClient(repo.OpenMeteoConfig{
			GeocodingURL: cfg.Weather.GeocodingURL,
			ForecastURL:  cfg.Weather.ForecastURL,
			Timeout:      cfg.Weather.Timeout,
			Recency:      cfg.Weather.Recency,
		}, cacheProvider, logger)
		dashOpts = append(dashOpts, dashboard.WithWeather(weather))
		logger.Info("live weather enabled", slog.String("location", cfg.Generator.Location))
	}
	if len(cfg.Events.Brokers) > 0 {
		publisher := mq.NewPublisher(cfg.Events.Brokers, cfg.Events.SnapshotTopic, cfg.Events.TransitionTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka publisher close", slog.Any("error", err))
			}
		}()
		dashOpts = append(dashOpts, dashboard.WithPublisher(publisher))
		logger.Info("kafka publishing enabled", slog.Any("brokers", cfg.Events.Brokers))
	}

	dash, err := dashboard.New(gen, dashOpts...)
	if err != nil {
		logger.Error("failed to build dashboard", slog.Any("error", err))
		os.Exit(1)
	}

	miner := patterns.NewMiner(logger, patterns.StoreFunc(func(ctx context.Context, found []models.SurgePattern) error {
		data, err := json.Marshal(found)
		if err != nil {
			return err
		}
		return cacheProvider.Set(ctx, cache.KeyPatterns, data, time.Hour)
	}))

	server, err := api.NewServer(cfg.Server, services.NewSurgeService(logger, dash))
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	dashDone := make(chan struct{})
	go func() {
		defer close(dashDone)
		if err := dash.Run(ctx); err != nil {
			logger.Error("dashboard scheduler exited", slog.Any("error", err))
			stop()
		}
	}()
	// Requests must reach the scheduler so surge decay is armed.
	select {
	case <-dash.Started():
	case <-dashDone:
	}

	var httpServer *http.Server
	if cfg.HTTP.Address != "" {
		httpServer = &http.Server{
			Addr: cfg.HTTP.Address,
			Handler: api.NewHTTPHandler(dash, miner, logger, api.HTTPOptions{
				RequestTimeout: cfg.HTTP.RequestTimeout,
				PatternWindow:  cfg.Storage.HistoryLimit,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("http server listening", slog.String("address", cfg.HTTP.Address))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("grpc server listening", slog.String("address", server.Address()))
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("gRPC server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("http server shutdown", slog.Any("error", err))
		}
	}

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	select {
	case <-dashDone:
	case <-shutdownCtx.Done():
		logger.Warn("dashboard scheduler did not stop in time")
	}
	logger.Info("surgeops stopped")
}
