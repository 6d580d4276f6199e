package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/alert"
	"github.com/arbitragex/arbfeed/internal/feed"
	"github.com/arbitragex/arbfeed/internal/storage"
	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/internal/view"
	"github.com/arbitragex/arbfeed/pkg/cache"
	"github.com/arbitragex/arbfeed/pkg/config"
	"github.com/arbitragex/arbfeed/pkg/healthprobe"
	"github.com/arbitragex/arbfeed/pkg/httpserver"
	"github.com/arbitragex/arbfeed/pkg/websocket"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	throttleCache, err := setupThrottleCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup throttle cache: %w", err)
	}

	notifier := setupNotifier(cfg, logger, throttleCache)

	sink, err := setupSink(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup history sink: %w", err)
	}

	oppStore := setupStore(cfg, logger)
	wsManager := setupWebSocketManager(cfg, logger)
	engine := setupEngine(cfg, logger, healthChecker, oppStore, notifier, sink, wsManager)
	healthChecker.SetFeedProbe(engine.Connected)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, oppStore, engine)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		wsManager:     wsManager,
		engine:        engine,
		notifier:      notifier,
		oppStore:      oppStore,
		sink:          sink,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupThrottleCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (1000 opportunities)
		MaxCost:     1000,  // Maximum 1000 items in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupNotifier(cfg *config.Config, logger *zap.Logger, throttle cache.Cache) *alert.Notifier {
	return alert.New(alert.Config{
		ThrottleWindow: cfg.AlertThrottleWindow,
		BufferSize:     cfg.AlertBufferSize,
		Throttle:       throttle,
		Logger:         logger,
	})
}

func setupSink(cfg *config.Config, logger *zap.Logger) (storage.Sink, error) {
	switch strings.ToLower(cfg.HistoryMode) {
	case "postgres":
		sink, err := storage.NewPostgresSink(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres sink: %w", err)
		}
		return sink, nil
	case "console":
		return storage.NewConsoleSink(logger), nil
	default:
		// History recording disabled; the engine tolerates a nil sink.
		return nil, nil
	}
}

func setupStore(cfg *config.Config, logger *zap.Logger) *store.Store {
	return store.New(store.Config{
		ExpiringWindow:   cfg.FeedExpiringWindow,
		ExpiryThreshold:  cfg.FeedExpiryThreshold,
		MaxOpportunities: cfg.FeedMaxOpportunities,
		Logger:           logger,
	})
}

func setupWebSocketManager(cfg *config.Config, logger *zap.Logger) *websocket.Manager {
	return websocket.New(websocket.Config{
		URL:                   cfg.FeedWSURL,
		AuthToken:             cfg.FeedAuthToken,
		DialTimeout:           cfg.WSDialTimeout,
		PongTimeout:           cfg.WSPongTimeout,
		PingInterval:          cfg.WSPingInterval,
		ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
		ReconnectMaxAttempts:  cfg.WSReconnectMaxAttempts,
		SignalBufferSize:      cfg.WSSignalBufferSize,
		Logger:                logger,
	})
}

func setupEngine(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	oppStore *store.Store,
	notifier *alert.Notifier,
	sink storage.Sink,
	wsManager *websocket.Manager,
) *feed.Engine {
	return feed.New(feed.Config{
		ExpiringSweepInterval: cfg.FeedExpiringSweepInterval,
		EvictionSweepInterval: cfg.FeedEvictionSweepInterval,
		// A rejected credential is not recoverable without operator
		// intervention, so drop readiness instead of retrying.
		OnAuthRequired: func() {
			logger.Error("feed-authentication-rejected",
				zap.String("note", "set FEED_AUTH_TOKEN to a valid credential and restart"))
			healthChecker.SetReady(false)
		},
		Logger: logger,
	}, oppStore, notifier, sink, wsManager.Signals())
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	oppStore *store.Store,
	engine *feed.Engine,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Store:         oppStore,
		Status:        engine,
		Defaults: view.Selection{
			ArbMin:  cfg.FilterArbMin,
			ArbMax:  cfg.FilterArbMax,
			OddsMin: cfg.FilterOddsMin,
			OddsMax: cfg.FilterOddsMax,
		},
	})
}
