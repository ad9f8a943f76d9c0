package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emberhav/pricewatch/internal/alternatives"
	"github.com/emberhav/pricewatch/internal/cache"
	"github.com/emberhav/pricewatch/internal/catalog"
	"github.com/emberhav/pricewatch/internal/config"
	"github.com/emberhav/pricewatch/internal/httpserver"
	"github.com/emberhav/pricewatch/internal/httpserver/deps"
	"github.com/emberhav/pricewatch/internal/logger"
	"github.com/emberhav/pricewatch/internal/notify"
	"github.com/emberhav/pricewatch/internal/redis"
	"github.com/emberhav/pricewatch/internal/scheduler"
	"github.com/emberhav/pricewatch/internal/store"
	"github.com/emberhav/pricewatch/internal/tracker"
	"github.com/emberhav/pricewatch/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	db          *store.Store
	scanner     *scheduler.PriceScanner
	sweeper     *scheduler.StaleSweeper
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Postgres is the source of truth - fail fast if unavailable
	pool, err := store.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Postgres: %v", err)
		os.Exit(1)
	}
	db := store.New(pool)
	loggerClient.Info("Postgres initialized successfully")

	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	viewCache := cache.New(redisClient, cfg.CacheTTL, loggerClient)

	catalogClient := catalog.NewClient(
		cfg.CatalogBaseURL,
		cfg.CatalogAPIKey,
		cfg.CatalogDomain,
		cfg.CatalogTimeout,
		loggerClient,
	)

	// Notification templates and transport
	templates := notify.DefaultTemplates()
	if cfg.TemplateFile != "" {
		templates, err = notify.LoadTemplates(cfg.TemplateFile)
		if err != nil {
			loggerClient.Warn("falling back to default notification templates",
				logger.Error(err))
		}
	}

	var deliverer notify.Deliverer
	if cfg.FCMCredentialsFile != "" {
		fcm, err := notify.NewFCM(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			loggerClient.Errorf("Failed to init FCM: %v", err)
			os.Exit(1)
		}
		deliverer = fcm
		loggerClient.Info("FCM delivery enabled")
	} else {
		deliverer = &notify.LogDeliverer{Logger: loggerClient}
		loggerClient.Info("no push credentials configured, using log delivery")
	}
	dispatcher := notify.NewDispatcher(deliverer, templates, loggerClient)

	resolver := alternatives.NewResolver(catalogClient, loggerClient)

	// Manual trigger channels for the two loops
	scanTrigger := make(chan struct{}, 1)
	sweepTrigger := make(chan struct{}, 1)

	scanner := scheduler.NewPriceScanner(
		db,
		catalogClient,
		viewCache,
		dispatcher,
		loggerClient,
		cfg.ScanInterval,
		cfg.ScanWorkers,
		scanTrigger,
	)

	sweeper := scheduler.NewStaleSweeper(
		db,
		resolver,
		viewCache,
		loggerClient,
		cfg.SweepInterval,
		cfg.StaleWindow,
		cfg.AutoRemoveAfter,
		cfg.AltLimit,
		sweepTrigger,
	)

	trackerService := tracker.New(db, viewCache, catalogClient, cfg.MaxItemsPerOwner, loggerClient)

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Tracker:      trackerService,
		ScanTrigger:  scanTrigger,
		SweepTrigger: sweepTrigger,
		DB:           pool,
		RedisClient:  redisClient,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		db:          db,
		scanner:     scanner,
		sweeper:     sweeper,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting pricewatch v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("pricewatch %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.scanner.Start(ctx)
	a.logger.Info("price scanner started",
		logger.Duration("interval", a.cfg.ScanInterval),
		logger.Int("workers", a.cfg.ScanWorkers))

	a.sweeper.Start(ctx)
	a.logger.Info("stale sweeper started",
		logger.Duration("interval", a.cfg.SweepInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.scanner.Stop()
	a.sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.db.Close()

	a.logger.Info("✅ pricewatch stopped cleanly")
	return nil
}
