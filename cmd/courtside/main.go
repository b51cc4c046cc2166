package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/courtside/internal/aliases"
	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/api/websocket"
	"github.com/fortuna/courtside/internal/batch"
	"github.com/fortuna/courtside/internal/boxscore"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/identity"
	"github.com/fortuna/courtside/internal/ingest/bleague"
	"github.com/fortuna/courtside/internal/ingest/nba"
	"github.com/fortuna/courtside/internal/logging"
	"github.com/fortuna/courtside/internal/names"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/scheduler"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"

	maxRetries = 30
	retryDelay = 2 * time.Second
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config/config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	log := logging.Component(logger, "main")
	log.WithField("version", serviceVersion).Infof("starting %s", serviceName)

	table, err := aliases.Load(cfg.Ingest.AliasesPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load alias table")
	}
	assembler := boxscore.NewAssembler(identity.NewResolver(table), names.NewNormalizer(table))
	log.WithField("path", cfg.Ingest.AliasesPath).Info("✓ alias table loaded")

	var db *store.Database
	err = retry(log, "postgres", func() error {
		var err error
		db, err = store.NewDatabase(cfg.Database.DSN, store.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		return err
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(ctx); err != nil {
		log.WithError(err).Fatal("failed to run database migrations")
	}
	log.Info("✓ database ready")

	var redisCache *cache.RedisCache
	err = retry(log, "redis", func() error {
		var err error
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.CacheTTL)
		return err
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisCache.Close()

	instanceID := uuid.NewString()
	pub := publisher.NewRedisPublisherFromClient(redisCache.Client(), cfg.Redis.StreamMaxLen).WithSource(instanceID)
	log.Info("✓ redis cache and publisher ready")

	browser := bleague.NewClient(logger, cfg.Ingest.BrowserTimeout)
	defer browser.Close()
	feed := nba.NewClient(logger, cfg.Ingest.NBAFeedURL)

	boxscores := repository.NewBoxscoreRepository(db)
	jobs := repository.NewBatchJobRepository(db)

	wsServer := websocket.NewServer(cfg.Server.WSPort, logger)

	runner := batch.NewRunner(logger, batch.Sinks{
		Store:     boxscores,
		Cache:     redisCache,
		Publisher: pub,
		Notifier:  wsServer,
		Jobs:      jobs,
	},
		bleague.NewIngester(browser, assembler, logger, cfg.Ingest.AllPlayers),
		nba.NewIngester(feed, assembler, logger),
	)

	// Games published by the batch CLI reach websocket clients through the
	// streams; this process's own entries are skipped.
	consumer := publisher.NewConsumer(redisCache.Client(), cfg.Redis.ConsumerGroup, instanceID,
		runner.Leagues(), wsServer.BroadcastBoxscore, logger).SkipSource(instanceID)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.WithError(err).Error("stream consumer stopped")
		}
	}()

	deps := rest.Deps{
		Boxscores: boxscores,
		Cache:     redisCache,
		Ingester:  runner,
		Checks: map[string]rest.HealthChecker{
			"database": db,
			"redis":    redisCache,
		},
	}
	if cfg.Scheduler.Enabled {
		orchestrator := scheduler.NewOrchestrator(runner, scheduler.Config{
			PollInterval: cfg.Scheduler.PollInterval,
			MaxAttempts:  cfg.Scheduler.MaxAttempts,
			MaxPending:   cfg.Scheduler.MaxPending,
		}, logger)
		deps.Watcher = orchestrator
		go orchestrator.Start(ctx)
	}
	handler := rest.NewHandler(deps, logger)
	batchHandler := rest.NewBatchHandler(runner, jobs, logger)
	restServer := rest.NewServer(cfg.Server.RESTPort, handler, batchHandler, logger)

	go func() {
		log.WithField("port", cfg.Server.RESTPort).Info("starting REST API server")
		if err := restServer.Start(); err != nil {
			log.WithError(err).Warn("REST server stopped")
		}
	}()
	go func() {
		if err := wsServer.Start(); err != nil {
			log.WithError(err).Error("websocket server error")
		}
	}()

	log.WithFields(logrus.Fields{
		"rest":      "http://0.0.0.0:" + cfg.Server.RESTPort,
		"websocket": "ws://0.0.0.0:" + cfg.Server.WSPort + "/ws/boxscores",
		"leagues":   runner.Leagues(),
	}).Infof("✓ %s v%s started", serviceName, serviceVersion)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down gracefully")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("REST server shutdown error")
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("websocket server shutdown error")
	}

	log.Infof("%s stopped", serviceName)
}

// retry calls connect until it succeeds or maxRetries attempts fail.
func retry(log *logrus.Entry, name string, connect func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = connect(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			log.WithError(err).WithFields(logrus.Fields{
				"attempt": i + 1,
				"max":     maxRetries,
			}).Warnf("%s connection failed, retrying in %v", name, retryDelay)
			time.Sleep(retryDelay)
		}
	}
	return err
}
