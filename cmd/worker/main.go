package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/library-availability/internal/catalogdata"
	"github.com/library-availability/internal/config"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/infrastructure/bibliocommons"
	"github.com/library-availability/internal/infrastructure/catalog"
	"github.com/library-availability/internal/infrastructure/overpass"
	"github.com/library-availability/internal/pkg/logger"
	"github.com/library-availability/internal/repository/cache"
	"github.com/library-availability/internal/repository/postgresosm"
	redisRepo "github.com/library-availability/internal/repository/redis"
	"github.com/library-availability/internal/usecase"
	"github.com/library-availability/internal/worker"
	"github.com/library-availability/internal/worker/availability"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "library-availability-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Library Availability Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.Duration("probe_timeout", cfg.Probe.Timeout))

	dataset, err := catalogdata.Load()
	if err != nil {
		log.Fatal("Failed to load catalog dataset", zap.Error(err))
	}

	// 3. Redis is required here: it carries the request and result streams
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Branch sources: Overpass, then the local OSM database (if enabled)
	sources := []repository.BranchSource{overpass.NewClient(&cfg.Overpass, log)}
	if cfg.OSMDB.Enabled {
		osmDB, err := postgresosm.New(&cfg.OSMDB, log)
		if err != nil {
			log.Fatal("Failed to connect to OSM PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := osmDB.Close(); err != nil {
				log.Error("Failed to close OSM PostgreSQL connection", zap.Error(err))
			}
		}()
		sources = append(sources, postgresosm.NewLibraryRepository(osmDB))
	}

	// 5. Repositories and probes
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)

	browser := bibliocommons.NewBrowser(&cfg.Browser, log)
	defer browser.Close()

	prober := bibliocommons.NewProber(browser, bibliocommons.TimeoutsFromConfig(&cfg.Probe), log)
	probe := catalog.NewRegistry(dataset.Systems, []catalog.Adapter{prober}, log)

	// 6. Use cases
	locator := usecase.NewBranchLocator(
		sources,
		dataset.Branches(),
		dataset.BranchPrefixes,
		usecase.NewSystemResolverFromDataset(dataset),
		cacheRepo,
		cfg.Cache.DiscoveryCacheTTL,
		log,
	)
	availabilityUC := usecase.NewAvailabilityUseCase(locator, probe, usecase.NewBranchMatcher(), cfg.Probe.Timeout, log)

	// 7. Workers
	availabilityWorker := availability.NewAvailabilityWorker(
		streamRepo,
		availabilityUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.Concurrency,
		log,
	)

	workerManager := worker.NewWorkerManager(worker.DefaultShutdownTimeout, log)
	workerManager.Register(availabilityWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop прекращает чтение стрима и даёт начатым проверкам завершиться
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
