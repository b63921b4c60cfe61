package main

// @title Library Availability API
// @version 1.0.0
// @description Поиск библиотек рядом с пользователем и проверка наличия книги по ISBN в их каталогах.
// @description
// @description Основные возможности:
// @description - Поиск филиалов библиотек в радиусе (OpenStreetMap / Overpass, локальная база OSM, резервный список)
// @description - Определение каталожной системы филиала
// @description - Параллельная проверка наличия книги во всех найденных системах

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/library-availability/docs/swagger"
	"github.com/library-availability/internal/catalogdata"
	"github.com/library-availability/internal/config"
	httpDelivery "github.com/library-availability/internal/delivery/http"
	"github.com/library-availability/internal/delivery/http/handler"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/infrastructure/bibliocommons"
	"github.com/library-availability/internal/infrastructure/catalog"
	"github.com/library-availability/internal/infrastructure/overpass"
	"github.com/library-availability/internal/pkg/logger"
	"github.com/library-availability/internal/repository/cache"
	"github.com/library-availability/internal/repository/postgresosm"
	"github.com/library-availability/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "library-availability-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Library Availability API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Strings("overpass_endpoints", cfg.Overpass.Endpoints),
		zap.Bool("osm_db_enabled", cfg.OSMDB.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 3. Load embedded catalog dataset
	dataset, err := catalogdata.Load()
	if err != nil {
		log.Fatal("Failed to load catalog dataset", zap.Error(err))
	}
	log.Info("Catalog dataset loaded",
		zap.Int("systems", len(dataset.Systems)),
		zap.Int("fallback_libraries", len(dataset.FallbackLibraries)))

	// 4. Branch sources: Overpass, then the local OSM database (if enabled)
	sources := []repository.BranchSource{overpass.NewClient(&cfg.Overpass, log)}

	var osmDB *postgresosm.DB
	if cfg.OSMDB.Enabled {
		osmDB, err = postgresosm.New(&cfg.OSMDB, log)
		if err != nil {
			log.Fatal("Failed to connect to OSM PostgreSQL", zap.Error(err))
		}
		sources = append(sources, postgresosm.NewLibraryRepository(osmDB))
		log.Info("OSM PostgreSQL connected")
	}

	// 5. Discovery cache (optional)
	var cacheRepo repository.CacheRepository
	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, discovery cache disabled", zap.Error(err))
		} else {
			cacheRepo = cache.NewCacheRepository(redisClient)
		}
	}

	// 6. Catalog probes
	browser := bibliocommons.NewBrowser(&cfg.Browser, log)
	defer browser.Close()

	prober := bibliocommons.NewProber(browser, bibliocommons.TimeoutsFromConfig(&cfg.Probe), log)
	probe := catalog.NewRegistry(dataset.Systems, []catalog.Adapter{prober}, log)

	// 7. Use cases
	locator := usecase.NewBranchLocator(
		sources,
		dataset.Branches(),
		dataset.BranchPrefixes,
		usecase.NewSystemResolverFromDataset(dataset),
		cacheRepo,
		cfg.Cache.DiscoveryCacheTTL,
		log,
	)

	availabilityUC := usecase.NewAvailabilityUseCase(
		locator,
		probe,
		usecase.NewBranchMatcher(),
		cfg.Probe.Timeout,
		log,
	)

	log.Info("Use cases initialized")

	// 8. HTTP
	libraryHandler := handler.NewLibraryHandler(availabilityUC, locator, dataset.Systems, log)
	server := httpDelivery.NewServer(cfg, log, libraryHandler)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if osmDB != nil {
		if err := osmDB.Close(); err != nil {
			log.Error("Failed to close OSM database", zap.Error(err))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
