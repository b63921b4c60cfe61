package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/pkg/metrics"
	"github.com/library-availability/internal/pkg/utils"
)

// DefaultDiscoveryTimeout ограничивает общий запрос к источникам геоданных
const DefaultDiscoveryTimeout = 30 * time.Second

// BranchLocator - поиск филиалов библиотек рядом с точкой
type BranchLocator struct {
	sources  []repository.BranchSource
	fallback []domain.LibraryBranch
	prefixes []string
	resolver *SystemResolver
	cache    repository.CacheRepository // может быть nil
	cacheTTL time.Duration
	logger   *zap.Logger

	group singleflight.Group
}

// discoveryResult - результат основного пути поиска
type discoveryResult struct {
	libraries []domain.RawLibrary
	source    string
}

// NewBranchLocator создает BranchLocator.
// sources опрашиваются по порядку, побеждает первый непустой ответ;
// fallback используется, если ни один источник ничего не вернул.
func NewBranchLocator(
	sources []repository.BranchSource,
	fallback []domain.LibraryBranch,
	prefixes []string,
	resolver *SystemResolver,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *BranchLocator {
	return &BranchLocator{
		sources:  sources,
		fallback: fallback,
		prefixes: prefixes,
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// FindNear возвращает филиалы в радиусе radiusKm от center, отсортированные по расстоянию
func (l *BranchLocator) FindNear(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.LibraryBranch, error) {
	l.logger.Debug("Searching for libraries",
		zap.Float64("lat", center.Lat),
		zap.Float64("lon", center.Lon),
		zap.Float64("radius_km", radiusKm))

	var branches []domain.LibraryBranch

	found := l.discover(ctx, center, radiusKm)
	if len(found.libraries) > 0 {
		branches = l.fromRaw(found.libraries, found.source)
	}

	if len(branches) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.logger.Info("No libraries from geodata sources, using fallback dataset",
			zap.Float64("lat", center.Lat),
			zap.Float64("lon", center.Lon))
		branches = l.fallbackNear(center, radiusKm)
		found.source = domain.SourceFallback
	}

	metrics.DiscoveryTotal.WithLabelValues(found.source).Inc()

	result := l.finalize(branches, center, radiusKm)

	for i := range result {
		l.logger.Debug("Library found",
			zap.String("name", result[i].Name),
			zap.Float64("distance_km", result[i].DistanceKm),
			zap.String("system", string(result[i].SystemID)))
	}
	l.logger.Info("Libraries discovered",
		zap.Int("count", len(result)),
		zap.String("source", found.source))

	return result, nil
}

// discover опрашивает кеш и источники геоданных.
// Одинаковые одновременные запросы схлопываются в один.
func (l *BranchLocator) discover(ctx context.Context, center domain.Coordinate, radiusKm float64) discoveryResult {
	if len(l.sources) == 0 || ctx.Err() != nil {
		return discoveryResult{}
	}

	key := discoveryCacheKey(center, radiusKm)

	if cached := l.fromCache(ctx, key); len(cached) > 0 {
		metrics.DiscoveryCacheHits.Inc()
		return discoveryResult{libraries: cached, source: domain.SourceCache}
	}

	// Общий запрос не зависит от отмены первого вызывающего: остальные
	// ожидающие получат ответ источника, каждый ждёт в пределах своего ctx.
	ch := l.group.DoChan(key, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultDiscoveryTimeout)
		defer cancel()

		for _, src := range l.sources {
			libs, err := src.FindLibraries(sharedCtx, center, radiusKm)
			if err != nil {
				l.logger.Warn("Geodata source failed",
					zap.String("source", src.Name()),
					zap.Error(err))
				continue
			}
			if len(libs) == 0 {
				l.logger.Debug("Geodata source returned no libraries",
					zap.String("source", src.Name()))
				continue
			}

			l.toCache(sharedCtx, key, libs)
			return discoveryResult{libraries: libs, source: src.Name()}, nil
		}
		return discoveryResult{}, nil
	})

	select {
	case res := <-ch:
		return res.Val.(discoveryResult)
	case <-ctx.Done():
		return discoveryResult{}
	}
}

func (l *BranchLocator) fromCache(ctx context.Context, key string) []domain.RawLibrary {
	if l.cache == nil {
		return nil
	}
	libs, err := l.cache.GetLibraries(ctx, key)
	if err != nil {
		l.logger.Warn("Failed to read libraries from cache", zap.String("key", key), zap.Error(err))
		return nil
	}
	return libs
}

func (l *BranchLocator) toCache(ctx context.Context, key string, libs []domain.RawLibrary) {
	if l.cache == nil || l.cacheTTL <= 0 {
		return
	}
	if err := l.cache.SetLibraries(ctx, key, libs, l.cacheTTL); err != nil {
		l.logger.Warn("Failed to cache libraries", zap.String("key", key), zap.Error(err))
	}
}

// fromRaw превращает ответ источника в филиалы: дедупликация по имени
// без учёта регистра (первое вхождение побеждает), короткое имя и система
func (l *BranchLocator) fromRaw(raw []domain.RawLibrary, source string) []domain.LibraryBranch {
	seen := make(map[string]struct{}, len(raw))
	branches := make([]domain.LibraryBranch, 0, len(raw))

	for _, lib := range raw {
		name := strings.TrimSpace(lib.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		systemID, _ := l.resolver.Resolve(name)

		branches = append(branches, domain.LibraryBranch{
			ID:         lib.ExternalID,
			Name:       name,
			BranchName: DeriveBranchName(name, l.prefixes),
			Location:   lib.Location,
			SystemID:   systemID,
			Type:       "library",
			City:       lib.City,
			Address:    lib.Address,
			Source:     source,
		})
	}

	return branches
}

// fallbackNear отбирает филиалы резервного списка в пределах радиуса
func (l *BranchLocator) fallbackNear(center domain.Coordinate, radiusKm float64) []domain.LibraryBranch {
	branches := make([]domain.LibraryBranch, 0, len(l.fallback))
	for _, fb := range l.fallback {
		distance := utils.RoundKm(utils.DistanceKm(center, fb.Location))
		if distance > radiusKm {
			continue
		}

		b := fb
		b.Aliases = append([]string(nil), fb.Aliases...)
		b.BranchName = DeriveBranchName(fb.Name, l.prefixes)
		b.SetDistance(distance)
		branches = append(branches, b)
	}
	return branches
}

// finalize вычисляет расстояния, отбрасывает всё за радиусом,
// назначает идентификаторы и сортирует по расстоянию
func (l *BranchLocator) finalize(branches []domain.LibraryBranch, center domain.Coordinate, radiusKm float64) []domain.LibraryBranch {
	result := make([]domain.LibraryBranch, 0, len(branches))

	for _, b := range branches {
		// Фильтр по тому же округлённому значению, что попадёт в ответ
		if !b.HasDistance() {
			b.SetDistance(utils.RoundKm(utils.DistanceKm(center, b.Location)))
		}
		if b.DistanceKm > radiusKm {
			continue
		}
		if b.ID == "" {
			b.ID = fmt.Sprintf("osm_%v_%v", b.Location.Lat, b.Location.Lon)
		}
		result = append(result, b)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})

	return result
}

func discoveryCacheKey(center domain.Coordinate, radiusKm float64) string {
	return fmt.Sprintf("libraries:near:%.3f:%.3f:%.1f", center.Lat, center.Lon, radiusKm)
}
