package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// cachedLibraries - формат записи результата поиска библиотек в кеше
type cachedLibraries struct {
	Libraries []domain.RawLibrary `json:"libraries"`
	CachedAt  time.Time           `json:"cached_at"`
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetLibraries возвращает закешированный ответ источника геоданных; nil, nil при промахе
func (r *cacheRepository) GetLibraries(ctx context.Context, key string) ([]domain.RawLibrary, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var entry cachedLibraries
	if err := json.Unmarshal(data, &entry); err != nil {
		r.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		_ = r.Delete(ctx, key)
		return nil, nil
	}

	return entry.Libraries, nil
}

func (r *cacheRepository) SetLibraries(ctx context.Context, key string, libraries []domain.RawLibrary, ttl time.Duration) error {
	data, err := json.Marshal(cachedLibraries{
		Libraries: libraries,
		CachedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal libraries: %w", err)
	}

	return r.Set(ctx, key, data, ttl)
}
