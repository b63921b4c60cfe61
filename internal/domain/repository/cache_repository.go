package repository

import (
	"context"
	"time"

	"github.com/library-availability/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetLibraries получает результат поиска библиотек из кеша
	GetLibraries(ctx context.Context, key string) ([]domain.RawLibrary, error)

	// SetLibraries сохраняет результат поиска библиотек в кеше
	SetLibraries(ctx context.Context, key string, libraries []domain.RawLibrary, ttl time.Duration) error
}
