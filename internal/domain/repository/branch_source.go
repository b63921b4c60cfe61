package repository

import (
	"context"

	"github.com/library-availability/internal/domain"
)

// BranchSource определяет источник геоданных о библиотеках
type BranchSource interface {
	// Name возвращает имя источника (для логов и метрик)
	Name() string

	// FindLibraries возвращает библиотеки в радиусе radiusKm от center.
	// Пустой список без ошибки означает, что источник ответил, но ничего не нашёл.
	FindLibraries(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.RawLibrary, error)
}
