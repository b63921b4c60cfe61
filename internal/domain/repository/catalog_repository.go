package repository

import (
	"context"

	"github.com/library-availability/internal/domain"
)

// AvailabilityProbe определяет проверку наличия книги в одной каталожной системе
type AvailabilityProbe interface {
	// Check проверяет наличие ISBN в системе systemID.
	// Окончательное "не найдено" возвращается как результат с NotFound=true,
	// а не как ошибка. Ошибки: domain.ErrProbeTimeout, domain.ErrProbeFault.
	Check(ctx context.Context, systemID domain.CatalogSystemID, isbn string) (*domain.AvailabilityResult, error)
}
