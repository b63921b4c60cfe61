// Package catalog направляет проверку наличия в адаптер поставщика,
// обслуживающего каталожную систему.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
)

// Adapter - проверка наличия для одного поставщика каталогов
type Adapter interface {
	Vendor() string
	Check(ctx context.Context, system domain.CatalogSystem, isbn string) (*domain.AvailabilityResult, error)
}

type registry struct {
	systems  map[domain.CatalogSystemID]domain.CatalogSystem
	adapters map[string]Adapter
	logger   *zap.Logger
}

// NewRegistry создает AvailabilityProbe, который выбирает адаптер по поставщику системы
func NewRegistry(systems []domain.CatalogSystem, adapters []Adapter, logger *zap.Logger) repository.AvailabilityProbe {
	r := &registry{
		systems:  make(map[domain.CatalogSystemID]domain.CatalogSystem, len(systems)),
		adapters: make(map[string]Adapter, len(adapters)),
		logger:   logger,
	}
	for _, s := range systems {
		r.systems[s.ID] = s
	}
	for _, a := range adapters {
		r.adapters[strings.ToLower(a.Vendor())] = a
	}
	return r
}

func (r *registry) Check(ctx context.Context, systemID domain.CatalogSystemID, isbn string) (*domain.AvailabilityResult, error) {
	system, ok := r.systems[domain.CatalogSystemID(strings.ToLower(string(systemID)))]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrProbeFault, domain.ErrUnsupportedSystem, systemID)
	}

	adapter, ok := r.adapters[strings.ToLower(system.Vendor)]
	if !ok {
		return nil, fmt.Errorf("%w: %w: no adapter for vendor %q", domain.ErrProbeFault, domain.ErrUnsupportedSystem, system.Vendor)
	}

	r.logger.Debug("Dispatching availability probe",
		zap.String("system", string(system.ID)),
		zap.String("vendor", system.Vendor))

	return adapter.Check(ctx, system, domain.NormalizeISBN(isbn))
}
