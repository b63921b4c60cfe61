package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/pkg/metrics"
)

const (
	// DefaultMaxDistanceKm - радиус поиска по умолчанию
	DefaultMaxDistanceKm = 15.0
	// DefaultProbeTimeout - бюджет одной проверки каталожной системы
	DefaultProbeTimeout = 8 * time.Second
)

// BranchFinder - поиск филиалов рядом с точкой (реализуется BranchLocator)
type BranchFinder interface {
	FindNear(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.LibraryBranch, error)
}

// Ensure BranchLocator implements BranchFinder interface
var _ BranchFinder = (*BranchLocator)(nil)

// AvailabilityUseCase - поиск книги в ближайших библиотеках
type AvailabilityUseCase struct {
	locator      BranchFinder
	probe        repository.AvailabilityProbe
	matcher      *BranchMatcher
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewAvailabilityUseCase создает AvailabilityUseCase
func NewAvailabilityUseCase(
	locator BranchFinder,
	probe repository.AvailabilityProbe,
	matcher *BranchMatcher,
	probeTimeout time.Duration,
	logger *zap.Logger,
) *AvailabilityUseCase {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &AvailabilityUseCase{
		locator:      locator,
		probe:        probe,
		matcher:      matcher,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// systemGroups - филиалы, сгруппированные по системе: индексы в срезе branches
type systemGroups struct {
	order      []domain.CatalogSystemID
	members    map[domain.CatalogSystemID][]int
	unresolved []int
}

func groupBySystem(branches []domain.LibraryBranch) systemGroups {
	g := systemGroups{members: make(map[domain.CatalogSystemID][]int)}
	for i := range branches {
		id := branches[i].SystemID
		if id == "" {
			g.unresolved = append(g.unresolved, i)
			continue
		}
		if _, ok := g.members[id]; !ok {
			g.order = append(g.order, id)
		}
		g.members[id] = append(g.members[id], i)
	}
	return g
}

// probeOutcome - слот результата одной системы, записывается один раз
type probeOutcome struct {
	result *domain.AvailabilityResult
	err    error
}

// FindBookAtLibraries находит ближайшие филиалы и проверяет наличие книги.
//
// Одна проверка на каждую различную систему, все проверки параллельно,
// каждая со своим таймаутом. Результат ждёт завершения всех проверок.
// Сбой отдельной проверки не прерывает обработку: филиалы этой системы
// помечаются error=true.
//
// Сортировка: сначала филиалы, где книга есть, затем по расстоянию.
func (uc *AvailabilityUseCase) FindBookAtLibraries(
	ctx context.Context,
	isbn string,
	center domain.Coordinate,
	radiusKm float64,
) ([]domain.BranchAvailability, error) {
	isbn = domain.NormalizeISBN(isbn)
	if radiusKm <= 0 {
		radiusKm = DefaultMaxDistanceKm
	}

	uc.logger.Info("Finding book at libraries",
		zap.String("isbn", isbn),
		zap.Float64("lat", center.Lat),
		zap.Float64("lon", center.Lon),
		zap.Float64("radius_km", radiusKm))

	branches, err := uc.locator.FindNear(ctx, center, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("find libraries: %w", err)
	}

	groups := groupBySystem(branches)

	systems := make([]string, len(groups.order))
	for i, id := range groups.order {
		systems[i] = string(id)
	}
	uc.logger.Info("Checking library systems",
		zap.Int("branches", len(branches)),
		zap.Strings("systems", systems))

	outcomes := uc.probeAll(ctx, isbn, groups.order)

	results := make([]domain.BranchAvailability, 0, len(branches))
	for i, systemID := range groups.order {
		outcome := outcomes[i]
		for _, idx := range groups.members[systemID] {
			branch := &branches[idx]
			if outcome.err != nil || outcome.result == nil {
				results = append(results, failedRow(branch))
				continue
			}
			results = append(results, uc.availableRow(branch, outcome.result))
		}
	}
	for _, idx := range groups.unresolved {
		results = append(results, untrackedRow(&branches[idx]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		ai, aj := isTrue(results[i].AvailableAtThisBranch), isTrue(results[j].AvailableAtThisBranch)
		if ai != aj {
			return ai
		}
		return results[i].DistanceKm < results[j].DistanceKm
	})

	uc.logger.Info("Book availability assembled",
		zap.String("isbn", isbn),
		zap.Int("results", len(results)))

	return results, nil
}

// probeAll запускает по одной проверке на систему и ждёт завершения всех
func (uc *AvailabilityUseCase) probeAll(ctx context.Context, isbn string, systems []domain.CatalogSystemID) []probeOutcome {
	outcomes := make([]probeOutcome, len(systems))

	var wg sync.WaitGroup
	wg.Add(len(systems))
	for i, systemID := range systems {
		go func(slot int, systemID domain.CatalogSystemID) {
			defer wg.Done()
			outcomes[slot] = uc.probeOne(ctx, systemID, isbn)
		}(i, systemID)
	}
	wg.Wait()

	return outcomes
}

// probeOne выполняет одну проверку в пределах собственного таймаута.
// Если проверка не вернулась к дедлайну, её результат считается таймаутом,
// даже если сама проверка ещё не заметила отмену.
func (uc *AvailabilityUseCase) probeOne(ctx context.Context, systemID domain.CatalogSystemID, isbn string) probeOutcome {
	probeCtx, cancel := context.WithTimeout(ctx, uc.probeTimeout)
	defer cancel()

	start := time.Now()
	ch := make(chan probeOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- probeOutcome{err: fmt.Errorf("%w: panic: %v", domain.ErrProbeFault, r)}
			}
		}()
		result, err := uc.probe.Check(probeCtx, systemID, isbn)
		ch <- probeOutcome{result: result, err: err}
	}()

	var outcome probeOutcome
	select {
	case outcome = <-ch:
	case <-probeCtx.Done():
		outcome = probeOutcome{err: fmt.Errorf("%w: %s after %s", domain.ErrProbeTimeout, systemID, uc.probeTimeout)}
	}

	if outcome.err == nil && outcome.result == nil {
		outcome.err = fmt.Errorf("%w: empty result", domain.ErrProbeFault)
	}

	uc.record(systemID, isbn, outcome, time.Since(start))
	return outcome
}

func (uc *AvailabilityUseCase) record(systemID domain.CatalogSystemID, isbn string, outcome probeOutcome, elapsed time.Duration) {
	metrics.ProbeDuration.WithLabelValues(string(systemID)).Observe(elapsed.Seconds())

	fields := []zap.Field{
		zap.String("system", string(systemID)),
		zap.String("isbn", isbn),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case outcome.err == nil && outcome.result.NotFound:
		metrics.ProbesTotal.WithLabelValues(string(systemID), metrics.OutcomeNotFound).Inc()
		uc.logger.Info("Book not in catalog", append(fields, zap.String("outcome", metrics.OutcomeNotFound))...)
	case outcome.err == nil:
		metrics.ProbesTotal.WithLabelValues(string(systemID), metrics.OutcomeFound).Inc()
		uc.logger.Info("Availability checked", append(fields,
			zap.String("outcome", metrics.OutcomeFound),
			zap.Bool("is_available", outcome.result.IsAvailable),
			zap.Strings("available_locations", outcome.result.AvailableLocations))...)
	case errors.Is(outcome.err, domain.ErrProbeTimeout) || errors.Is(outcome.err, context.DeadlineExceeded):
		metrics.ProbesTotal.WithLabelValues(string(systemID), metrics.OutcomeTimeout).Inc()
		uc.logger.Warn("Availability probe timed out", append(fields,
			zap.String("outcome", metrics.OutcomeTimeout),
			zap.Error(outcome.err))...)
	default:
		metrics.ProbesTotal.WithLabelValues(string(systemID), metrics.OutcomeFault).Inc()
		uc.logger.Error("Availability probe failed", append(fields,
			zap.String("outcome", metrics.OutcomeFault),
			zap.Error(outcome.err))...)
	}
}

func (uc *AvailabilityUseCase) availableRow(branch *domain.LibraryBranch, result *domain.AvailabilityResult) domain.BranchAvailability {
	row := baseRow(branch)

	here := uc.matcher.Matches(branch, result.AvailableLocations)
	isAvailable := result.IsAvailable
	system := branch.SystemID.Upper()

	locations := result.AvailableLocations
	if locations == nil {
		locations = []string{}
	}

	row.LibrarySystem = &system
	row.IsAvailable = &isAvailable
	row.AvailableLocations = locations
	row.Holds = result.Summary.Holds
	row.Copies = result.Summary.Copies
	row.OnOrder = result.Summary.OnOrder
	row.StatusText = result.Summary.StatusText
	row.AvailableAtThisBranch = &here
	return row
}

func failedRow(branch *domain.LibraryBranch) domain.BranchAvailability {
	row := baseRow(branch)

	system := branch.SystemID.Upper()
	no := false
	here := false

	row.LibrarySystem = &system
	row.IsAvailable = &no
	row.StatusText = domain.StatusCouldNotCheck
	row.AvailableAtThisBranch = &here
	row.Error = true
	return row
}

func untrackedRow(branch *domain.LibraryBranch) domain.BranchAvailability {
	row := baseRow(branch)
	row.StatusText = domain.StatusNotTrackedLibrary
	return row
}

func baseRow(branch *domain.LibraryBranch) domain.BranchAvailability {
	branchType := branch.Type
	if branchType == "" {
		branchType = "library"
	}
	return domain.BranchAvailability{
		ID:                 branch.ID,
		Name:               branch.Name,
		Latitude:           branch.Location.Lat,
		Longitude:          branch.Location.Lon,
		Type:               branchType,
		City:               branch.City,
		DistanceKm:         branch.DistanceKm,
		AvailableLocations: []string{},
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
