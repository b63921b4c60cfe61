package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/library-availability/internal/catalogdata"
	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/pkg/utils"
	"github.com/library-availability/internal/usecase"
)

var downtown = domain.Coordinate{Lat: 49.2827, Lon: -123.1207}

func newTestLocator(t *testing.T, sources []repository.BranchSource, cache repository.CacheRepository) *usecase.BranchLocator {
	t.Helper()
	ds, err := catalogdata.Load()
	require.NoError(t, err)

	return usecase.NewBranchLocator(
		sources,
		ds.Branches(),
		ds.BranchPrefixes,
		usecase.NewSystemResolverFromDataset(ds),
		cache,
		time.Hour,
		zap.NewNop(),
	)
}

func TestBranchLocator_FindNear_FromSource(t *testing.T) {
	ctx := context.Background()

	source := &MockBranchSource{name: domain.SourceOverpass}
	source.On("FindLibraries", mock.Anything, downtown, 15.0).Return([]domain.RawLibrary{
		{ExternalID: "node/1", Name: "Vancouver Public Library - Kitsilano Branch", Location: domain.Coordinate{Lat: 49.2688, Lon: -123.1551}},
		{ExternalID: "node/2", Name: "vancouver public library - kitsilano branch", Location: domain.Coordinate{Lat: 49.2689, Lon: -123.1552}},
		{Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}},
		{Name: "Surrey Libraries - City Centre", Location: domain.Coordinate{Lat: 49.1867, Lon: -122.8490}},
		{Name: "UBC Library", Location: domain.Coordinate{Lat: 49.2677, Lon: -123.2527}},
		{Name: "  ", Location: domain.Coordinate{Lat: 49.28, Lon: -123.12}},
	}, nil)

	locator := newTestLocator(t, []repository.BranchSource{source}, nil)

	branches, err := locator.FindNear(ctx, downtown, 15)
	require.NoError(t, err)
	require.Len(t, branches, 3)

	assert.Equal(t, "Vancouver Public Library - Central", branches[0].Name)
	assert.Equal(t, "Central", branches[0].BranchName)
	assert.Equal(t, domain.CatalogSystemID("vpl"), branches[0].SystemID)
	assert.Equal(t, "osm_49.2799_-123.1156", branches[0].ID)

	assert.Equal(t, "Vancouver Public Library - Kitsilano Branch", branches[1].Name)
	assert.Equal(t, "node/1", branches[1].ID)
	assert.Equal(t, "Kitsilano Branch", branches[1].BranchName)

	assert.Equal(t, "UBC Library", branches[2].Name)
	assert.False(t, branches[2].HasSystem())

	for i, b := range branches {
		assert.LessOrEqual(t, b.DistanceKm, 15.0)
		assert.Equal(t, domain.SourceOverpass, b.Source)
		if i > 0 {
			assert.LessOrEqual(t, branches[i-1].DistanceKm, b.DistanceKm)
		}
	}

	source.AssertExpectations(t)
}

func TestBranchLocator_FindNear_SourceOrder(t *testing.T) {
	ctx := context.Background()

	failing := &MockBranchSource{name: domain.SourceOSMDB}
	failing.On("FindLibraries", mock.Anything, downtown, 5.0).Return(nil, fmt.Errorf("connection refused"))

	empty := &MockBranchSource{name: "empty"}
	empty.On("FindLibraries", mock.Anything, downtown, 5.0).Return([]domain.RawLibrary{}, nil)

	good := &MockBranchSource{name: domain.SourceOverpass}
	good.On("FindLibraries", mock.Anything, downtown, 5.0).Return([]domain.RawLibrary{
		{Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}},
	}, nil)

	locator := newTestLocator(t, []repository.BranchSource{failing, empty, good}, nil)

	branches, err := locator.FindNear(ctx, downtown, 5)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, domain.SourceOverpass, branches[0].Source)

	failing.AssertExpectations(t)
	empty.AssertExpectations(t)
	good.AssertExpectations(t)
}

func TestBranchLocator_FindNear_Fallback(t *testing.T) {
	ctx := context.Background()

	source := &MockBranchSource{name: domain.SourceOverpass}
	source.On("FindLibraries", mock.Anything, downtown, 3.0).Return(nil, domain.ErrDiscoveryUnavailable)

	locator := newTestLocator(t, []repository.BranchSource{source}, nil)

	branches, err := locator.FindNear(ctx, downtown, 3)
	require.NoError(t, err)
	require.NotEmpty(t, branches)

	names := make([]string, 0, len(branches))
	for i, b := range branches {
		names = append(names, b.Name)
		assert.Equal(t, domain.SourceFallback, b.Source)
		assert.LessOrEqual(t, b.DistanceKm, 3.0)
		assert.NotEmpty(t, b.ID)
		if i > 0 {
			assert.LessOrEqual(t, branches[i-1].DistanceKm, b.DistanceKm)
		}
	}

	assert.Equal(t, "Vancouver Public Library - Central", branches[0].Name)
	assert.Equal(t, "1", branches[0].ID)
	assert.Contains(t, names, "Mount Pleasant Library")
	assert.NotContains(t, names, "Oakridge Library")
	assert.NotContains(t, names, "UBC Library")
}

func TestBranchLocator_FindNear_NoSources(t *testing.T) {
	locator := newTestLocator(t, nil, nil)

	branches, err := locator.FindNear(context.Background(), downtown, 15)
	require.NoError(t, err)
	require.NotEmpty(t, branches)

	var ubc *domain.LibraryBranch
	for i := range branches {
		if branches[i].Name == "UBC Library" {
			ubc = &branches[i]
		}
	}
	require.NotNil(t, ubc)
	assert.False(t, ubc.HasSystem())
}

func TestBranchLocator_FindNear_NothingInRange(t *testing.T) {
	locator := newTestLocator(t, nil, nil)

	// Середина Тихого океана
	branches, err := locator.FindNear(context.Background(), domain.Coordinate{Lat: 30, Lon: -150}, 15)
	require.NoError(t, err)
	assert.Empty(t, branches)
}

func TestBranchLocator_FindNear_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &MockBranchSource{name: domain.SourceOverpass}
	source.On("FindLibraries", mock.Anything, downtown, 15.0).Return(nil, context.Canceled)

	locator := newTestLocator(t, []repository.BranchSource{source}, nil)

	_, err := locator.FindNear(ctx, downtown, 15)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBranchLocator_FindNear_RadiusBoundary(t *testing.T) {
	ctx := context.Background()

	// Точное расстояние ~10.0075 км, в ответе округляется до 10.01
	edge := domain.Coordinate{Lat: downtown.Lat + 0.09, Lon: downtown.Lon}
	exact := utils.DistanceKm(downtown, edge)
	require.Greater(t, utils.RoundKm(exact), exact)

	source := &MockBranchSource{name: domain.SourceOverpass}
	source.On("FindLibraries", mock.Anything, downtown, mock.Anything).Return([]domain.RawLibrary{
		{Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}},
		{Name: "Edge Library", Location: edge},
	}, nil)

	locator := newTestLocator(t, []repository.BranchSource{source}, nil)

	t.Run("exact radius excludes rounded-up branch", func(t *testing.T) {
		branches, err := locator.FindNear(ctx, downtown, exact)
		require.NoError(t, err)
		require.Len(t, branches, 1)
		assert.Equal(t, "Vancouver Public Library - Central", branches[0].Name)
		for _, b := range branches {
			assert.LessOrEqual(t, b.DistanceKm, exact)
		}
	})

	t.Run("rounded radius includes it", func(t *testing.T) {
		radius := utils.RoundKm(exact)
		branches, err := locator.FindNear(ctx, downtown, radius)
		require.NoError(t, err)
		require.Len(t, branches, 2)
		assert.Equal(t, "Edge Library", branches[1].Name)
		assert.Equal(t, radius, branches[1].DistanceKm)
	})
}

func TestBranchLocator_FindNear_FallbackRadiusBoundary(t *testing.T) {
	ds, err := catalogdata.Load()
	require.NoError(t, err)

	locator := newTestLocator(t, nil, nil)

	for _, fb := range ds.Branches() {
		exact := utils.DistanceKm(downtown, fb.Location)
		if exact < 0.5 {
			continue
		}

		branches, err := locator.FindNear(context.Background(), downtown, exact)
		require.NoError(t, err)

		included := false
		for _, b := range branches {
			assert.LessOrEqual(t, b.DistanceKm, exact, b.Name)
			if b.ID == fb.ID {
				included = true
			}
		}
		assert.Equal(t, utils.RoundKm(exact) <= exact, included, fb.Name)
	}
}

// slowSource отвечает через delay, если ctx не отменён раньше
type slowSource struct {
	delay   time.Duration
	calls   atomic.Int32
	started chan struct{}
	once    sync.Once
}

func (s *slowSource) Name() string { return domain.SourceOverpass }

func (s *slowSource) FindLibraries(ctx context.Context, _ domain.Coordinate, _ float64) ([]domain.RawLibrary, error) {
	s.calls.Add(1)
	s.once.Do(func() { close(s.started) })

	select {
	case <-time.After(s.delay):
		return []domain.RawLibrary{
			{Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}},
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestBranchLocator_FindNear_SharedCallOutlivesCancelledCaller(t *testing.T) {
	source := &slowSource{delay: 300 * time.Millisecond, started: make(chan struct{})}
	locator := newTestLocator(t, []repository.BranchSource{source}, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	var (
		wg         sync.WaitGroup
		branchesA  []domain.LibraryBranch
		branchesB  []domain.LibraryBranch
		errA, errB error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		branchesA, errA = locator.FindNear(ctxA, downtown, 15)
	}()

	select {
	case <-source.started:
	case <-time.After(2 * time.Second):
		t.Fatal("source was not called")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		branchesB, errB = locator.FindNear(context.Background(), downtown, 15)
	}()

	time.Sleep(50 * time.Millisecond)
	cancelA()
	wg.Wait()

	assert.ErrorIs(t, errA, context.Canceled)
	assert.Empty(t, branchesA)

	require.NoError(t, errB)
	require.NotEmpty(t, branchesB)
	for _, b := range branchesB {
		assert.Equal(t, domain.SourceOverpass, b.Source)
	}
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestBranchLocator_FindNear_Cache(t *testing.T) {
	ctx := context.Background()
	cached := []domain.RawLibrary{
		{Name: "Vancouver Public Library - Central", Location: domain.Coordinate{Lat: 49.2799, Lon: -123.1156}},
	}

	t.Run("cache hit skips sources", func(t *testing.T) {
		cache := &MockCacheRepository{}
		cache.On("GetLibraries", mock.Anything, "libraries:near:49.283:-123.121:15.0").Return(cached, nil)

		source := &MockBranchSource{name: domain.SourceOverpass}

		locator := newTestLocator(t, []repository.BranchSource{source}, cache)

		branches, err := locator.FindNear(ctx, downtown, 15)
		require.NoError(t, err)
		require.Len(t, branches, 1)
		assert.Equal(t, domain.SourceCache, branches[0].Source)

		source.AssertNotCalled(t, "FindLibraries", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("cache miss stores source result", func(t *testing.T) {
		cache := &MockCacheRepository{}
		cache.On("GetLibraries", mock.Anything, mock.Anything).Return(nil, nil)
		cache.On("SetLibraries", mock.Anything, "libraries:near:49.283:-123.121:15.0", cached, time.Hour).Return(nil)

		source := &MockBranchSource{name: domain.SourceOverpass}
		source.On("FindLibraries", mock.Anything, downtown, 15.0).Return(cached, nil)

		locator := newTestLocator(t, []repository.BranchSource{source}, cache)

		branches, err := locator.FindNear(ctx, downtown, 15)
		require.NoError(t, err)
		require.Len(t, branches, 1)
		assert.Equal(t, domain.SourceOverpass, branches[0].Source)

		cache.AssertExpectations(t)
		source.AssertExpectations(t)
	})

	t.Run("cache error is not fatal", func(t *testing.T) {
		cache := &MockCacheRepository{}
		cache.On("GetLibraries", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("redis down"))
		cache.On("SetLibraries", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("redis down"))

		source := &MockBranchSource{name: domain.SourceOverpass}
		source.On("FindLibraries", mock.Anything, downtown, 15.0).Return(cached, nil)

		locator := newTestLocator(t, []repository.BranchSource{source}, cache)

		branches, err := locator.FindNear(ctx, downtown, 15)
		require.NoError(t, err)
		assert.Len(t, branches, 1)
	})
}
