package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/library-availability/internal/domain"
)

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetLibraries(ctx context.Context, key string) ([]domain.RawLibrary, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawLibrary), args.Error(1)
}

func (m *MockCacheRepository) SetLibraries(ctx context.Context, key string, libraries []domain.RawLibrary, ttl time.Duration) error {
	args := m.Called(ctx, key, libraries, ttl)
	return args.Error(0)
}

// MockBranchSource is a mock of BranchSource
type MockBranchSource struct {
	mock.Mock
	name string
}

func (m *MockBranchSource) Name() string {
	return m.name
}

func (m *MockBranchSource) FindLibraries(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.RawLibrary, error) {
	args := m.Called(ctx, center, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawLibrary), args.Error(1)
}

// MockBranchFinder is a mock of BranchFinder
type MockBranchFinder struct {
	mock.Mock
}

func (m *MockBranchFinder) FindNear(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.LibraryBranch, error) {
	args := m.Called(ctx, center, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LibraryBranch), args.Error(1)
}

// MockAvailabilityProbe is a mock of AvailabilityProbe
type MockAvailabilityProbe struct {
	mock.Mock
}

func (m *MockAvailabilityProbe) Check(ctx context.Context, systemID domain.CatalogSystemID, isbn string) (*domain.AvailabilityResult, error) {
	args := m.Called(ctx, systemID, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityResult), args.Error(1)
}
