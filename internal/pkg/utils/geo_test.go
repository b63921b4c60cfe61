package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/library-availability/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	downtown := domain.Coordinate{Lat: 49.2827, Lon: -123.1207}
	kitsilano := domain.Coordinate{Lat: 49.2656, Lon: -123.1614}
	metrotown := domain.Coordinate{Lat: 49.2276, Lon: -123.0025}

	t.Run("zero for identical points", func(t *testing.T) {
		for _, c := range []domain.Coordinate{downtown, kitsilano, metrotown, {Lat: -33.86, Lon: 151.21}, {}} {
			assert.Equal(t, 0.0, DistanceKm(c, c))
		}
	})

	t.Run("commutative", func(t *testing.T) {
		assert.InDelta(t, DistanceKm(downtown, metrotown), DistanceKm(metrotown, downtown), 1e-9)
		assert.InDelta(t, DistanceKm(kitsilano, downtown), DistanceKm(downtown, kitsilano), 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// downtown Vancouver -> Kitsilano branch is roughly 3.5 km
		assert.InDelta(t, 3.5, DistanceKm(downtown, kitsilano), 0.1)
		// one degree of latitude is ~111.19 km on a 6371 km sphere
		assert.InDelta(t, 111.19, DistanceKm(domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 1, Lon: 0}), 0.01)
	})
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 3.42, RoundKm(3.4249))
	assert.Equal(t, 3.43, RoundKm(3.425001))
	assert.Equal(t, 0.0, RoundKm(0.001))
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, ValidateRadius(15))
	assert.True(t, ValidateRadius(0.1))
	assert.False(t, ValidateRadius(0))
	assert.False(t, ValidateRadius(150))
}
