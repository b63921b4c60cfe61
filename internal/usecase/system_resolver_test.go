package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/library-availability/internal/catalogdata"
	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/usecase"
)

func newDatasetResolver(t *testing.T) *usecase.SystemResolver {
	t.Helper()
	ds, err := catalogdata.Load()
	require.NoError(t, err)
	return usecase.NewSystemResolverFromDataset(ds)
}

func TestSystemResolver_Resolve(t *testing.T) {
	resolver := newDatasetResolver(t)

	tests := []struct {
		name     string
		input    string
		expected domain.CatalogSystemID
		ok       bool
	}{
		{"vpl branch by full name", "Vancouver Public Library - Kitsilano Branch", "vpl", true},
		{"vpl abbreviation", "VPL Central Library", "vpl", true},
		{"north vancouver district is not vpl", "North Vancouver District Public Library - Lynn Valley", "nvdpl", true},
		{"west vancouver memorial", "West Vancouver Memorial Library", "wvml", true},
		{"new westminster", "New Westminster Public Library", "nwpl", true},
		{"richmond by city keyword", "Richmond Brighouse Library", "rpl", true},
		{"burnaby", "Burnaby Public Library - Bob Prittie Metrotown", "bpl", true},
		{"surrey", "Surrey Libraries - City Centre", "spl", true},
		{"coquitlam", "Coquitlam Public Library - Poirier Branch", "coqlib", true},
		{"case insensitive", "KITSILANO BRANCH - VANCOUVER PUBLIC LIBRARY", "vpl", true},
		{"university library not tracked", "UBC Irving K. Barber Learning Centre", "", false},
		{"empty name", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := resolver.Resolve(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}

func TestSystemResolver_CityRuleExclusions(t *testing.T) {
	resolver := usecase.NewSystemResolver(nil, []catalogdata.CityRule{
		{Keyword: "Vancouver", SystemID: "vpl", Exclude: []string{"North", "West"}},
	})

	id, ok := resolver.Resolve("Vancouver Community Reading Room")
	assert.True(t, ok)
	assert.Equal(t, domain.CatalogSystemID("vpl"), id)

	_, ok = resolver.Resolve("North Vancouver Reading Room")
	assert.False(t, ok)

	_, ok = resolver.Resolve("West Vancouver Reading Room")
	assert.False(t, ok)
}

func TestSystemResolver_AliasOrderWins(t *testing.T) {
	resolver := usecase.NewSystemResolver([]catalogdata.SystemAlias{
		{Key: "north vancouver district", SystemID: "nvdpl"},
		{Key: "vancouver", SystemID: "vpl"},
	}, nil)

	id, ok := resolver.Resolve("North Vancouver District Library")
	assert.True(t, ok)
	assert.Equal(t, domain.CatalogSystemID("nvdpl"), id)
}
