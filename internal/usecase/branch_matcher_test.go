package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/usecase"
)

func TestNormalizeBranchName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Kitsilano Branch", "kitsilano"},
		{"Kitsilano Library", "kitsilano"},
		{"Kitsilano Branch Library", "kitsilano"},
		{"  Oakridge   Library ", "oakridge"},
		{"Central", "central"},
		{"Library", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, usecase.NormalizeBranchName(tt.input))
		})
	}
}

func TestBranchMatcher_Matches(t *testing.T) {
	matcher := usecase.NewBranchMatcher()

	kitsilano := &domain.LibraryBranch{
		Name:       "Kitsilano Library",
		BranchName: "Kitsilano Library",
		SystemID:   "vpl",
	}

	t.Run("exact after normalization", func(t *testing.T) {
		assert.True(t, matcher.Matches(kitsilano, []string{"Kitsilano"}))
	})

	t.Run("different branch", func(t *testing.T) {
		assert.False(t, matcher.Matches(kitsilano, []string{"Oakridge"}))
	})

	t.Run("one of several locations", func(t *testing.T) {
		assert.True(t, matcher.Matches(kitsilano, []string{"Oakridge", "Kitsilano Branch"}))
	})

	t.Run("no locations", func(t *testing.T) {
		assert.False(t, matcher.Matches(kitsilano, nil))
		assert.False(t, matcher.Matches(kitsilano, []string{}))
	})

	t.Run("blank location never matches", func(t *testing.T) {
		assert.False(t, matcher.Matches(kitsilano, []string{"", "Library"}))
	})

	t.Run("substring of full name", func(t *testing.T) {
		central := &domain.LibraryBranch{
			Name:       "Vancouver Public Library - Central",
			BranchName: "Central",
		}
		assert.True(t, matcher.Matches(central, []string{"Central Library"}))
	})

	t.Run("alias", func(t *testing.T) {
		metrotown := &domain.LibraryBranch{
			Name:       "Metrotown Library",
			BranchName: "Metrotown Library",
			Aliases:    []string{"Bob Prittie Metrotown"},
		}
		assert.True(t, matcher.Matches(metrotown, []string{"Bob Prittie Metrotown Branch"}))
	})
}

func TestDeriveBranchName(t *testing.T) {
	prefixes := []string{"Vancouver Public Library - ", "VPL "}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"known prefix", "Vancouver Public Library - Kitsilano Branch", "Kitsilano Branch"},
		{"prefix case insensitive", "vancouver public library - Dunbar", "Dunbar"},
		{"short prefix", "VPL Renfrew", "Renfrew"},
		{"dash segment", "Surrey Libraries - City Centre", "City Centre"},
		{"plain name", "Oakridge Library", "Oakridge Library"},
		{"trailing dash", "Oakridge - ", "Oakridge - "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, usecase.DeriveBranchName(tt.input, prefixes))
		})
	}
}
