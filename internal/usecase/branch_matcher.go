package usecase

import (
	"regexp"
	"strings"

	"github.com/library-availability/internal/domain"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	branchSuffixRe = regexp.MustCompile(`\s*(branch\s+library|branch|library)\s*$`)
)

// NormalizeBranchName приводит название филиала к виду для сравнения:
// нижний регистр, одиночные пробелы, без суффиксов "branch library", "branch", "library"
func NormalizeBranchName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = branchSuffixRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// BranchMatcher определяет, относится ли результат системы к конкретному филиалу
type BranchMatcher struct{}

// NewBranchMatcher создает BranchMatcher
func NewBranchMatcher() *BranchMatcher {
	return &BranchMatcher{}
}

// Matches проверяет, есть ли филиал среди мест, где книга доступна
func (m *BranchMatcher) Matches(branch *domain.LibraryBranch, availableLocations []string) bool {
	if len(availableLocations) == 0 {
		return false
	}

	available := make([]string, 0, len(availableLocations))
	for _, loc := range availableLocations {
		if n := NormalizeBranchName(loc); n != "" {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return false
	}

	candidates := make([]string, 0, 2+len(branch.Aliases))
	candidates = append(candidates, branch.Name, branch.BranchName)
	candidates = append(candidates, branch.Aliases...)

	for _, candidate := range candidates {
		name := NormalizeBranchName(candidate)
		if name == "" {
			continue
		}
		for _, avail := range available {
			if name == avail || strings.Contains(name, avail) || strings.Contains(avail, name) {
				return true
			}
		}
	}

	return false
}

// DeriveBranchName выделяет короткое название филиала из полного:
// убирает известные префиксы организации, иначе берёт часть после " - "
func DeriveBranchName(name string, prefixes []string) string {
	for _, p := range prefixes {
		if p == "" || len(name) <= len(p) {
			continue
		}
		if strings.EqualFold(name[:len(p)], p) {
			return strings.TrimSpace(name[len(p):])
		}
	}

	if idx := strings.LastIndex(name, " - "); idx >= 0 {
		if short := strings.TrimSpace(name[idx+3:]); short != "" {
			return short
		}
	}

	return name
}
