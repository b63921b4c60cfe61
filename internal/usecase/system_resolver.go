package usecase

import (
	"strings"

	"github.com/library-availability/internal/catalogdata"
	"github.com/library-availability/internal/domain"
)

// SystemResolver сопоставляет название библиотеки с каталожной системой
type SystemResolver struct {
	aliases   []catalogdata.SystemAlias
	cityRules []catalogdata.CityRule
}

// NewSystemResolver создает SystemResolver. Порядок aliases значим:
// побеждает первая совпавшая подстрока.
func NewSystemResolver(aliases []catalogdata.SystemAlias, cityRules []catalogdata.CityRule) *SystemResolver {
	r := &SystemResolver{
		aliases:   make([]catalogdata.SystemAlias, 0, len(aliases)),
		cityRules: make([]catalogdata.CityRule, 0, len(cityRules)),
	}
	for _, a := range aliases {
		r.aliases = append(r.aliases, catalogdata.SystemAlias{
			Key:      strings.ToLower(a.Key),
			SystemID: a.SystemID,
		})
	}
	for _, c := range cityRules {
		exclude := make([]string, len(c.Exclude))
		for i, e := range c.Exclude {
			exclude[i] = strings.ToLower(e)
		}
		r.cityRules = append(r.cityRules, catalogdata.CityRule{
			Keyword:  strings.ToLower(c.Keyword),
			SystemID: c.SystemID,
			Exclude:  exclude,
		})
	}
	return r
}

// NewSystemResolverFromDataset создает SystemResolver из встроенного справочника
func NewSystemResolverFromDataset(ds *catalogdata.Dataset) *SystemResolver {
	return NewSystemResolver(ds.Aliases, ds.CityRules)
}

// Resolve возвращает систему для названия филиала или false,
// если филиал не относится ни к одной известной системе
func (r *SystemResolver) Resolve(name string) (domain.CatalogSystemID, bool) {
	lower := strings.ToLower(name)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}

	for _, a := range r.aliases {
		if strings.Contains(lower, a.Key) {
			return a.SystemID, true
		}
	}

	for _, rule := range r.cityRules {
		if !strings.Contains(lower, rule.Keyword) {
			continue
		}
		if containsAny(lower, rule.Exclude) {
			continue
		}
		return rule.SystemID, true
	}

	return "", false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
