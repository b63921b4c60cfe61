// Package catalogdata содержит встроенный справочник каталожных систем:
// таблицу сопоставления названий библиотек с системами, правила по городам,
// префиксы названий филиалов и резервный список филиалов на случай,
// когда сервис геоданных недоступен.
package catalogdata

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/library-availability/internal/domain"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// SystemAlias - подстрока названия, однозначно указывающая на систему
type SystemAlias struct {
	Key      string                 `mapstructure:"key"`
	SystemID domain.CatalogSystemID `mapstructure:"system_id"`
}

// CityRule - эвристика "город в названии -> муниципальная система"
type CityRule struct {
	Keyword  string                 `mapstructure:"keyword"`
	SystemID domain.CatalogSystemID `mapstructure:"system_id"`
	Exclude  []string               `mapstructure:"exclude"`
}

// FallbackBranch - запись резервного списка филиалов
type FallbackBranch struct {
	ID        string                 `mapstructure:"id"`
	Name      string                 `mapstructure:"name"`
	SystemID  domain.CatalogSystemID `mapstructure:"system_id"`
	Latitude  float64                `mapstructure:"latitude"`
	Longitude float64                `mapstructure:"longitude"`
	Type      string                 `mapstructure:"type"`
	City      string                 `mapstructure:"city"`
	Region    string                 `mapstructure:"region"`
	Aliases   []string               `mapstructure:"aliases"`
}

// Dataset - неизменяемый справочник, загружаемый один раз при старте
type Dataset struct {
	Systems           []domain.CatalogSystem `mapstructure:"systems"`
	Aliases           []SystemAlias          `mapstructure:"aliases"`
	CityRules         []CityRule             `mapstructure:"city_rules"`
	BranchPrefixes    []string               `mapstructure:"branch_prefixes"`
	FallbackLibraries []FallbackBranch       `mapstructure:"fallback_libraries"`
}

// Load загружает встроенный справочник
func Load() (*Dataset, error) {
	return LoadFrom(bytes.NewReader(embeddedCatalog))
}

// LoadFrom загружает справочник в формате YAML из r
func LoadFrom(r io.Reader) (*Dataset, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("failed to read catalog dataset: %w", err)
	}

	var ds Dataset
	if err := v.Unmarshal(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode catalog dataset: %w", err)
	}

	if err := ds.validate(); err != nil {
		return nil, err
	}

	return &ds, nil
}

// System возвращает описание системы по идентификатору
func (d *Dataset) System(id domain.CatalogSystemID) (domain.CatalogSystem, bool) {
	for _, s := range d.Systems {
		if s.ID == id {
			return s, true
		}
	}
	return domain.CatalogSystem{}, false
}

// Branches возвращает копию резервного списка в виде филиалов.
// Расстояние и производные поля заполняет BranchLocator.
func (d *Dataset) Branches() []domain.LibraryBranch {
	branches := make([]domain.LibraryBranch, 0, len(d.FallbackLibraries))
	for _, fb := range d.FallbackLibraries {
		aliases := make([]string, len(fb.Aliases))
		copy(aliases, fb.Aliases)

		branchType := fb.Type
		if branchType == "" {
			branchType = "library"
		}

		branches = append(branches, domain.LibraryBranch{
			ID:       fb.ID,
			Name:     fb.Name,
			Location: domain.Coordinate{Lat: fb.Latitude, Lon: fb.Longitude},
			SystemID: fb.SystemID,
			Type:     branchType,
			City:     fb.City,
			Region:   fb.Region,
			Aliases:  aliases,
			Source:   domain.SourceFallback,
		})
	}
	return branches
}

func (d *Dataset) validate() error {
	known := make(map[domain.CatalogSystemID]struct{}, len(d.Systems))
	for _, s := range d.Systems {
		if s.ID == "" {
			return fmt.Errorf("catalog dataset: system without id")
		}
		known[s.ID] = struct{}{}
	}

	for _, a := range d.Aliases {
		if a.Key == "" {
			return fmt.Errorf("catalog dataset: empty alias key for %q", a.SystemID)
		}
		if _, ok := known[a.SystemID]; !ok {
			return fmt.Errorf("catalog dataset: alias %q refers to unknown system %q", a.Key, a.SystemID)
		}
	}

	for _, r := range d.CityRules {
		if _, ok := known[r.SystemID]; !ok {
			return fmt.Errorf("catalog dataset: city rule %q refers to unknown system %q", r.Keyword, r.SystemID)
		}
	}

	for _, fb := range d.FallbackLibraries {
		if fb.SystemID == "" {
			continue
		}
		if _, ok := known[fb.SystemID]; !ok {
			return fmt.Errorf("catalog dataset: fallback branch %q refers to unknown system %q", fb.Name, fb.SystemID)
		}
	}

	return nil
}
