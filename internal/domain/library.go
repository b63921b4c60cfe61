package domain

import "strings"

// Источники, из которых получен филиал
const (
	SourceOverpass = "overpass"
	SourceOSMDB    = "osm_db"
	SourceFallback = "fallback"
	SourceCache    = "cache"
)

// Coordinate - географическая точка (WGS 84)
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid проверяет диапазоны широты и долготы
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// CatalogSystemID - ключ каталожной системы (например "vpl").
// Пустая строка означает, что система не определена.
type CatalogSystemID string

// Upper возвращает идентификатор в верхнем регистре для ответа API
func (id CatalogSystemID) Upper() string {
	return strings.ToUpper(string(id))
}

// RawLibrary - библиотека в том виде, в котором её вернул источник геоданных
type RawLibrary struct {
	ExternalID string     `json:"external_id,omitempty"`
	Name       string     `json:"name"`
	Location   Coordinate `json:"location"`
	City       string     `json:"city,omitempty"`
	Address    string     `json:"address,omitempty"`
}

// LibraryBranch - физический филиал библиотеки
type LibraryBranch struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	BranchName string          `json:"branch_name"`
	Location   Coordinate      `json:"location"`
	SystemID   CatalogSystemID `json:"system_id,omitempty"`
	Type       string          `json:"type"`
	City       string          `json:"city"`
	Region     string          `json:"region,omitempty"`
	Address    string          `json:"address,omitempty"`
	DistanceKm float64         `json:"distance_km"`
	Aliases    []string        `json:"aliases,omitempty"`
	Source     string          `json:"source"`

	// distanceSet отличает вычисленное расстояние от нулевого значения
	distanceSet bool
}

// HasSystem проверяет, привязан ли филиал к каталожной системе
func (b *LibraryBranch) HasSystem() bool {
	return b.SystemID != ""
}

// HasDistance проверяет, было ли расстояние уже вычислено
func (b *LibraryBranch) HasDistance() bool {
	return b.distanceSet
}

// SetDistance фиксирует расстояние до центра поиска
func (b *LibraryBranch) SetDistance(km float64) {
	b.DistanceKm = km
	b.distanceSet = true
}

// CatalogSystem - описание каталожной системы, к которой можно отправить проверку
type CatalogSystem struct {
	ID      CatalogSystemID `json:"id" mapstructure:"id"`
	Name    string          `json:"name" mapstructure:"name"`
	Vendor  string          `json:"vendor" mapstructure:"vendor"`
	BaseURL string          `json:"base_url" mapstructure:"base_url"`
}
