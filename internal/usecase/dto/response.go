package dto

import "github.com/library-availability/internal/domain"

// LibraryAvailabilityResponse - результат поиска книги по библиотекам
type LibraryAvailabilityResponse struct {
	ISBN      string                      `json:"isbn"`
	Libraries []domain.BranchAvailability `json:"libraries"`
}

// NearbyLibrariesResponse - филиалы рядом с точкой
type NearbyLibrariesResponse struct {
	Libraries []LibraryDTO `json:"libraries"`
}

// LibraryDTO - филиал в ответе API
type LibraryDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BranchName    string  `json:"branch_name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Type          string  `json:"type"`
	City          string  `json:"city"`
	Address       string  `json:"address,omitempty"`
	DistanceKm    float64 `json:"distance_km"`
	LibrarySystem *string `json:"library_system"`
	Source        string  `json:"source"`
}

// CatalogSystemsResponse - поддерживаемые каталожные системы
type CatalogSystemsResponse struct {
	Systems []domain.CatalogSystem `json:"systems"`
}

// NewLibraryDTO конвертирует филиал в DTO
func NewLibraryDTO(b *domain.LibraryBranch) LibraryDTO {
	d := LibraryDTO{
		ID:         b.ID,
		Name:       b.Name,
		BranchName: b.BranchName,
		Latitude:   b.Location.Lat,
		Longitude:  b.Location.Lon,
		Type:       b.Type,
		City:       b.City,
		Address:    b.Address,
		DistanceKm: b.DistanceKm,
		Source:     b.Source,
	}
	if b.HasSystem() {
		system := b.SystemID.Upper()
		d.LibrarySystem = &system
	}
	return d
}
