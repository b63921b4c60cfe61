package domain

import "strings"

// Статусы, которые попадают в ответ без результата проверки
const (
	StatusNotInCatalog      = "Not in catalog"
	StatusCouldNotCheck     = "Could not check availability"
	StatusNotTrackedLibrary = "Not a tracked library system"
)

// AvailabilitySummary - сводка по экземплярам в каталожной системе
type AvailabilitySummary struct {
	StatusText string `json:"status_text"`
	Copies     int    `json:"copies"`
	OnOrder    int    `json:"on_order"`
	Holds      int    `json:"holds"`
}

// AvailabilityResult - результат одной проверки (одна система, один ISBN)
type AvailabilityResult struct {
	SystemID           CatalogSystemID     `json:"system_id"`
	ISBN               string              `json:"isbn"`
	RecordID           string              `json:"record_id,omitempty"`
	IsAvailable        bool                `json:"is_available"`
	AvailableLocations []string            `json:"available_locations"`
	Summary            AvailabilitySummary `json:"summary"`
	NotFound           bool                `json:"not_found"`
}

// NewNotFoundResult создает окончательный отрицательный результат
func NewNotFoundResult(systemID CatalogSystemID, isbn string) *AvailabilityResult {
	return &AvailabilityResult{
		SystemID:           systemID,
		ISBN:               isbn,
		AvailableLocations: []string{},
		Summary:            AvailabilitySummary{StatusText: StatusNotInCatalog},
		NotFound:           true,
	}
}

// BranchAvailability - строка итогового ответа: филиал и наличие книги в нём
type BranchAvailability struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	Type                  string   `json:"type"`
	City                  string   `json:"city"`
	DistanceKm            float64  `json:"distance_km"`
	LibrarySystem         *string  `json:"library_system"`
	IsAvailable           *bool    `json:"is_available"`
	AvailableLocations    []string `json:"available_locations"`
	Holds                 int      `json:"holds"`
	Copies                int      `json:"copies"`
	OnOrder               int      `json:"on_order"`
	StatusText            string   `json:"status_text"`
	AvailableAtThisBranch *bool    `json:"available_at_this_branch"`
	Error                 bool     `json:"error,omitempty"`
}

// NormalizeISBN удаляет дефисы и пробельные символы
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, isbn)
}
