package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamAvailabilityRequest = "stream:library:availability:request"
	StreamAvailabilityDone    = "stream:library:availability:done"
)

// AvailabilityRequestEvent - входящее событие на проверку наличия книги
type AvailabilityRequestEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	ISBN        string    `json:"isbn"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	MaxDistance float64   `json:"max_distance,omitempty"`
}

// AvailabilityDoneEvent - результат проверки наличия
type AvailabilityDoneEvent struct {
	RequestID uuid.UUID            `json:"request_id"`
	ISBN      string               `json:"isbn"`
	Libraries []BranchAvailability `json:"libraries"`
	Error     string               `json:"error,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}

// Center возвращает точку поиска запроса
func (e *AvailabilityRequestEvent) Center() Coordinate {
	return Coordinate{Lat: e.Latitude, Lon: e.Longitude}
}

// HasISBN проверяет, что после нормализации ISBN не пустой
func (e *AvailabilityRequestEvent) HasISBN() bool {
	return NormalizeISBN(e.ISBN) != ""
}
