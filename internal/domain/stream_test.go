package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityRequestEvent_HasISBN(t *testing.T) {
	tests := []struct {
		name     string
		isbn     string
		expected bool
	}{
		{"plain isbn13", "9780141439518", true},
		{"hyphenated", "978-0-14-143951-8", true},
		{"only separators", " - - ", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := AvailabilityRequestEvent{RequestID: uuid.New(), ISBN: tt.isbn}
			assert.Equal(t, tt.expected, e.HasISBN())
		})
	}
}

func TestAvailabilityRequestEvent_Decode(t *testing.T) {
	id := uuid.New()
	raw := `{"request_id":"` + id.String() + `","isbn":"9780141439518","latitude":49.2827,"longitude":-123.1207}`

	var e AvailabilityRequestEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, id, e.RequestID)
	assert.Equal(t, Coordinate{Lat: 49.2827, Lon: -123.1207}, e.Center())
	assert.Zero(t, e.MaxDistance)
}

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780141439518", NormalizeISBN(" 978-0-14 143951-8\n"))
	assert.Equal(t, "043942089X", NormalizeISBN("0-439-42089-X"))
}

func TestBranchAvailability_JSONNulls(t *testing.T) {
	row := BranchAvailability{
		ID:                 "2",
		Name:               "UBC Library",
		AvailableLocations: []string{},
		StatusText:         StatusNotTrackedLibrary,
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Nil(t, decoded["library_system"])
	assert.Contains(t, decoded, "library_system")
	assert.Nil(t, decoded["is_available"])
	assert.Nil(t, decoded["available_at_this_branch"])
	assert.NotContains(t, decoded, "error")
	assert.Equal(t, []interface{}{}, decoded["available_locations"])
}
