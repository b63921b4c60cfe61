package dto

// LibraryAvailabilityRequest - запрос на поиск книги в ближайших библиотеках
type LibraryAvailabilityRequest struct {
	ISBN        string   `query:"isbn" validate:"required,max=32"`
	Lat         *float64 `query:"lat" validate:"required,min=-90,max=90"`
	Lng         *float64 `query:"lng" validate:"required,min=-180,max=180"`
	MaxDistance float64  `query:"max_distance" validate:"omitempty,min=0.1,max=100"` // km
}

// NearbyLibrariesRequest - запрос на поиск библиотек рядом с точкой
type NearbyLibrariesRequest struct {
	Lat         *float64 `query:"lat" validate:"required,min=-90,max=90"`
	Lng         *float64 `query:"lng" validate:"required,min=-180,max=180"`
	MaxDistance float64  `query:"max_distance" validate:"omitempty,min=0.1,max=100"` // km
}
