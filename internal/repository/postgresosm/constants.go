package postgresosm

const (
	SRID4326 = 4326

	// LimitLibraries - верхняя граница числа библиотек в одном ответе
	LimitLibraries = 200
)

const (
	planetPointTable   = "planet_osm_point"
	planetPolygonTable = "planet_osm_polygon"
)

// libraryAmenities - значения тега amenity, которые считаются библиотекой
var libraryAmenities = []string{"library"}
