package postgresosm

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
)

// librariesNearQuery - точки и центроиды полигонов с amenity из списка в радиусе от центра
var librariesNearQuery = fmt.Sprintf(`
	WITH center AS (
		SELECT ST_SetSRID(ST_MakePoint($1, $2), %[1]d)::geography AS geom
	), src AS (
		SELECT osm_id, 'node' AS osm_type, name, way, tags
		FROM %[2]s
		WHERE amenity = ANY($4)
		UNION ALL
		SELECT osm_id,
			CASE WHEN osm_id < 0 THEN 'relation' ELSE 'way' END AS osm_type,
			name, ST_Centroid(way) AS way, tags
		FROM %[3]s
		WHERE amenity = ANY($4)
	), data AS (
		SELECT *, ST_Transform(way, %[1]d) AS w4326 FROM src
	)
	SELECT
		osm_id,
		osm_type,
		COALESCE(name, '') AS name,
		ST_Y(w4326) AS lat,
		ST_X(w4326) AS lon,
		COALESCE(hstore_to_json(tags), '{}'::json)::text AS tags_json,
		ST_Distance(w4326::geography, center.geom) AS distance
	FROM data, center
	WHERE ST_DWithin(w4326::geography, center.geom, $3)
	ORDER BY distance
	LIMIT $5
`, SRID4326, planetPointTable, planetPolygonTable)

type libraryRepository struct {
	db     *sqlx.DB
	parent *DB
	logger *zap.Logger
}

type libraryRow struct {
	OSMID    int64   `db:"osm_id"`
	OSMType  string  `db:"osm_type"`
	Name     string  `db:"name"`
	Lat      float64 `db:"lat"`
	Lon      float64 `db:"lon"`
	TagsJSON []byte  `db:"tags_json"`
	Distance float64 `db:"distance"`
}

func (r libraryRow) toDomain() domain.RawLibrary {
	tags := parseTags(r.TagsJSON)
	return domain.RawLibrary{
		ExternalID: externalID(r.OSMType, r.OSMID),
		Name:       strings.TrimSpace(r.Name),
		Location:   domain.Coordinate{Lat: r.Lat, Lon: r.Lon},
		City:       pickTag(tags, "addr:city", "is_in:city"),
		Address:    pickTag(tags, "addr:street"),
	}
}

// NewLibraryRepository создает источник библиотек поверх локальной OSM базы
func NewLibraryRepository(db *DB) repository.BranchSource {
	return &libraryRepository{
		db:     db.DB,
		parent: db,
		logger: db.logger,
	}
}

func (r *libraryRepository) Name() string {
	return domain.SourceOSMDB
}

func (r *libraryRepository) FindLibraries(ctx context.Context, center domain.Coordinate, radiusKm float64) ([]domain.RawLibrary, error) {
	if r.parent.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.parent.queryTimeout)
		defer cancel()
	}

	radiusMeters := radiusKm * 1000

	rows, err := r.db.QueryxContext(ctx, librariesNearQuery,
		center.Lon, center.Lat, radiusMeters, pq.Array(libraryAmenities), LimitLibraries)
	if err != nil {
		r.logger.Error("failed to query osm libraries", zap.Error(err))
		return nil, fmt.Errorf("failed to query osm libraries: %w", err)
	}
	defer rows.Close()

	result := make([]domain.RawLibrary, 0)
	for rows.Next() {
		var row libraryRow
		if err := rows.StructScan(&row); err != nil {
			r.logger.Error("failed to scan library row", zap.Error(err))
			continue
		}
		lib := row.toDomain()
		if lib.Name == "" {
			continue
		}
		result = append(result, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read osm libraries: %w", err)
	}

	r.logger.Debug("OSM database libraries found",
		zap.Int("count", len(result)),
		zap.Float64("radius_km", radiusKm))

	return result, nil
}
