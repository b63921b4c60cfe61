package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/library-availability/internal/config"
	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/pkg/metrics"
)

const queryTemplate = `[out:json][timeout:%d];
(
  node["amenity"="library"](around:%d,%f,%f);
  way["amenity"="library"](around:%d,%f,%f);
  relation["amenity"="library"](around:%d,%f,%f);
);
out center;`

type client struct {
	httpClient   *http.Client
	endpoints    []string
	attempts     int
	backoff      time.Duration
	queryTimeout int
	logger       *zap.Logger
}

// response - ответ Overpass API в формате [out:json]
type response struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewClient создает источник библиотек поверх зеркал Overpass API
func NewClient(cfg *config.OverpassConfig, logger *zap.Logger) repository.BranchSource {
	attempts := cfg.AttemptsPerURL
	if attempts <= 0 {
		attempts = 1
	}
	queryTimeout := cfg.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 25
	}
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		endpoints:    cfg.Endpoints,
		attempts:     attempts,
		backoff:      cfg.Backoff,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

func (c *client) Name() string {
	return domain.SourceOverpass
}

// FindLibraries опрашивает зеркала по порядку, по c.attempts попыток на зеркало.
// Первый успешно разобранный ответ возвращается, даже если он пустой.
func (c *client) FindLibraries(ctx context.Context, at domain.Coordinate, radiusKm float64) ([]domain.RawLibrary, error) {
	query := c.buildQuery(at, radiusKm)

	for _, endpoint := range c.endpoints {
		for attempt := 1; attempt <= c.attempts; attempt++ {
			resp, err := c.post(ctx, endpoint, query)
			if err == nil {
				libs := parseElements(resp.Elements)
				c.logger.Debug("Overpass query successful",
					zap.String("endpoint", endpoint),
					zap.Int("elements", len(resp.Elements)),
					zap.Int("libraries", len(libs)))
				return libs, nil
			}

			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			metrics.OverpassAttemptsFailed.WithLabelValues(endpoint).Inc()
			c.logger.Warn("Overpass request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err))

			if err := sleep(ctx, c.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Error("All Overpass endpoints failed", zap.Int("endpoints", len(c.endpoints)))
	return nil, domain.ErrDiscoveryUnavailable
}

func (c *client) buildQuery(at domain.Coordinate, radiusKm float64) string {
	radiusM := int(radiusKm * 1000)
	return fmt.Sprintf(queryTemplate,
		c.queryTimeout,
		radiusM, at.Lat, at.Lon,
		radiusM, at.Lat, at.Lon,
		radiusM, at.Lat, at.Lon,
	)
}

func (c *client) post(ctx context.Context, endpoint, query string) (*response, error) {
	form := url.Values{"data": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &out, nil
}

// parseElements пропускает объекты без имени и без координат
func parseElements(elements []element) []domain.RawLibrary {
	libs := make([]domain.RawLibrary, 0, len(elements))
	for _, el := range elements {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}

		var loc domain.Coordinate
		switch {
		case el.Type == "node" && el.Lat != nil && el.Lon != nil:
			loc = domain.Coordinate{Lat: *el.Lat, Lon: *el.Lon}
		case el.Center != nil:
			loc = domain.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}
		default:
			continue
		}

		libs = append(libs, domain.RawLibrary{
			ExternalID: fmt.Sprintf("%s/%d", el.Type, el.ID),
			Name:       name,
			Location:   loc,
			City:       el.Tags["addr:city"],
			Address:    el.Tags["addr:street"],
		})
	}
	return libs
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
