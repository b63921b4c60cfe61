package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/library-availability/internal/config"
	"github.com/library-availability/internal/domain"
)

const sampleResponse = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 101, "lat": 49.2799, "lon": -123.1156,
     "tags": {"amenity": "library", "name": "Vancouver Public Library - Central", "addr:city": "Vancouver", "addr:street": "West Georgia Street"}},
    {"type": "way", "id": 202, "center": {"lat": 49.2688, "lon": -123.1551},
     "tags": {"amenity": "library", "name": "Kitsilano Branch"}},
    {"type": "relation", "id": 303,
     "tags": {"amenity": "library", "name": "Area Without Centre"}},
    {"type": "node", "id": 404, "lat": 49.27, "lon": -123.10,
     "tags": {"amenity": "library"}}
  ]
}`

var downtown = domain.Coordinate{Lat: 49.2827, Lon: -123.1207}

func testConfig(endpoints ...string) *config.OverpassConfig {
	return &config.OverpassConfig{
		Endpoints:      endpoints,
		AttemptsPerURL: 2,
		Backoff:        time.Millisecond,
		HTTPTimeout:    2 * time.Second,
		QueryTimeout:   25,
	}
}

func TestClient_FindLibraries(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("successful request", func(t *testing.T) {
		var query string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.NoError(t, r.ParseForm())
			query = r.PostFormValue("data")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(sampleResponse))
		}))
		defer server.Close()

		c := NewClient(testConfig(server.URL), logger)
		assert.Equal(t, domain.SourceOverpass, c.Name())

		libs, err := c.FindLibraries(context.Background(), downtown, 15)
		require.NoError(t, err)
		require.Len(t, libs, 2)

		assert.Equal(t, "node/101", libs[0].ExternalID)
		assert.Equal(t, "Vancouver Public Library - Central", libs[0].Name)
		assert.Equal(t, 49.2799, libs[0].Location.Lat)
		assert.Equal(t, "Vancouver", libs[0].City)
		assert.Equal(t, "West Georgia Street", libs[0].Address)

		assert.Equal(t, "way/202", libs[1].ExternalID)
		assert.Equal(t, -123.1551, libs[1].Location.Lon)

		assert.True(t, strings.HasPrefix(query, "[out:json][timeout:25];"))
		assert.Contains(t, query, `node["amenity"="library"](around:15000,49.282700,-123.120700);`)
		assert.Contains(t, query, `way["amenity"="library"]`)
		assert.Contains(t, query, `relation["amenity"="library"]`)
		assert.Contains(t, query, "out center;")
	})

	t.Run("retries then falls over to next mirror", func(t *testing.T) {
		var badCalls, goodCalls int32
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&badCalls, 1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer bad.Close()

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&goodCalls, 1)
			w.Write([]byte(sampleResponse))
		}))
		defer good.Close()

		c := NewClient(testConfig(bad.URL, good.URL), logger)

		libs, err := c.FindLibraries(context.Background(), downtown, 15)
		require.NoError(t, err)
		assert.Len(t, libs, 2)
		assert.Equal(t, int32(2), atomic.LoadInt32(&badCalls))
		assert.Equal(t, int32(1), atomic.LoadInt32(&goodCalls))
	})

	t.Run("malformed body counts as failure", func(t *testing.T) {
		var calls int32
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte("<html>rate limited</html>"))
		}))
		defer broken.Close()

		c := NewClient(testConfig(broken.URL), logger)

		_, err := c.FindLibraries(context.Background(), downtown, 15)
		assert.ErrorIs(t, err, domain.ErrDiscoveryUnavailable)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("empty but valid response stops the loop", func(t *testing.T) {
		var secondCalls int32
		empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"elements": []}`))
		}))
		defer empty.Close()

		second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&secondCalls, 1)
			w.Write([]byte(sampleResponse))
		}))
		defer second.Close()

		c := NewClient(testConfig(empty.URL, second.URL), logger)

		libs, err := c.FindLibraries(context.Background(), downtown, 15)
		require.NoError(t, err)
		assert.Empty(t, libs)
		assert.Zero(t, atomic.LoadInt32(&secondCalls))
	})

	t.Run("all mirrors failing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGatewayTimeout)
		}))
		defer server.Close()

		c := NewClient(testConfig(server.URL, server.URL+"/other"), logger)

		libs, err := c.FindLibraries(context.Background(), downtown, 15)
		assert.ErrorIs(t, err, domain.ErrDiscoveryUnavailable)
		assert.Nil(t, libs)
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(testConfig(server.URL), logger)

		_, err := c.FindLibraries(ctx, downtown, 15)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
