package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	OSMDB    DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
	Overpass OverpassConfig
	Probe    ProbeConfig
	Browser  BrowserConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig - опциональная локальная база OSM (osm2pgsql + PostGIS)
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	DiscoveryCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type OverpassConfig struct {
	Endpoints      []string
	AttemptsPerURL int
	Backoff        time.Duration
	HTTPTimeout    time.Duration
	QueryTimeout   int
}

type ProbeConfig struct {
	Timeout          time.Duration
	NoResultsTimeout time.Duration
	RecordTimeout    time.Duration
	SummaryTimeout   time.Duration
	TableTimeout     time.Duration
	SettleDelay      time.Duration
}

type BrowserConfig struct {
	ExecPath  string
	Headless  bool
	UserAgent string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	Concurrency       int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

var defaultOverpassEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://lz4.overpass-api.de/api/interpreter",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8000)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_READ_TIMEOUT", 30)
	v.SetDefault("API_WRITE_TIMEOUT", 60)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("OSM_DB_ENABLED", false)
	v.SetDefault("OSM_DB_HOST", "localhost")
	v.SetDefault("OSM_DB_PORT", 5432)
	v.SetDefault("OSM_DB_USER", "osm")
	v.SetDefault("OSM_DB_NAME", "osm")
	v.SetDefault("OSM_DB_SSLMODE", "disable")
	v.SetDefault("OSM_DB_MAX_CONNS", 10)
	v.SetDefault("OSM_DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("OSM_DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("OSM_DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("OSM_DB_QUERY_TIMEOUT", 5)

	v.SetDefault("DISCOVERY_CACHE_TTL", 3600)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("OVERPASS_ENDPOINTS", strings.Join(defaultOverpassEndpoints, ","))
	v.SetDefault("OVERPASS_ATTEMPTS_PER_URL", 2)
	v.SetDefault("OVERPASS_BACKOFF_MS", 500)
	v.SetDefault("OVERPASS_HTTP_TIMEOUT", 20)
	v.SetDefault("OVERPASS_QUERY_TIMEOUT", 25)

	v.SetDefault("PROBE_TIMEOUT", 8000)
	v.SetDefault("PROBE_NO_RESULTS_TIMEOUT", 3000)
	v.SetDefault("PROBE_RECORD_TIMEOUT", 5000)
	v.SetDefault("PROBE_SUMMARY_TIMEOUT", 5000)
	v.SetDefault("PROBE_TABLE_TIMEOUT", 5000)
	v.SetDefault("PROBE_SETTLE_DELAY", 1000)

	v.SetDefault("BROWSER_HEADLESS", true)

	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONSUMER_GROUP", "library-availability-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_CONCURRENCY", 4)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile читает конфигурацию из указанного файла и окружения.
// Отсутствующий файл не является ошибкой: используются окружение и значения по умолчанию.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			ReadTimeout:  time.Duration(v.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		OSMDB: DatabaseConfig{
			Enabled:         v.GetBool("OSM_DB_ENABLED"),
			Host:            v.GetString("OSM_DB_HOST"),
			Port:            v.GetInt("OSM_DB_PORT"),
			User:            v.GetString("OSM_DB_USER"),
			Password:        v.GetString("OSM_DB_PASSWORD"),
			DBName:          v.GetString("OSM_DB_NAME"),
			SSLMode:         v.GetString("OSM_DB_SSLMODE"),
			MaxConns:        v.GetInt("OSM_DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("OSM_DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("OSM_DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("OSM_DB_CONN_MAX_IDLE_TIME")) * time.Second,
			QueryTimeout:    time.Duration(v.GetInt("OSM_DB_QUERY_TIMEOUT")) * time.Second,
		},
		Cache: CacheConfig{
			DiscoveryCacheTTL: time.Duration(v.GetInt("DISCOVERY_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Overpass: OverpassConfig{
			Endpoints:      parseList(v.GetString("OVERPASS_ENDPOINTS")),
			AttemptsPerURL: v.GetInt("OVERPASS_ATTEMPTS_PER_URL"),
			Backoff:        time.Duration(v.GetInt("OVERPASS_BACKOFF_MS")) * time.Millisecond,
			HTTPTimeout:    time.Duration(v.GetInt("OVERPASS_HTTP_TIMEOUT")) * time.Second,
			QueryTimeout:   v.GetInt("OVERPASS_QUERY_TIMEOUT"),
		},
		Probe: ProbeConfig{
			Timeout:          time.Duration(v.GetInt("PROBE_TIMEOUT")) * time.Millisecond,
			NoResultsTimeout: time.Duration(v.GetInt("PROBE_NO_RESULTS_TIMEOUT")) * time.Millisecond,
			RecordTimeout:    time.Duration(v.GetInt("PROBE_RECORD_TIMEOUT")) * time.Millisecond,
			SummaryTimeout:   time.Duration(v.GetInt("PROBE_SUMMARY_TIMEOUT")) * time.Millisecond,
			TableTimeout:     time.Duration(v.GetInt("PROBE_TABLE_TIMEOUT")) * time.Millisecond,
			SettleDelay:      time.Duration(v.GetInt("PROBE_SETTLE_DELAY")) * time.Millisecond,
		},
		Browser: BrowserConfig{
			ExecPath:  v.GetString("BROWSER_EXEC_PATH"),
			Headless:  v.GetBool("BROWSER_HEADLESS"),
			UserAgent: v.GetString("BROWSER_USER_AGENT"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			Concurrency:       v.GetInt("WORKER_CONCURRENCY"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if len(cfg.Overpass.Endpoints) == 0 {
		cfg.Overpass.Endpoints = append([]string(nil), defaultOverpassEndpoints...)
	}
	if cfg.Overpass.AttemptsPerURL <= 0 {
		cfg.Overpass.AttemptsPerURL = 1
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 1
	}

	return cfg, nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.OSMDB.Host,
		c.OSMDB.Port,
		c.OSMDB.User,
		c.OSMDB.Password,
		c.OSMDB.DBName,
		c.OSMDB.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
