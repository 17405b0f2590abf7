// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/courtview/internal/domain/rankings"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// scheduleParser accepts standard five-field crontab lines, an optional
// leading seconds field, and descriptors such as "@every 1h".
var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Relational store connection. The password is usually supplied via
	// COURTVIEW_DB_PASSWORD rather than the config file.
	DBHost     string `koanf:"db_host"`
	DBPort     int    `koanf:"db_port"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`

	// Connection pool bounds.
	DBMaxOpenConns     int `koanf:"db_max_open_conns"`
	DBMaxIdleConns     int `koanf:"db_max_idle_conns"`
	DBConnMaxIdleTimeS int `koanf:"db_conn_max_idle_time_s"`
	DBConnectTimeoutMS int `koanf:"db_connect_timeout_ms"`
	DBQueryTimeoutMS   int `koanf:"db_query_timeout_ms"`

	// CacheBackend is "memory" or "redis".
	CacheBackend string `koanf:"cache_backend"`
	// CacheTTLS expires cached results; 0 keeps them for the process lifetime.
	CacheTTLS int `koanf:"cache_ttl_s"`
	// CacheMaxEntries bounds the memory backend; 0 is unbounded.
	CacheMaxEntries int `koanf:"cache_max_entries"`
	// CacheRefreshCron re-executes the cached queries on a cron schedule
	// (optional seconds field). Empty disables it.
	CacheRefreshCron string `koanf:"cache_refresh_cron"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// DefaultRankLow and DefaultRankHigh seed the rank slider.
	DefaultRankLow  int `koanf:"default_rank_low"`
	DefaultRankHigh int `koanf:"default_rank_high"`

	// Years is the closed set offered by the year selector.
	Years []int `koanf:"years"`

	// HistogramBins is the bin count for rank and points distributions.
	HistogramBins int `koanf:"histogram_bins"`

	// Warmup loads both result sets on start.
	Warmup bool `koanf:"warmup"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		DBHost:             "localhost",
		DBPort:             3306,
		DBUser:             "root",
		DBName:             "tennis",
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     5,
		DBConnMaxIdleTimeS: 300,
		DBConnectTimeoutMS: 5000,
		DBQueryTimeoutMS:   10000,
		CacheBackend:       CacheBackendMemory,
		RedisAddr:          "localhost:6379",
		DefaultRankLow:     1,
		DefaultRankHigh:    24,
		Years:              []int{2024},
		HistogramBins:      20,
		Warmup:             true,
	}
}

// DBAddr joins host and port.
func (c *Config) DBAddr() string {
	return net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
}

// QueryTimeout returns the per-statement timeout.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.DBQueryTimeoutMS) * time.Millisecond
}

// ConnectTimeout returns the dial timeout.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.DBConnectTimeoutMS) * time.Millisecond
}

// ConnMaxIdleTime returns how long an idle pooled connection is kept.
func (c *Config) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.DBConnMaxIdleTimeS) * time.Second
}

// CacheTTL returns the cache expiry; zero means never.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLS) * time.Second
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBHost) == "":
		return fmt.Errorf("%w: db_host must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBName) == "":
		return fmt.Errorf("%w: db_name must not be empty", ErrInvalidConfig)
	case c.DBPort <= 0 || c.DBPort > 65535:
		return fmt.Errorf("%w: db_port %d out of range", ErrInvalidConfig, c.DBPort)
	case c.DBQueryTimeoutMS <= 0:
		return fmt.Errorf("%w: db_query_timeout_ms must be positive", ErrInvalidConfig)
	case c.CacheTTLS < 0:
		return fmt.Errorf("%w: cache_ttl_s must not be negative", ErrInvalidConfig)
	case c.CacheMaxEntries < 0:
		return fmt.Errorf("%w: cache_max_entries must not be negative", ErrInvalidConfig)
	case len(c.Years) == 0:
		return fmt.Errorf("%w: years must not be empty", ErrInvalidConfig)
	case c.HistogramBins <= 0:
		return fmt.Errorf("%w: histogram_bins must be positive", ErrInvalidConfig)
	}

	r := rankings.Range{Low: c.DefaultRankLow, High: c.DefaultRankHigh}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: default rank range: %w", ErrInvalidConfig, err)
	}
	if c.CacheRefreshCron != "" {
		if _, err := scheduleParser.Parse(c.CacheRefreshCron); err != nil {
			return fmt.Errorf("%w: cache_refresh_cron %q: %w", ErrInvalidConfig, c.CacheRefreshCron, err)
		}
	}

	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis cache backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}
