package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Review   ReviewConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds the warehouse connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// SourceConfig maps a listing site code to its display name.
type SourceConfig struct {
	Name string
	Code int
}

// ReviewConfig holds the match review settings.
type ReviewConfig struct {
	Table          string
	ExcludedStatus string
	ExcludedSite   string
	Formula        string
	DistanceSteps  []int
	Sources        []SourceConfig
}

// CacheConfig selects where query results are memoized.
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// MetricsConfig toggles the /metrics endpoint.
type MetricsConfig struct {
	Enabled bool
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

const (
	defaultDistanceSteps = "-1,50,100,200,500"
	defaultSources       = "1:Expedia,33:Booking,620:Agoda,714:Trip Advisor,888:Trivago,10:Priceline"
)

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "ql2_hotelmatch")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("MATCH_TABLE", "public.daily_geobox_match")
	v.SetDefault("EXCLUDED_STATUS", "171")
	v.SetDefault("EXCLUDED_SITE", "3333")
	v.SetDefault("DISTANCE_FORMULA", "legacy")
	v.SetDefault("DISTANCE_STEPS", defaultDistanceSteps)
	v.SetDefault("SOURCES", defaultSources)
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("METRICS_ENABLED", true)

	// Bind environment variables
	v.AutomaticEnv()

	steps, err := parseDistanceSteps(v.GetString("DISTANCE_STEPS"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	sources, err := parseSources(v.GetString("SOURCES"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Review: ReviewConfig{
			Table:          v.GetString("MATCH_TABLE"),
			ExcludedStatus: v.GetString("EXCLUDED_STATUS"),
			ExcludedSite:   v.GetString("EXCLUDED_SITE"),
			Formula:        strings.ToLower(v.GetString("DISTANCE_FORMULA")),
			DistanceSteps:  steps,
			Sources:        sources,
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Validate review config
	if c.Review.Table == "" {
		return fmt.Errorf("MATCH_TABLE is required")
	}
	if c.Review.Formula != "legacy" && c.Review.Formula != "haversine" {
		return fmt.Errorf("DISTANCE_FORMULA must be legacy or haversine, got %q", c.Review.Formula)
	}
	if len(c.Review.DistanceSteps) == 0 {
		return fmt.Errorf("DISTANCE_STEPS must list at least one distance")
	}
	if !sort.IntsAreSorted(c.Review.DistanceSteps) {
		return fmt.Errorf("DISTANCE_STEPS must be in ascending order")
	}
	seen := make(map[int]bool, len(c.Review.Sources))
	for _, s := range c.Review.Sources {
		if seen[s.Code] {
			return fmt.Errorf("SOURCES lists site %d more than once", s.Code)
		}
		seen[s.Code] = true
	}

	// Validate cache config
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.Cache.Backend)
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseDistanceSteps reads a comma-separated list of meters, e.g. "-1,50,100".
func parseDistanceSteps(raw string) ([]int, error) {
	parts := parseOrigins(raw)
	steps := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := cast.ToIntE(part)
		if err != nil {
			return nil, fmt.Errorf("DISTANCE_STEPS: %q is not a whole number of meters", part)
		}
		steps = append(steps, n)
	}
	return steps, nil
}

// parseSources reads "code:name" pairs, e.g. "1:Expedia,33:Booking".
// Order is kept; it is the order sources are listed to reviewers.
func parseSources(raw string) ([]SourceConfig, error) {
	parts := parseOrigins(raw)
	sources := make([]SourceConfig, 0, len(parts))
	for _, part := range parts {
		code, name, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("SOURCES: %q must be code:name", part)
		}
		n, err := cast.ToIntE(strings.TrimSpace(code))
		if err != nil {
			return nil, fmt.Errorf("SOURCES: site code %q is not a number", code)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("SOURCES: site %d has no name", n)
		}
		sources = append(sources, SourceConfig{Code: n, Name: name})
	}
	return sources, nil
}
