package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()
	t.Setenv("DB_PASSWORD", "testpass")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "host.docker.internal", cfg.Database.Host)
	assert.Equal(t, "ql2_hotelmatch", cfg.Database.Name)
	assert.Equal(t, 2, cfg.Database.PoolMin)
	assert.Equal(t, 10, cfg.Database.PoolMax)
	assert.Len(t, cfg.CORS.Origins, 2)

	assert.Equal(t, "public.daily_geobox_match", cfg.Review.Table)
	assert.Equal(t, "171", cfg.Review.ExcludedStatus)
	assert.Equal(t, "3333", cfg.Review.ExcludedSite)
	assert.Equal(t, "legacy", cfg.Review.Formula)
	assert.Equal(t, []int{-1, 50, 100, 200, 500}, cfg.Review.DistanceSteps)
	require.Len(t, cfg.Review.Sources, 6)
	assert.Equal(t, SourceConfig{Code: 1, Name: "Expedia"}, cfg.Review.Sources[0])
	assert.Equal(t, SourceConfig{Code: 714, Name: "Trip Advisor"}, cfg.Review.Sources[3])

	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars()
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	t.Setenv("MATCH_TABLE", "staging.matches")
	t.Setenv("DISTANCE_FORMULA", "HAVERSINE")
	t.Setenv("DISTANCE_STEPS", "0, 25 ,75")
	t.Setenv("SOURCES", "5:Hotels.com, 6 : Kayak")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5433", cfg.Database.Port)
	assert.Equal(t, "testdb", cfg.Database.Name)
	assert.Equal(t, "testuser", cfg.Database.User)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, 5, cfg.Database.PoolMin)
	assert.Equal(t, 20, cfg.Database.PoolMax)
	assert.Equal(t, []string{"http://example.com", "https://app.example.com"}, cfg.CORS.Origins)

	assert.Equal(t, "staging.matches", cfg.Review.Table)
	assert.Equal(t, "haversine", cfg.Review.Formula)
	assert.Equal(t, []int{0, 25, 75}, cfg.Review.DistanceSteps)
	assert.Equal(t, []SourceConfig{{Code: 5, Name: "Hotels.com"}, {Code: 6, Name: "Kayak"}}, cfg.Review.Sources)

	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 3, cfg.Cache.RedisDB)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_MissingPassword(t *testing.T) {
	clearConfigEnvVars()

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidReviewSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric step", key: "DISTANCE_STEPS", value: "-1,fifty"},
		{name: "unsorted steps", key: "DISTANCE_STEPS", value: "100,50"},
		{name: "empty steps", key: "DISTANCE_STEPS", value: " , "},
		{name: "source without code", key: "SOURCES", value: "Expedia"},
		{name: "source with bad code", key: "SOURCES", value: "x:Expedia"},
		{name: "source without name", key: "SOURCES", value: "1: "},
		{name: "duplicate source code", key: "SOURCES", value: "1:Expedia,1:Booking"},
		{name: "unknown formula", key: "DISTANCE_FORMULA", value: "vincenty"},
		{name: "unknown cache backend", key: "CACHE_BACKEND", value: "memcached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnvVars()
			t.Setenv("DB_PASSWORD", "testpass")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }},
		{name: "missing CORS origins", mutate: func(c *Config) { c.CORS.Origins = []string{} }},
		{name: "missing match table", mutate: func(c *Config) { c.Review.Table = "" }},
		{name: "missing distance steps", mutate: func(c *Config) { c.Review.DistanceSteps = nil }},
		{name: "missing redis address", mutate: func(c *Config) {
			c.Cache.Backend = CacheBackendRedis
			c.Cache.RedisAddr = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "multiple origins", input: "http://localhost:3000,http://localhost:3001", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "origins with spaces", input: " http://localhost:3000 , http://localhost:3001 ", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, parseOrigins(tt.input))
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "ql2_hotelmatch",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS: CORSConfig{Origins: []string{"http://localhost:3000"}},
		Review: ReviewConfig{
			Table:         "public.daily_geobox_match",
			Formula:       "legacy",
			DistanceSteps: []int{-1, 50, 100},
			Sources:       []SourceConfig{{Code: 1, Name: "Expedia"}},
		},
		Cache: CacheConfig{Backend: CacheBackendMemory},
	}
}

// clearConfigEnvVars unsets every variable Load reads so defaults apply.
func clearConfigEnvVars() {
	for _, key := range []string{
		"PORT", "ENV",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSLMODE", "DB_POOL_MIN", "DB_POOL_MAX",
		"CORS_ORIGINS",
		"MATCH_TABLE", "EXCLUDED_STATUS", "EXCLUDED_SITE", "DISTANCE_FORMULA", "DISTANCE_STEPS", "SOURCES",
		"CACHE_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"METRICS_ENABLED",
	} {
		os.Unsetenv(key)
	}
}
