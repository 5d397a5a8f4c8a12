// Package config loads and validates service configuration.
//
// Values come from built-in defaults, an optional itinerary.yml file and the
// environment, with the environment taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"itinerary-scoring-service/internal/domain"

	"github.com/spf13/viper"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheMemory   = "memory"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// Config holds all configuration values for the service and its tools.
type Config struct {
	// Env is "development" or "production". Development logs are colored text.
	Env      string
	Port     string
	LogLevel string

	// GoogleMapsAPIKey enables place and route lookups. When empty the
	// pipeline runs without enrichment.
	GoogleMapsAPIKey string
	MapsBaseURL      string
	Language         string
	Region           string
	TravelMode       string

	CacheBackend string
	// CacheTTL bounds how long lookups are reused. Zero keeps them forever.
	CacheTTL    time.Duration
	DatabaseURL string
	SQLitePath  string
	RedisAddr   string

	MaxConcurrency   int
	LookupTimeout    time.Duration
	PipelineDeadline time.Duration
	RetryAttempts    int
	RetryBackoff     time.Duration

	PenaltyThreshold float64
	LodgingKeywords  []string
	AllowDegraded    bool

	CORSOrigins []string
}

// IsDevelopment reports whether the service runs in a local environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"PORT":                "8080",
	"LOG_LEVEL":           "info",
	"MAPS_BASE_URL":       "https://maps.googleapis.com/maps/api",
	"MAPS_LANGUAGE":       "zh-TW",
	"MAPS_REGION":         "tw",
	"TRAVEL_MODE":         "driving",
	"CACHE_BACKEND":       CacheMemory,
	"CACHE_TTL":           "0s",
	"SQLITE_PATH":         "data/cache.db",
	"MAX_CONCURRENCY":     8,
	"LOOKUP_TIMEOUT":      "10s",
	"PIPELINE_DEADLINE":   "4m",
	"RETRY_ATTEMPTS":      3,
	"RETRY_BACKOFF":       "200ms",
	"PENALTY_THRESHOLD":   0.25,
	"LODGING_KEYWORDS":    strings.Join(domain.DefaultLodgingKeywords, ","),
	"ALLOW_DEGRADED":      true,
	"CORS_ORIGINS":        "http://localhost:5173",
	"GOOGLE_MAPS_API_KEY": "",
	"DATABASE_URL":        "",
	"REDIS_ADDR":          "",
}

// Load reads the configuration and validates it.
// The returned error names every offending key.
func Load() (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("itinerary")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Env:              strings.ToLower(v.GetString("APP_ENV")),
		Port:             v.GetString("PORT"),
		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		GoogleMapsAPIKey: strings.TrimSpace(v.GetString("GOOGLE_MAPS_API_KEY")),
		MapsBaseURL:      strings.TrimRight(v.GetString("MAPS_BASE_URL"), "/"),
		Language:         v.GetString("MAPS_LANGUAGE"),
		Region:           v.GetString("MAPS_REGION"),
		TravelMode:       strings.ToLower(v.GetString("TRAVEL_MODE")),
		CacheBackend:     strings.ToLower(v.GetString("CACHE_BACKEND")),
		CacheTTL:         v.GetDuration("CACHE_TTL"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		MaxConcurrency:   v.GetInt("MAX_CONCURRENCY"),
		LookupTimeout:    v.GetDuration("LOOKUP_TIMEOUT"),
		PipelineDeadline: v.GetDuration("PIPELINE_DEADLINE"),
		RetryAttempts:    v.GetInt("RETRY_ATTEMPTS"),
		RetryBackoff:     v.GetDuration("RETRY_BACKOFF"),
		PenaltyThreshold: v.GetFloat64("PENALTY_THRESHOLD"),
		LodgingKeywords:  splitCSV(v.GetString("LODGING_KEYWORDS")),
		AllowDegraded:    v.GetBool("ALLOW_DEGRADED"),
		CORSOrigins:      splitCSV(v.GetString("CORS_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	var problems []string

	switch c.CacheBackend {
	case CacheMemory, CacheSQLite:
	case CachePostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when CACHE_BACKEND=postgres")
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		problems = append(problems, fmt.Sprintf("CACHE_BACKEND %q is not one of memory, sqlite, postgres, redis", c.CacheBackend))
	}

	if c.CacheTTL < 0 {
		problems = append(problems, "CACHE_TTL must not be negative")
	}
	if c.MaxConcurrency < 1 {
		problems = append(problems, "MAX_CONCURRENCY must be at least 1")
	}
	if c.LookupTimeout <= 0 {
		problems = append(problems, "LOOKUP_TIMEOUT must be positive")
	}
	if c.PipelineDeadline <= 0 {
		problems = append(problems, "PIPELINE_DEADLINE must be positive")
	}
	if c.RetryAttempts < 1 {
		problems = append(problems, "RETRY_ATTEMPTS must be at least 1")
	}
	if c.RetryBackoff <= 0 {
		problems = append(problems, "RETRY_BACKOFF must be positive")
	}
	if c.PenaltyThreshold <= 0 || c.PenaltyThreshold >= 1 {
		problems = append(problems, "PENALTY_THRESHOLD must be in (0, 1)")
	}

	switch c.TravelMode {
	case "driving", "walking", "bicycling", "transit":
	default:
		problems = append(problems, fmt.Sprintf("TRAVEL_MODE %q is not one of driving, walking, bicycling, transit", c.TravelMode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}

// Get returns the environment variable named by key, or fallback if it is
// unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
