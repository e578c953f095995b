package common

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ternarybob/lunchtime/internal/interfaces"
)

// PlacesAPIKeyName is the KV store key holding the Google Places API key
const PlacesAPIKeyName = "google_places_api_key"

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"required"` // "development" or "production"
	DotEnvFile  string          `toml:"dotenv_file"`                     // Optional .env file loaded before env overrides
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	PlacesAPI   PlacesAPIConfig `toml:"places_api"`
	Display     DisplayConfig   `toml:"display"`
	Dispatch    DispatchConfig  `toml:"dispatch"`
}

type StorageConfig struct {
	Type          string       `toml:"type" validate:"oneof=badger memory"` // "badger" (persistent) or "memory"
	Badger        BadgerConfig `toml:"badger"`
	VariablesFile string       `toml:"variables_file"` // dotenv-format KEY=value file loaded into the KV store at startup
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required_if=InMemory false"` // Database directory path
	InMemory       bool   `toml:"in_memory"`                                  // Keep everything in memory (tests, previews)
	ResetOnStartup bool   `toml:"reset_on_startup"`                           // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level" validate:"oneof=debug info warn error"`
	Output     []string `toml:"output" validate:"dive,oneof=stdout console file"`
	Dir        string   `toml:"dir"`         // Log file directory, default: <executable dir>/logs
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// PlacesAPIConfig contains Google Places API configuration
type PlacesAPIConfig struct {
	APIKey         string `toml:"api_key"`                           // Prefer LUNCHTIME_PLACES_API_KEY or the KV store
	BaseURL        string `toml:"base_url" validate:"omitempty,url"` // Nearby Search endpoint
	RequestTimeout string `toml:"request_timeout"`                   // Duration string, "0" or empty keeps the platform default
	RateLimit      string `toml:"rate_limit"`                        // Minimum spacing between requests, "0" or empty disables
}

// DisplayConfig holds presentation-adjacent settings used by derived strings
type DisplayConfig struct {
	Locale string `toml:"locale" validate:"required,bcp47_language_tag"` // BCP 47 tag for distance formatting
}

// DispatchConfig controls the completion context for asynchronous searches
type DispatchConfig struct {
	QueueSize int `toml:"queue_size" validate:"gte=1"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		DotEnvFile:  ".env",
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		PlacesAPI: PlacesAPIConfig{
			APIKey:         "", // Supplied externally, never committed
			BaseURL:        "https://maps.googleapis.com/maps/api/place/nearbysearch/json",
			RequestTimeout: "0",
			RateLimit:      "0",
		},
		Display: DisplayConfig{
			Locale: "en-US",
		},
		Dispatch: DispatchConfig{
			QueueSize: 16,
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> .env -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// .env never overrides variables already present in the environment
	if config.DotEnvFile != "" {
		if err := godotenv.Load(config.DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", config.DotEnvFile, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LUNCHTIME_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if storageType := os.Getenv("LUNCHTIME_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("LUNCHTIME_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if variablesFile := os.Getenv("LUNCHTIME_VARIABLES_FILE"); variablesFile != "" {
		config.Storage.VariablesFile = variablesFile
	}

	// Logging configuration
	if level := os.Getenv("LUNCHTIME_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LUNCHTIME_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		config.Logging.Output = outputs
	}

	// Places API configuration
	if apiKey := os.Getenv("LUNCHTIME_PLACES_API_KEY"); apiKey != "" {
		config.PlacesAPI.APIKey = apiKey
	}
	if baseURL := os.Getenv("LUNCHTIME_PLACES_BASE_URL"); baseURL != "" {
		config.PlacesAPI.BaseURL = baseURL
	}
	if timeout := os.Getenv("LUNCHTIME_PLACES_REQUEST_TIMEOUT"); timeout != "" {
		config.PlacesAPI.RequestTimeout = timeout
	}
	if rateLimit := os.Getenv("LUNCHTIME_PLACES_RATE_LIMIT"); rateLimit != "" {
		config.PlacesAPI.RateLimit = rateLimit
	}

	if locale := os.Getenv("LUNCHTIME_LOCALE"); locale != "" {
		config.Display.Locale = locale
	}
}

// Validate checks struct constraints and duration strings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := ParseDuration(c.PlacesAPI.RequestTimeout); err != nil {
		return fmt.Errorf("invalid configuration: places_api.request_timeout: %w", err)
	}
	if _, err := ParseDuration(c.PlacesAPI.RateLimit); err != nil {
		return fmt.Errorf("invalid configuration: places_api.rate_limit: %w", err)
	}

	return nil
}

// RequestTimeoutDuration returns the parsed HTTP timeout, zero meaning the platform default
func (c *PlacesAPIConfig) RequestTimeoutDuration() time.Duration {
	d, _ := ParseDuration(c.RequestTimeout)
	return d
}

// RateLimitDuration returns the parsed minimum request spacing, zero meaning unlimited
func (c *PlacesAPIConfig) RateLimitDuration() time.Duration {
	d, _ := ParseDuration(c.RateLimit)
	return d
}

// ParseDuration parses a Go duration string. Empty and "0" are zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}
	return d, nil
}

// ResolveAPIKey resolves an API key by name.
// Resolution order: environment variable → KV store → config fallback → error
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string]string{
		PlacesAPIKeyName: "LUNCHTIME_PLACES_API_KEY",
	}

	if envVarName, ok := keyToEnvMapping[name]; ok {
		if envValue := os.Getenv(envVarName); envValue != "" {
			return envValue, nil
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
