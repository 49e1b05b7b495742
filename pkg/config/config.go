// Package config provides configuration management for SafeFlow.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dipjyotimetia/SafeFlow-sub002/pkg/pathutil"
)

// Config represents the application configuration.
type Config struct {
	Paths        *pathutil.PathResolver
	Prices       PriceConfig
	Gemini       GeminiConfig
	BaseCurrency string
	Debug        bool
}

// PriceConfig represents quote API configuration.
type PriceConfig struct {
	APIURL   string
	APIKey   string
	CacheTTL time.Duration
}

// GeminiConfig represents Gemini categorisation configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	ttl, err := parseDurationEnv("SAFEFLOW_PRICE_CACHE_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(getEnvOrDefault("SAFEFLOW_BASE_CURRENCY", "AUD"))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid SAFEFLOW_BASE_CURRENCY: %q", currency)
	}

	config := &Config{
		Paths: pathutil.New(pathutil.Config{
			DataDir:            os.Getenv("SAFEFLOW_DATA_DIR"),
			DatabasePath:       os.Getenv("SAFEFLOW_DB_PATH"),
			PriceCachePath:     os.Getenv("SAFEFLOW_PRICE_CACHE_PATH"),
			RulesPath:          os.Getenv("SAFEFLOW_RULES_PATH"),
			ExportRoot:         os.Getenv("SAFEFLOW_EXPORT_ROOT"),
			AccountMappingPath: os.Getenv("SAFEFLOW_ACCOUNT_MAPPING"),
		}),
		Prices: PriceConfig{
			APIURL:   os.Getenv("SAFEFLOW_PRICE_API_URL"),
			APIKey:   os.Getenv("SAFEFLOW_PRICE_API_KEY"),
			CacheTTL: ttl,
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  os.Getenv("GEMINI_MODEL"),
		},
		BaseCurrency: currency,
		Debug:        os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks that every named key is set, e.g. []string{"prices", "apiUrl"}.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "prices":
			switch path[1] {
			case "apiUrl":
				value = c.Prices.APIURL
			case "apiKey":
				value = c.Prices.APIKey
			}
		case "gemini":
			switch path[1] {
			case "apiKey":
				value = c.Gemini.APIKey
			case "model":
				value = c.Gemini.Model
			}
		case "paths":
			switch path[1] {
			case "dataDir":
				value = c.Paths.GetDataDir()
			case "exportRoot":
				value = c.Paths.GetExportRoot()
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv parses a duration such as "15m" from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}

	return parsed, nil
}
