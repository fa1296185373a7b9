// Package config provides configuration management for the application.
package config

import (
	"github.com/spf13/viper"
)

// DefaultPriceTableURL is the public model-price registry the fetch tool
// refreshes the local table from.
const DefaultPriceTableURL = "https://raw.githubusercontent.com/BerriAI/litellm/main/model_prices_and_context_window.json"

// Config holds the application configuration
type Config struct {
	PriceTable PriceTableConfig
	Logging    LoggingConfig
}

// PriceTableConfig holds price-table location and refresh settings
type PriceTableConfig struct {
	// Path is the local JSON price table file
	Path string
	// URL is the registry document the fetch tool downloads
	URL string
	// FetchTimeoutSeconds bounds one registry download
	FetchTimeoutSeconds int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string
	// Format is "json" or "pretty"
	Format string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	// Load .env file using Viper (optional, won't fail if not found)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if .env file doesn't exist

	// Set defaults
	viper.SetDefault("PRICE_TABLE_PATH", ".cache/model_prices.json")
	viper.SetDefault("PRICE_TABLE_URL", DefaultPriceTableURL)
	viper.SetDefault("PRICE_FETCH_TIMEOUT_SECONDS", 30)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "pretty")

	// Enable automatic environment variable reading
	viper.AutomaticEnv()

	cfg := &Config{
		PriceTable: PriceTableConfig{
			Path:                viper.GetString("PRICE_TABLE_PATH"),
			URL:                 viper.GetString("PRICE_TABLE_URL"),
			FetchTimeoutSeconds: viper.GetInt("PRICE_FETCH_TIMEOUT_SECONDS"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}
