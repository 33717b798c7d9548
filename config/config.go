package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Pipeline PipelineConfig
	Notify   NotifyConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int32  `mapstructure:"max_connections"`
}

// AIConfig holds the optional AI classification backend configuration.
// Leave the provider empty to run the classifier on keyword rules alone.
type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds ingestion pipeline tuning
type PipelineConfig struct {
	FallbackProvinceID int64         `mapstructure:"fallback_province_id"`
	ItemDelay          time.Duration `mapstructure:"item_delay"`
	ListingCacheTTL    time.Duration `mapstructure:"listing_cache_ttl"`
	FallbackThreshold  float64       `mapstructure:"fallback_threshold"`
}

// NotifyConfig holds the admin notification webhook configuration
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/campnest/")

	// Environment variable settings
	v.SetEnvPrefix("CAMPNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind keys that have no default so Unmarshal can see their env values
	for _, key := range []string{
		"database.url",
		"ai.provider",
		"ai.api_key",
		"ai.model",
		"ai.base_url",
		"notify.webhook_url",
	} {
		_ = v.BindEnv(key)
	}

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.max_connections", 10)

	// AI defaults
	v.SetDefault("ai.timeout", "15s")

	// Pipeline defaults
	v.SetDefault("pipeline.fallback_province_id", 1)
	v.SetDefault("pipeline.item_delay", "200ms")
	v.SetDefault("pipeline.listing_cache_ttl", "5m")
	v.SetDefault("pipeline.fallback_threshold", 0.7)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.URL == "" {
		return fmt.Errorf("database URL is required (set CAMPNEST_DATABASE_URL)")
	}

	switch config.AI.Provider {
	case "", "openai", "anthropic", "ollama":
	default:
		return fmt.Errorf("ai provider must be 'openai', 'anthropic', 'ollama' or empty, got: %s", config.AI.Provider)
	}

	if config.AI.Provider != "" && config.AI.Provider != "ollama" && config.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required when provider %q is configured", config.AI.Provider)
	}

	if config.Pipeline.FallbackProvinceID <= 0 {
		return fmt.Errorf("fallback province id must be positive, got: %d", config.Pipeline.FallbackProvinceID)
	}

	return nil
}
