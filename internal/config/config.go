package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Pipeline  PipelineConfig
	Search    SearchConfig
	AI        AIConfig
	Database  DatabaseConfig
	Suppliers SuppliersConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PipelineConfig tunes extraction and ranking.
type PipelineConfig struct {
	PriceMin   float64 `mapstructure:"price_min"`
	PriceMax   float64 `mapstructure:"price_max"`
	MaxResults int     `mapstructure:"max_results"`
}

// SearchConfig tunes the live supplier-site path.
type SearchConfig struct {
	Workers        int           `mapstructure:"workers"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	OverallTimeout time.Duration `mapstructure:"overall_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Retention      time.Duration `mapstructure:"retention"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// DatabaseConfig holds Postgres configuration. An empty URL disables
// search history.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// SupplierSite is one storefront the live path queries.
type SupplierSite struct {
	Name     string `mapstructure:"name"`
	URL      string `mapstructure:"url"`
	Delivery string `mapstructure:"delivery"`
}

// SuppliersConfig overrides the built-in supplier knowledge. Empty values
// keep the defaults.
type SuppliersConfig struct {
	Aliases map[string]string `mapstructure:"aliases"`
	Sites   []SupplierSite    `mapstructure:"sites"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/material-hunter/")

	v.SetEnvPrefix("MATHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("pipeline.price_min", 1.0)
	v.SetDefault("pipeline.price_max", 2000.0)
	v.SetDefault("pipeline.max_results", 5)

	v.SetDefault("search.workers", 5)
	v.SetDefault("search.fetch_timeout", "10s")
	v.SetDefault("search.overall_timeout", "30s")
	v.SetDefault("search.user_agent", "material-hunter-bot/1.0")
	v.SetDefault("search.retention", "720h") // 30 days

	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.model", "")

	v.SetDefault("database.url", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Pipeline.PriceMin < 0 {
		return fmt.Errorf("pipeline.price_min must not be negative, got: %v", config.Pipeline.PriceMin)
	}
	if config.Pipeline.PriceMax <= config.Pipeline.PriceMin {
		return fmt.Errorf("pipeline.price_max must exceed price_min, got: %v <= %v",
			config.Pipeline.PriceMax, config.Pipeline.PriceMin)
	}
	if config.Search.Workers <= 0 {
		return fmt.Errorf("search.workers must be positive, got: %d", config.Search.Workers)
	}
	if config.AI.Provider == "perplexity" && config.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required for perplexity (set MATHUNT_AI_API_KEY)")
	}
	return nil
}
