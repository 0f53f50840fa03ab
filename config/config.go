package config

import (
	"fmt"
	"path/filepath"
	"time"

	"argus/notify"

	"github.com/spf13/viper"
)

// DataPaths holds data directory and file path configuration.
// These paths can be overridden via environment variables.
type DataPaths struct {
	// DataDir is the base data directory (ARGUS_DATA_DIR, default: ./data)
	DataDir string `mapstructure:"data_dir"`
	// SQLitePath is the SQLite database file path (ARGUS_SQLITE_PATH, default: ${DataDir}/argus.db)
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config holds all configuration for the Argus service
type Config struct {
	// DataPaths holds all data directory configuration
	DataPaths DataPaths `mapstructure:"data_paths"`

	API struct {
		Host           string   `mapstructure:"host"`
		Port           int      `mapstructure:"port"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"api"`

	Classifier struct {
		// Provider selects the classifier backend: "llm" or "heuristic".
		// The heuristic backend needs no credentials and is the fallback
		// when no API key is configured.
		Provider string `mapstructure:"provider"`

		// BaseURL is an OpenAI-compatible chat completions endpoint
		BaseURL string `mapstructure:"base_url"`
		// APIKey authenticates against BaseURL (ARGUS_CLASSIFIER_API_KEY)
		APIKey string `mapstructure:"api_key"`

		Model              string  `mapstructure:"model"`
		Temperature        float64 `mapstructure:"temperature"`
		MaxTokens          int     `mapstructure:"max_tokens"`
		Language           string  `mapstructure:"language"`
		DetailLevel        string  `mapstructure:"detail_level"`
		RiskTolerance      string  `mapstructure:"risk_tolerance"`
		CustomInstructions string  `mapstructure:"custom_instructions"`
		MaxContextItems    int     `mapstructure:"max_context_items"`
	} `mapstructure:"classifier"`

	Intel struct {
		// CacheSize bounds the enrichment lookup cache (entries)
		CacheSize int `mapstructure:"cache_size"`
		// CacheTTL is how long a successful lookup stays cached
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"intel"`

	Notify struct {
		Channels []notify.ChannelConfig `mapstructure:"channels"`
	} `mapstructure:"notify"`
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("data_paths.data_dir", "./data")
	viper.SetDefault("data_paths.sqlite_path", "") // Empty = derive from data_dir

	viper.SetDefault("api.host", "127.0.0.1")
	viper.SetDefault("api.port", 8082)
	viper.SetDefault("api.allowed_origins", []string{"http://localhost:5173"})

	viper.SetDefault("classifier.provider", "heuristic")
	viper.SetDefault("classifier.base_url", "https://api.openai.com/v1")
	viper.SetDefault("classifier.model", "gpt-4o-mini")
	viper.SetDefault("classifier.temperature", 0.2)
	viper.SetDefault("classifier.max_tokens", 1024)
	viper.SetDefault("classifier.language", "english")
	viper.SetDefault("classifier.detail_level", "standard")
	viper.SetDefault("classifier.risk_tolerance", "balanced")
	viper.SetDefault("classifier.max_context_items", 10)

	viper.SetDefault("intel.cache_size", 1024)
	viper.SetDefault("intel.cache_ttl", 24*time.Hour)
}

// loadFromEnv wires environment variable overrides
func loadFromEnv() {
	viper.SetEnvPrefix("ARGUS")
	viper.AutomaticEnv()

	// Explicit bindings for shorter, cleaner env var names
	_ = viper.BindEnv("data_paths.data_dir", "ARGUS_DATA_DIR")
	_ = viper.BindEnv("data_paths.sqlite_path", "ARGUS_SQLITE_PATH")
	_ = viper.BindEnv("api.host", "ARGUS_API_HOST")
	_ = viper.BindEnv("api.port", "ARGUS_API_PORT")
	_ = viper.BindEnv("classifier.provider", "ARGUS_CLASSIFIER_PROVIDER")
	_ = viper.BindEnv("classifier.api_key", "ARGUS_CLASSIFIER_API_KEY")
	_ = viper.BindEnv("classifier.base_url", "ARGUS_CLASSIFIER_BASE_URL")
	_ = viper.BindEnv("classifier.model", "ARGUS_CLASSIFIER_MODEL")
}

// LoadConfig reads configuration from config.yaml, environment variables
// and built-in defaults. Environment variables win over the file, the file
// wins over defaults.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	config.ResolveDataPaths()

	return &config, nil
}

// ResolveDataPaths resolves path settings, deriving from DataDir when not
// explicitly set.
func (c *Config) ResolveDataPaths() {
	dataDir := c.DataPaths.DataDir
	if dataDir == "" {
		dataDir = "./data"
	}

	if c.DataPaths.SQLitePath == "" {
		c.DataPaths.SQLitePath = filepath.Join(dataDir, "argus.db")
	} else if !filepath.IsAbs(c.DataPaths.SQLitePath) {
		c.DataPaths.SQLitePath = filepath.Clean(c.DataPaths.SQLitePath)
	}

	c.DataPaths.DataDir = dataDir
}

// validate checks configuration consistency before anything starts up
func validate(config *Config) error {
	if config.API.Port < 1 || config.API.Port > 65535 {
		return fmt.Errorf("api.port must be between 1 and 65535, got %d", config.API.Port)
	}

	switch config.Classifier.Provider {
	case "llm":
		if config.Classifier.APIKey == "" {
			return fmt.Errorf("classifier.api_key is required when classifier.provider is \"llm\"")
		}
	case "heuristic", "":
	default:
		return fmt.Errorf("classifier.provider must be \"llm\" or \"heuristic\", got %q", config.Classifier.Provider)
	}

	if config.Intel.CacheSize < 0 {
		return fmt.Errorf("intel.cache_size must not be negative")
	}

	for i, ch := range config.Notify.Channels {
		if ch.ID == "" {
			return fmt.Errorf("notify.channels[%d] is missing an id", i)
		}
		if ch.URL == "" {
			return fmt.Errorf("notify channel %q is missing a url", ch.ID)
		}
	}

	return nil
}
