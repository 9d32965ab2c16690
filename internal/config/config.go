package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for the Liftwise assistant.
// It is loaded from ~/.liftwise/config.yaml and can be overridden by
// environment variables.
type Config struct {
	Hevy    HevyConfig    `mapstructure:"hevy" yaml:"hevy"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// HevyConfig contains settings for the Hevy fitness API client.
type HevyConfig struct {
	// APIKey is the Hevy API key. Also read from LIFTWISE_HEVY_API_KEY.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// BaseURL is the API root. Defaults to the public v1 endpoint.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// PageSize is the page size for workout pagination.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
	// RequestsPerSecond throttles paginated fetch loops.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// LLMConfig contains configuration for Language Model providers.
type LLMConfig struct {
	// DefaultProvider specifies which provider to use by default (e.g., "openai", "ollama")
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`
	// Providers maps provider names to their specific configuration
	Providers map[string]ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// ProviderConfig contains configuration for a specific LLM provider.
type ProviderConfig struct {
	// Endpoint is the API endpoint URL (primarily used for local providers like Ollama)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// APIKey is the authentication key for the provider
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Model is the specific model to use with this provider
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// TimeoutSec is the per-request timeout in seconds
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// SearchConfig contains settings for the optional web-search enrichment.
type SearchConfig struct {
	// Enabled controls whether program analysis may call out to web search
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// SerpAPIKey is the SerpApi key. Also read from LIFTWISE_SEARCH_SERPAPI_KEY.
	SerpAPIKey string `mapstructure:"serpapi_key" yaml:"serpapi_key,omitempty"`
}

// ServerConfig contains settings for the HTTP API server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DataConfig contains settings for local state.
type DataConfig struct {
	// Dir is the state directory (default ~/.liftwise)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// PersistHistory enables the SQLite transcript store
	PersistHistory bool `mapstructure:"persist_history" yaml:"persist_history"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("trace", "debug", "info", "warn", "error")
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file; empty disables file output
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".liftwise")

	return &Config{
		Hevy: HevyConfig{
			APIKey:            "",
			BaseURL:           "https://api.hevyapp.com/v1",
			PageSize:          10,
			RequestsPerSecond: 5,
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]ProviderConfig{
				"openai": {
					APIKey: "",
					Model:  "gpt-4o-mini",
				},
				"ollama": {
					Endpoint: "http://127.0.0.1:11434",
					Model:    "llama3.2",
				},
			},
		},
		Search: SearchConfig{
			Enabled:    false,
			SerpAPIKey: "",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Data: DataConfig{
			Dir:            dataDir,
			PersistHistory: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "logs", "liftwise.log"),
		},
	}
}

// Load reads configuration from the default location (~/.liftwise/config.yaml)
// and merges with environment variables. If no config file exists, it creates
// one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".liftwise", "config.yaml")
	return LoadFromPath(configPath)
}

// LoadFromPath reads configuration from a specific file path and merges with
// environment variables. If the file doesn't exist, it creates one with
// default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	// Example: LIFTWISE_HEVY_API_KEY, LIFTWISE_LLM_PROVIDERS_OPENAI_API_KEY
	v.SetEnvPrefix("LIFTWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Data.Dir = expandPath(cfg.Data.Dir)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills in missing values so a sparse config file still works.
func (c *Config) applyDefaults() {
	d := Default()

	if c.Hevy.BaseURL == "" {
		c.Hevy.BaseURL = d.Hevy.BaseURL
	}
	if c.Hevy.PageSize <= 0 {
		c.Hevy.PageSize = d.Hevy.PageSize
	}
	if c.Hevy.RequestsPerSecond <= 0 {
		c.Hevy.RequestsPerSecond = d.Hevy.RequestsPerSecond
	}
	if c.LLM.DefaultProvider == "" {
		c.LLM.DefaultProvider = d.LLM.DefaultProvider
	}
	if c.LLM.Providers == nil {
		c.LLM.Providers = d.LLM.Providers
	}
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Data.Dir == "" {
		c.Data.Dir = d.Data.Dir
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// Save writes the current configuration to the default config file location.
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".liftwise", "config.yaml")
	return c.SaveToPath(configPath)
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// GetDataDir returns the Liftwise data directory path.
func (c *Config) GetDataDir() string {
	if c.Data.Dir != "" {
		return c.Data.Dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".liftwise")
}

// GetConfigPath returns the full path to the config file.
func (c *Config) GetConfigPath() string {
	return filepath.Join(c.GetDataDir(), "config.yaml")
}

// ServerAddr returns the host:port the HTTP server binds to.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EnsureDirectories creates all directories needed at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.GetDataDir(),
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Validate checks the configuration for common errors and inconsistencies.
func (c *Config) Validate() error {
	if c.Hevy.BaseURL == "" {
		return fmt.Errorf("hevy.base_url cannot be empty")
	}

	if c.Hevy.PageSize < 1 || c.Hevy.PageSize > 10 {
		return fmt.Errorf("hevy.page_size must be between 1 and 10 (API limit)")
	}

	if c.LLM.DefaultProvider == "" {
		return fmt.Errorf("llm.default_provider cannot be empty")
	}

	if _, exists := c.LLM.Providers[c.LLM.DefaultProvider]; !exists {
		return fmt.Errorf("default provider '%s' not found in providers map", c.LLM.DefaultProvider)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: trace, debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// writeConfigFile writes a Config struct to a YAML file.
// Uses gopkg.in/yaml.v3 directly to ensure proper tag-based serialization.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
