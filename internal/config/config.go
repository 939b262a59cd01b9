package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ProviderConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	APIKey  string            `mapstructure:"api_key"`
	Models  map[string]string `mapstructure:"models"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// SandboxConfig holds the execution service limits.
type SandboxConfig struct {
	ExecutionTimeoutMs int `mapstructure:"execution_timeout_ms"`
	MaxCodeLength      int `mapstructure:"max_code_length"`
}

// Timeout returns the wall-clock budget as a duration.
func (s SandboxConfig) Timeout() time.Duration {
	return time.Duration(s.ExecutionTimeoutMs) * time.Millisecond
}

type Config struct {
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	DefaultProvider string                    `mapstructure:"default_provider"`
	Server          ServerConfig              `mapstructure:"server"`
	Storage         StorageConfig             `mapstructure:"storage"`
	Sandbox         SandboxConfig             `mapstructure:"sandbox"`
}

// Load reads crucible.yaml from the working directory or ~/.crucible. A
// missing config file is not an error: every setting has a default.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("crucible")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.crucible")

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(os.Getenv("HOME"), ".crucible", "crucible.db"))
	v.SetDefault("sandbox.execution_timeout_ms", 10000)
	v.SetDefault("sandbox.max_code_length", 10000)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Expand environment variables in API keys
	for name, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "${") && strings.HasSuffix(p.APIKey, "}") {
			envVar := p.APIKey[2 : len(p.APIKey)-1]
			p.APIKey = os.Getenv(envVar)
			cfg.Providers[name] = p
		}
	}

	return &cfg, nil
}

// Provider returns the config for a named provider, falling back to the default.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	p, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}

// HasProviders reports whether any chat provider is configured.
func (c *Config) HasProviders() bool {
	return len(c.Providers) > 0
}
