package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Addr        string `yaml:"addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	Database struct {
		// Driver is "sqlite3" or "postgres".
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Auth struct {
		Secret        string `yaml:"secret"`
		TokenTTLHours int    `yaml:"token_ttl_hours"`
	} `yaml:"auth"`

	// PublicMenu opens catalog reads to unauthenticated callers.
	PublicMenu bool `yaml:"public_menu"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Addr:        ":8080",
		MetricsAddr: ":9090",
		PublicMenu:  true,
	}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "bistro.db"
	cfg.Auth.Secret = "change-me"
	cfg.Auth.TokenTTLHours = 24
	return cfg
}

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	return cfg, nil
}
