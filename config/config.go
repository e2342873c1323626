package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration for the PD engine host.
type Config struct {
	Engine  EngineConfig   `yaml:"engine"`
	API     APIConfig      `yaml:"api"`
	Storage StorageConfig  `yaml:"storage"`
	Log     LogConfig      `yaml:"log"`
	Markets []MarketConfig `yaml:"markets"`
}

// EngineConfig controls the refresh loop and market import.
type EngineConfig struct {
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
	ImportLimit            int `yaml:"import_limit"`
}

// APIConfig holds the market data provider base URL.
type APIConfig struct {
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controls where the audit journal is persisted.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // path to the SQLite file, ":memory:", or "" to disable
}

// LogConfig controls the logging format and level.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// MarketConfig is a locally defined market seeded at startup, optionally
// with positions opened against it.
type MarketConfig struct {
	Question    string           `yaml:"question"`
	Probability float64          `yaml:"probability"`
	Positions   []PositionConfig `yaml:"positions"`
}

// PositionConfig is a position opened at startup on its parent market.
type PositionConfig struct {
	Side      string  `yaml:"side"` // LONG | SHORT
	Notional  float64 `yaml:"notional"`
	MarginPct float64 `yaml:"margin_pct"`
}

// Load reads the configuration from the YAML file and the .env file if
// present. Env values override the YAML for the keys they cover.
func Load(path string) (*Config, error) {
	// Load .env if present (silence the error when there is no file)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// RefreshInterval returns the quote refresh interval as a time.Duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Engine.RefreshIntervalSeconds) * time.Second
}

// applyEnvOverrides overrides values with environment variables if present.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PDBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults makes sure required values have sensible defaults.
func setDefaults(cfg *Config) {
	if cfg.Engine.RefreshIntervalSeconds <= 0 {
		cfg.Engine.RefreshIntervalSeconds = 30
	}
	if cfg.Engine.ImportLimit <= 0 {
		cfg.Engine.ImportLimit = 20
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
