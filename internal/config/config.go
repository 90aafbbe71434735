package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// EnvPrefix prefixes every environment override, e.g. PUTIOKIT_PUTIO_API_KEY.
const EnvPrefix = "PUTIOKIT_"

const (
	MinTimeout = time.Second
	MaxTimeout = 10 * time.Minute
)

// Config represents the main application configuration
type Config struct {
	Loglevel string      `toml:"loglevel" env:"LOGLEVEL"`
	LogFile  string      `toml:"log_file" env:"LOG_FILE"`
	Putio    PutioConfig `toml:"putio" envPrefix:"PUTIO_"`
	Fake     FakeConfig  `toml:"fake" envPrefix:"FAKE_"`
}

// PutioConfig holds put.io API configuration
type PutioConfig struct {
	APIKey    string        `toml:"api_key" env:"API_KEY"`
	BaseURL   string        `toml:"base_url" env:"BASE_URL"`
	UploadURL string        `toml:"upload_url" env:"UPLOAD_URL"`
	Timeout   time.Duration `toml:"timeout" env:"TIMEOUT"`
	AppID     string        `toml:"app_id" env:"APP_ID"`
}

// FakeConfig configures the local fake put.io server.
type FakeConfig struct {
	BindAddress string `toml:"bind_address" env:"BIND_ADDRESS"`
	Port        int    `toml:"port" env:"PORT"`
	Token       string `toml:"token" env:"TOKEN"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Loglevel: "info",
		Putio: PutioConfig{
			BaseURL:   "https://api.put.io/v2",
			UploadURL: "https://upload.put.io/v2",
			Timeout:   30 * time.Second,
			AppID:     "6487",
		},
		Fake: FakeConfig{
			BindAddress: "127.0.0.1",
			Port:        9095,
			Token:       "fake-token",
		},
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "goputiokit")

	return filepath.Join(configDir, "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at configPath,
// a .env file in the working directory and PUTIOKIT_* environment variables,
// in that order. A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Loglevel); err != nil {
		return fmt.Errorf("loglevel must be one of: panic, fatal, error, warn, info, debug, trace")
	}

	for name, raw := range map[string]string{
		"putio.base_url":   c.Putio.BaseURL,
		"putio.upload_url": c.Putio.UploadURL,
	} {
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("%s is invalid: %v", name, err)
		}
	}

	if c.Putio.Timeout < MinTimeout || c.Putio.Timeout > MaxTimeout {
		return fmt.Errorf("putio.timeout must be between %s and %s", MinTimeout, MaxTimeout)
	}
	if c.Putio.AppID == "" {
		return fmt.Errorf("putio.app_id is required")
	}

	if c.Fake.Port < 0 || c.Fake.Port > 65535 {
		return fmt.Errorf("fake.port must be between 0 and 65535")
	}

	return nil
}

// RequireToken reports an error when no API key is configured.
func (c *Config) RequireToken() error {
	if c.Putio.APIKey == "" {
		return fmt.Errorf("putio.api_key is required (run get-token, or set %sPUTIO_API_KEY)", EnvPrefix)
	}
	return nil
}
