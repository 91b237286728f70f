// Package config loads the console's deployment configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file at
// <user config dir>/schooladmin/config.yaml, a .env file in the working
// directory, and SCHOOLADMIN_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

const (
	configDirName  = "schooladmin"
	configFileName = "config.yaml"

	// DefaultBaseURL is the development backend address.
	DefaultBaseURL = "http://localhost:8000"
)

// Config holds the deployment configuration for the console.
type Config struct {
	// BaseURL is the backend's root address.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// PathPrefix is the fixed path the backend is served under in
	// production deployments; empty for development.
	PathPrefix string `yaml:"path_prefix" env:"PATH_PREFIX"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// Locale selects the collation used for sorted listings.
	Locale string `yaml:"locale" env:"LOCALE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		Locale:    "fr",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the effective configuration from defaults, the config file,
// .env, and environment variables.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr != nil {
				return cfg, apperrors.Wrap(apperrors.ErrCodeConfigLoad,
					fmt.Sprintf("could not parse %s", path), yamlErr)
			}
		}
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	if envErr := env.ParseWithOptions(&cfg, env.Options{Prefix: "SCHOOLADMIN_"}); envErr != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeConfigLoad, "could not parse environment", envErr)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot work with.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "base_url must not be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return apperrors.Newf(apperrors.ErrCodeConfigInvalid, "base_url %q must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout < 0 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "timeout must not be negative")
	}
	return nil
}

// Root returns the backend root including the deployment path prefix.
func (c Config) Root() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.PathPrefix == "" {
		return base
	}
	return base + "/" + strings.Trim(c.PathPrefix, "/")
}

// Path returns the location of the YAML config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeConfigLoad, "could not locate the user config directory", err)
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}
