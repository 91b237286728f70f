package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/IbtissamELANSARI/school-management-app/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.PathPrefix)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "fr", cfg.Locale)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "default is valid",
			mutate: func(*Config) {},
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *Config) { c.BaseURL = "backend.example.com" },
			wantErr: true,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.CodeOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRoot(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		prefix string
		want   string
	}{
		{"no prefix", "http://localhost:8000", "", "http://localhost:8000"},
		{"trailing slash trimmed", "http://localhost:8000/", "", "http://localhost:8000"},
		{"prefix joined", "https://college.example.com", "school-management-app", "https://college.example.com/school-management-app"},
		{"prefix slashes normalized", "https://college.example.com/", "/school-management-app/", "https://college.example.com/school-management-app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{BaseURL: tt.base, PathPrefix: tt.prefix}
			assert.Equal(t, tt.want, cfg.Root())
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCHOOLADMIN_BASE_URL", "https://backend.test")
	t.Setenv("SCHOOLADMIN_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://backend.test", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SCHOOLADMIN_BASE_URL", "not-a-url")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.CodeOf(err))
}
