package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rhterrors "github.com/standardbeagle/rht/internal/errors"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Project.Root = "/src/engine"
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "engine", cfg.Project.Name)
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty root", func(c *Config) { c.Project.Root = "" }, "project"},
		{"negative workers", func(c *Config) { c.Extract.Workers = -1 }, "extract"},
		{"negative file size", func(c *Config) { c.Extract.MaxFileSize = -1 }, "extract"},
		{"huge file size", func(c *Config) { c.Extract.MaxFileSize = 1 << 30 }, "extract"},
		{"unknown kind", func(c *Config) { c.Extract.Kinds = []string{"Nope"} }, "extract"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, "watch.debounce_ms"},
		{"bad include", func(c *Config) { c.Include = []string{"src/[a-"} }, "include"},
		{"bad exclude", func(c *Config) { c.Exclude = []string{"{unclosed"} }, "exclude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			require.Error(t, err)
			var cfgErr *rhterrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateConfig_SmartDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Extract.MaxFileSize = 0
	cfg.Extract.Kinds = nil
	cfg.Project.Name = ""

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Extract.MaxFileSize)
	assert.Equal(t, DefaultKinds, cfg.Extract.Kinds)
	assert.Equal(t, "engine", cfg.Project.Name)
}
