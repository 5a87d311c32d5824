package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	valid := func(mutate func(c *Config)) Config {
		c := DefaultConfig()
		c.RootPath = "defs"
		if mutate != nil {
			mutate(&c)
		}
		return c
	}

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: valid(nil)},
		{name: "missing root", cfg: Config{}, wantErr: "RootPath is a required configuration field"},
		{name: "bad policy", cfg: valid(func(c *Config) { c.MatchPolicy = "fuzzy" }), wantErr: "invalid match policy"},
		{name: "bad output format", cfg: valid(func(c *Config) { c.OutputFormat = "xml" }), wantErr: "invalid output format"},
		{name: "bad log format", cfg: valid(func(c *Config) { c.LogFormat = "xml" }), wantErr: "invalid log format"},
		{name: "bad log level", cfg: valid(func(c *Config) { c.LogLevel = "trace" }), wantErr: "invalid log level"},
		{name: "bad glob", cfg: valid(func(c *Config) { c.Exclude = []string{"[a-"} }), wantErr: "invalid glob pattern"},
		{name: "bad port", cfg: valid(func(c *Config) { c.Port = 70000 }), wantErr: "invalid port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "defs", cfg.RootPath)
		})
	}
}

func TestNewConfig_FillsOptionalFields(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(Config{RootPath: "defs", MatchPolicy: "CONTAINS", OutputFormat: "YAML"})
	require.NoError(t, err)

	assert.Equal(t, "contains", cfg.MatchPolicy)
	assert.Equal(t, "yaml", cfg.OutputFormat)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "pagegridgo.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
root = "definitions"
exclude = ["**/drafts/**"]
match_policy = "contains"
port = 9090
debounce = "1s"
`), 0o600))

	yamlPath := filepath.Join(dir, "pagegridgo.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
root: definitions
outputFormat: yaml
logLevel: debug
debounce: 500ms
`), 0o600))

	t.Run("toml", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		require.NoError(t, LoadConfigFile(tomlPath, &cfg))
		assert.Equal(t, "definitions", cfg.RootPath)
		assert.Equal(t, []string{"**/drafts/**"}, cfg.Exclude)
		assert.Equal(t, "contains", cfg.MatchPolicy)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, time.Second, cfg.Debounce)
		assert.Equal(t, "info", cfg.LogLevel, "unset keys keep their defaults")
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		require.NoError(t, LoadConfigFile(yamlPath, &cfg))
		assert.Equal(t, "definitions", cfg.RootPath)
		assert.Equal(t, "yaml", cfg.OutputFormat)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
		assert.Equal(t, 8080, cfg.Port)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(dir, "pagegridgo.ini")
		require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o600))
		cfg := DefaultConfig()
		require.ErrorContains(t, LoadConfigFile(path, &cfg), "unsupported config file")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		require.ErrorContains(t, LoadConfigFile(filepath.Join(dir, "absent.toml"), &cfg), "failed to read config file")
	})
}
