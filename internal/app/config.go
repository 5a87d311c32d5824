package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/specialistvlad/pagegridgo/internal/fsutil"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce is how long watch mode waits for source changes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RootPath string   `toml:"root" yaml:"root"` // definition tree
	Include  []string `toml:"include" yaml:"include"`
	Exclude  []string `toml:"exclude" yaml:"exclude"`

	MatchPolicy string `toml:"match_policy" yaml:"matchPolicy"`

	LogFormat string `toml:"log_format" yaml:"logFormat"`
	LogLevel  string `toml:"log_level" yaml:"logLevel"`

	OutputDir    string `toml:"output_dir" yaml:"outputDir"`
	OutputFormat string `toml:"output_format" yaml:"outputFormat"`

	Port     int           `toml:"port" yaml:"port"`
	Watch    bool          `toml:"watch" yaml:"watch"`
	Debounce time.Duration `toml:"debounce" yaml:"debounce"`
}

// DefaultConfig returns the configuration used before a config file or
// flags are applied.
func DefaultConfig() Config {
	return Config{
		MatchPolicy:  string(pageconfig.MatchExact),
		LogFormat:    "text",
		LogLevel:     "info",
		OutputDir:    "pageconfigs",
		OutputFormat: string(pageconfig.FormatJSON),
		Port:         8080,
		Debounce:     DefaultDebounce,
	}
}

// LoadConfigFile decodes a .toml, .yaml or .yml file over cfg. Keys the file
// does not set keep their current values.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file %s: must be .toml, .yaml or .yml", path)
	}
	return nil
}

// NewConfig validates cfg and fills in empty optional fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RootPath == "" {
		return nil, errors.New("RootPath is a required configuration field and cannot be empty")
	}

	policy, err := pageconfig.ParseMatchPolicy(cfg.MatchPolicy)
	if err != nil {
		return nil, err
	}
	cfg.MatchPolicy = string(policy)

	format, err := pageconfig.ParseFormat(strings.ToLower(cfg.OutputFormat))
	if err != nil {
		return nil, err
	}
	cfg.OutputFormat = string(format)

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	if err := (fsutil.FindOptions{Include: cfg.Include, Exclude: cfg.Exclude}).ValidatePatterns(); err != nil {
		return nil, err
	}

	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &cfg, nil
}
