// Package config provides unified configuration loading for carbonpath.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/allcarbonfree/carbonpath/internal/constants"
	"gopkg.in/yaml.v3"
)

// CarbonpathConfig contains all carbonpath configuration settings.
type CarbonpathConfig struct {
	// Simulation holds the defaults applied to path runs.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Storage locates the database and decision log.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Backup controls database snapshots.
	Backup BackupConfig `json:"backup" yaml:"backup"`
}

// SimulationConfig holds run defaults. Flags and tool arguments override them.
type SimulationConfig struct {
	// Country is the country code simulated when none is given.
	Country string `json:"country" yaml:"country"`

	// StartingYear is the first historical year kept in a trajectory.
	StartingYear int `json:"starting_year" yaml:"starting_year"`

	// EndingYear is the last simulated year.
	EndingYear int `json:"ending_year" yaml:"ending_year"`

	// IncreaseEnergyUse enables baseline emissions growth each year.
	IncreaseEnergyUse bool `json:"increase_energy_use" yaml:"increase_energy_use"`

	// Workers bounds concurrent runs in batch mode.
	Workers int `json:"workers" yaml:"workers"`
}

// StorageConfig configures where carbonpath keeps its data.
type StorageConfig struct {
	// Dir is the data directory. Empty means ~/.carbonpath.
	// Supports ${VAR} syntax for env vars.
	Dir string `json:"dir" yaml:"dir"`
}

// BackupConfig configures database snapshots.
type BackupConfig struct {
	// Compression writes gzip snapshots with a checksummed header.
	Compression bool `json:"compression" yaml:"compression"`

	// MaxCount keeps the newest N snapshots. 0 disables the count rule.
	MaxCount int `json:"max_count" yaml:"max_count"`

	// MaxAge keeps snapshots younger than this ("30d", "2w", "720h").
	// Empty disables the age rule.
	MaxAge string `json:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// LoggingConfig configures carbonpath's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to decisions.jsonl in the data dir.
	// "trace" additionally logs per-year totals.
	Level string `json:"level" yaml:"level"`
}

// Default returns a CarbonpathConfig with sensible defaults.
func Default() *CarbonpathConfig {
	return &CarbonpathConfig{
		Simulation: SimulationConfig{
			Country:           constants.DefaultCountry,
			StartingYear:      constants.DefaultStartingYear,
			EndingYear:        constants.DefaultEndingYear,
			IncreaseEnergyUse: true,
			Workers:           4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Backup: BackupConfig{
			Compression: true,
			MaxCount:    10,
		},
	}
}

// DefaultPath returns ~/.carbonpath/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".carbonpath", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.carbonpath/config.yaml -> environment variables
func Load() (*CarbonpathConfig, error) {
	config := Default()

	// Try to load from default config file
	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*CarbonpathConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Storage.Dir = expandEnvVars(config.Storage.Dir)

	return config, nil
}

// Save writes the configuration to path, creating the parent directory.
func (c *CarbonpathConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *CarbonpathConfig) Validate() error {
	if c.Simulation.Country == "" {
		return fmt.Errorf("country must not be empty")
	}

	if c.Simulation.EndingYear < c.Simulation.StartingYear {
		return fmt.Errorf("ending_year %d is before starting_year %d", c.Simulation.EndingYear, c.Simulation.StartingYear)
	}

	if c.Simulation.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Simulation.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Backup.MaxCount < 0 {
		return fmt.Errorf("backup max_count must not be negative, got %d", c.Backup.MaxCount)
	}

	return nil
}

// Keys returns the dot-notation keys understood by Get and Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a configuration value by dot-notation key.
func (c *CarbonpathConfig) Get(key string) (interface{}, bool) {
	a, ok := accessors[key]
	if !ok {
		return nil, false
	}
	return a.get(c), true
}

// Set parses value and assigns it to the dot-notation key. The result is
// validated; on failure the config is left unchanged.
func (c *CarbonpathConfig) Set(key, value string) error {
	a, ok := accessors[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	next := *c
	if err := a.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

type accessor struct {
	get func(*CarbonpathConfig) interface{}
	set func(*CarbonpathConfig, string) error
}

var accessors = map[string]accessor{
	"simulation.country": {
		get: func(c *CarbonpathConfig) interface{} { return c.Simulation.Country },
		set: func(c *CarbonpathConfig, v string) error {
			c.Simulation.Country = strings.ToUpper(v)
			return nil
		},
	},
	"simulation.starting_year": {
		get: func(c *CarbonpathConfig) interface{} { return c.Simulation.StartingYear },
		set: func(c *CarbonpathConfig, v string) error { return setInt(&c.Simulation.StartingYear, v) },
	},
	"simulation.ending_year": {
		get: func(c *CarbonpathConfig) interface{} { return c.Simulation.EndingYear },
		set: func(c *CarbonpathConfig, v string) error { return setInt(&c.Simulation.EndingYear, v) },
	},
	"simulation.increase_energy_use": {
		get: func(c *CarbonpathConfig) interface{} { return c.Simulation.IncreaseEnergyUse },
		set: func(c *CarbonpathConfig, v string) error {
			c.Simulation.IncreaseEnergyUse = parseBool(v)
			return nil
		},
	},
	"simulation.workers": {
		get: func(c *CarbonpathConfig) interface{} { return c.Simulation.Workers },
		set: func(c *CarbonpathConfig, v string) error { return setInt(&c.Simulation.Workers, v) },
	},
	"storage.dir": {
		get: func(c *CarbonpathConfig) interface{} { return c.Storage.Dir },
		set: func(c *CarbonpathConfig, v string) error {
			c.Storage.Dir = v
			return nil
		},
	},
	"backup.compression": {
		get: func(c *CarbonpathConfig) interface{} { return c.Backup.Compression },
		set: func(c *CarbonpathConfig, v string) error {
			c.Backup.Compression = parseBool(v)
			return nil
		},
	},
	"backup.max_count": {
		get: func(c *CarbonpathConfig) interface{} { return c.Backup.MaxCount },
		set: func(c *CarbonpathConfig, v string) error { return setInt(&c.Backup.MaxCount, v) },
	},
	"backup.max_age": {
		get: func(c *CarbonpathConfig) interface{} { return c.Backup.MaxAge },
		set: func(c *CarbonpathConfig, v string) error {
			c.Backup.MaxAge = v
			return nil
		},
	},
	"logging.level": {
		get: func(c *CarbonpathConfig) interface{} { return c.Logging.Level },
		set: func(c *CarbonpathConfig, v string) error {
			c.Logging.Level = v
			return nil
		},
	},
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", v)
	}
	*dst = n
	return nil
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *CarbonpathConfig) {
	if v := os.Getenv("CARBONPATH_COUNTRY"); v != "" {
		config.Simulation.Country = strings.ToUpper(v)
	}

	if v := os.Getenv("CARBONPATH_STARTING_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.StartingYear = n
		}
	}
	if v := os.Getenv("CARBONPATH_ENDING_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.EndingYear = n
		}
	}

	if v := os.Getenv("CARBONPATH_INCREASE_ENERGY_USE"); v != "" {
		config.Simulation.IncreaseEnergyUse = parseBool(v)
	}

	if v := os.Getenv("CARBONPATH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Workers = n
		}
	}

	if v := os.Getenv("CARBONPATH_DIR"); v != "" {
		config.Storage.Dir = expandEnvVars(v)
	}

	if v := os.Getenv("CARBONPATH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
