package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Simulation.Country != "WRL" {
		t.Errorf("expected Country 'WRL', got '%s'", config.Simulation.Country)
	}
	if config.Simulation.StartingYear != 2000 || config.Simulation.EndingYear != 2100 {
		t.Errorf("expected years 2000..2100, got %d..%d", config.Simulation.StartingYear, config.Simulation.EndingYear)
	}
	if !config.Simulation.IncreaseEnergyUse {
		t.Error("expected IncreaseEnergyUse to be true by default")
	}
	if config.Simulation.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Simulation.Workers)
	}
	if config.Storage.Dir != "" {
		t.Errorf("expected empty Storage.Dir, got '%s'", config.Storage.Dir)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  country: USA
  ending_year: 2060
  increase_energy_use: false
  workers: 2
logging:
  level: trace
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.Country != "USA" {
		t.Errorf("expected Country 'USA', got '%s'", config.Simulation.Country)
	}
	if config.Simulation.EndingYear != 2060 {
		t.Errorf("expected EndingYear 2060, got %d", config.Simulation.EndingYear)
	}
	// Unset keys keep their defaults.
	if config.Simulation.StartingYear != 2000 {
		t.Errorf("expected StartingYear 2000, got %d", config.Simulation.StartingYear)
	}
	if config.Simulation.IncreaseEnergyUse {
		t.Error("expected IncreaseEnergyUse to be false")
	}
	if config.Simulation.Workers != 2 {
		t.Errorf("expected Workers 2, got %d", config.Simulation.Workers)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_CARBONPATH_DATA", "/srv/data")
	configContent := "storage:\n  dir: ${TEST_CARBONPATH_DATA}/carbonpath\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Storage.Dir != "/srv/data/carbonpath" {
		t.Errorf("expected expanded dir, got '%s'", config.Storage.Dir)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
simulation:
  country: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_UsesHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	path := filepath.Join(home, ".carbonpath", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("simulation:\n  country: DEU\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Simulation.Country != "DEU" {
		t.Errorf("expected Country 'DEU', got '%s'", config.Simulation.Country)
	}
}

func TestLoad_NoFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(config, Default()) {
		t.Errorf("expected defaults, got %+v", config)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CARBONPATH_COUNTRY", "fra")
	t.Setenv("CARBONPATH_STARTING_YEAR", "2005")
	t.Setenv("CARBONPATH_ENDING_YEAR", "2050")
	t.Setenv("CARBONPATH_INCREASE_ENERGY_USE", "0")
	t.Setenv("CARBONPATH_WORKERS", "8")
	t.Setenv("CARBONPATH_DIR", "/tmp/cp")
	t.Setenv("CARBONPATH_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	want := SimulationConfig{
		Country:           "FRA",
		StartingYear:      2005,
		EndingYear:        2050,
		IncreaseEnergyUse: false,
		Workers:           8,
	}
	if config.Simulation != want {
		t.Errorf("Simulation = %+v, want %+v", config.Simulation, want)
	}
	if config.Storage.Dir != "/tmp/cp" {
		t.Errorf("expected Storage.Dir '/tmp/cp', got '%s'", config.Storage.Dir)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("CARBONPATH_WORKERS", "many")
	t.Setenv("CARBONPATH_ENDING_YEAR", "soon")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Workers != 4 {
		t.Errorf("expected Workers 4, got %d", config.Simulation.Workers)
	}
	if config.Simulation.EndingYear != 2100 {
		t.Errorf("expected EndingYear 2100, got %d", config.Simulation.EndingYear)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CarbonpathConfig)
		wantErr bool
	}{
		{"defaults", func(c *CarbonpathConfig) {}, false},
		{"empty country", func(c *CarbonpathConfig) { c.Simulation.Country = "" }, true},
		{"reversed years", func(c *CarbonpathConfig) { c.Simulation.EndingYear = 1999 }, true},
		{"same year", func(c *CarbonpathConfig) { c.Simulation.EndingYear = 2000 }, false},
		{"zero workers", func(c *CarbonpathConfig) { c.Simulation.Workers = 0 }, true},
		{"invalid log level", func(c *CarbonpathConfig) { c.Logging.Level = "verbose" }, true},
		{"empty log level", func(c *CarbonpathConfig) { c.Logging.Level = "" }, false},
		{"debug log level", func(c *CarbonpathConfig) { c.Logging.Level = "debug" }, false},
		{"trace log level", func(c *CarbonpathConfig) { c.Logging.Level = "trace" }, false},
		{"negative backup count", func(c *CarbonpathConfig) { c.Backup.MaxCount = -1 }, true},
		{"unlimited backups", func(c *CarbonpathConfig) { c.Backup.MaxCount = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	config := Default()

	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"simulation.country", "usa", "USA"},
		{"simulation.starting_year", "1990", 1990},
		{"simulation.ending_year", "2070", 2070},
		{"simulation.increase_energy_use", "false", false},
		{"simulation.workers", "2", 2},
		{"storage.dir", "/data", "/data"},
		{"logging.level", "trace", "trace"},
		{"backup.compression", "false", false},
		{"backup.max_count", "3", 3},
		{"backup.max_age", "30d", "30d"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := config.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%s) error: %v", tt.key, err)
			}
			got, ok := config.Get(tt.key)
			if !ok {
				t.Fatalf("Get(%s) not found", tt.key)
			}
			if got != tt.want {
				t.Errorf("Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	if len(Keys()) != len(tests) {
		t.Errorf("Keys() = %v, want %d keys", Keys(), len(tests))
	}
}

func TestSet_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "llm.provider", "x"},
		{"not an integer", "simulation.workers", "lots"},
		{"fails validation", "simulation.workers", "0"},
		{"bad level", "logging.level", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			if err := config.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%s, %s) expected error", tt.key, tt.value)
			}
			if !reflect.DeepEqual(config, Default()) {
				t.Errorf("config changed after failed Set: %+v", config)
			}
		})
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := Default()
	config.Simulation.Country = "IND"
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, config) {
		t.Errorf("loaded = %+v, want %+v", loaded, config)
	}
}
