package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// StaffConfig describes one staff member whose calendar is projected.
type StaffConfig struct {
	// Calendar is the scheduling-service calendar ID for this staff member.
	Calendar int64 `yaml:"calendar" json:"calendar"`
	// Name is a human-friendly label used for logging only.
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// BaseURL is the scheduling-service API root.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// LogLevel is the minimum log level ("DEBUG", "INFO", "ERROR").
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SampleMax caps how many appointments one calendar's sample fetch returns.
	SampleMax int `yaml:"sample_max" json:"sample_max"`

	// LookupMax caps how many appointments a per-student lookup returns.
	LookupMax int `yaml:"lookup_max" json:"lookup_max"`

	// Staff is the roster of calendars to process.
	Staff []StaffConfig `yaml:"staff" json:"staff"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://acuityscheduling.com/api/v1",
		LogLevel:  "INFO",
		SampleMax: 200,
		LookupMax: 30,
		Staff:     []StaffConfig{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = "https://acuityscheduling.com/api/v1"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.SampleMax <= 0 {
		c.SampleMax = 200
	}
	if c.LookupMax <= 0 {
		c.LookupMax = 30
	}
	if c.Staff == nil {
		c.Staff = []StaffConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".recurbook-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
