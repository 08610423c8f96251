// ABOUTME: Calbal configuration management with default-user handling.
// ABOUTME: Handles settings, data paths, and the storage factory function.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/calbal/internal/storage"
)

// Config stores calbal tool configuration.
type Config struct {
	// DataDir is the root directory for data storage; calbal.db lives
	// here. Supports ~ expansion. Defaults to ~/.local/share/calbal.
	DataDir string `json:"data_dir,omitempty"`

	// DefaultUser is the user ID assumed when --user is not given.
	// A single-person install never needs to set this.
	DefaultUser string `json:"default_user,omitempty"`

	// BMRSchedule is the cron expression for the daemon's daily BMR
	// synthesis. Defaults to "5 0 * * *" (00:05 UTC).
	BMRSchedule string `json:"bmr_schedule,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDefaultUser returns the configured default user ID.
func (c *Config) GetDefaultUser() string {
	if c.DefaultUser == "" {
		return "local"
	}
	return c.DefaultUser
}

// GetBMRSchedule returns the daemon cron expression.
func (c *Config) GetBMRSchedule() string {
	if c.BMRSchedule == "" {
		return "5 0 * * *"
	}
	return c.BMRSchedule
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite ledger in the configured data directory.
func (c *Config) OpenStorage() (storage.Repository, error) {
	dbPath := filepath.Join(c.GetDataDir(), "calbal.db")
	repo, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return repo, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "calbal", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
