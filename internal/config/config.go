package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	StationURL               string  `yaml:"station_url"`
	Verbose                  bool    `yaml:"verbose"`
	DryRun                   bool    `yaml:"dry_run"`
	SpotifyClientID          string  `yaml:"spotify_client_id"`
	SpotifyClientSecret      string  `yaml:"spotify_client_secret"`
	SpotifyPlaylistID        string  `yaml:"spotify_playlist_id"`
	ConfidenceThreshold      float64 `yaml:"confidence_threshold"`
	DedupWindowMinutes       int     `yaml:"dedup_window_minutes"`
	MaxConsecutiveDuplicates int     `yaml:"max_consecutive_duplicates"`
	ArchiveDir               string  `yaml:"archive_dir"`
	CacheFile                string  `yaml:"cache_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	dataDir := filepath.Join(homeDir(), ".local", "share", "radiosync")
	return Config{
		Verbose:                  false,
		DryRun:                   false,
		ConfidenceThreshold:      70,
		DedupWindowMinutes:       30,
		MaxConsecutiveDuplicates: 5,
		ArchiveDir:               filepath.Join(dataDir, "archive"),
		CacheFile:                filepath.Join(dataDir, "recent.json"),
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.ArchiveDir = ExpandHome(cfg.ArchiveDir)
	cfg.CacheFile = ExpandHome(cfg.CacheFile)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./radiosync.yaml",
		"./radiosync.yml",
		filepath.Join(home, ".config", "radiosync", "config.yaml"),
		filepath.Join(home, ".config", "radiosync", "config.yml"),
		filepath.Join(home, ".radiosync.yaml"),
		filepath.Join(home, ".radiosync.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "radiosync", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "radiosync", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.StationURL == "" {
		return fmt.Errorf("station URL cannot be empty")
	}
	if !strings.HasPrefix(c.StationURL, "http://") && !strings.HasPrefix(c.StationURL, "https://") {
		return fmt.Errorf("station URL must start with http:// or https://")
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return fmt.Errorf("confidence_threshold must be between 0 and 100, got %.1f", c.ConfidenceThreshold)
	}

	if c.DedupWindowMinutes < 1 {
		return fmt.Errorf("dedup_window_minutes must be at least 1, got %d", c.DedupWindowMinutes)
	}

	if c.MaxConsecutiveDuplicates < 1 {
		return fmt.Errorf("max_consecutive_duplicates must be at least 1, got %d", c.MaxConsecutiveDuplicates)
	}

	if c.ArchiveDir == "" {
		return fmt.Errorf("archive_dir cannot be empty")
	}
	if c.CacheFile == "" {
		return fmt.Errorf("cache_file cannot be empty")
	}

	// Dry run never writes to the playlist, so credentials may be
	// omitted; searches then fail per-song and archive as not found
	if !c.DryRun {
		if c.SpotifyClientID == "" {
			return fmt.Errorf("spotify_client_id is required")
		}
		if c.SpotifyClientSecret == "" {
			return fmt.Errorf("spotify_client_secret is required")
		}
		if c.SpotifyPlaylistID == "" {
			return fmt.Errorf("spotify_playlist_id is required")
		}
	}

	return nil
}
