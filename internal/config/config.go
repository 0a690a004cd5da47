package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Log      LogConfig      `yaml:"log"`
	Currency string         `yaml:"currency"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the persistence backend. Backend is "file" for
// the JSON document store or "sqlite" for the embedded database
// fallback; Dir is where the document, backups and database live.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type AutosaveConfig struct {
	IntervalMS int `yaml:"intervalMs"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 7337,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     "data",
		},
		Autosave: AutosaveConfig{
			IntervalMS: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
		Currency: "USD",
	}

	if path := os.Getenv("MARGINBOOK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("MARGINBOOK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("MARGINBOOK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MARGINBOOK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if backend := os.Getenv("MARGINBOOK_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dir := os.Getenv("MARGINBOOK_STORAGE_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if msStr := os.Getenv("MARGINBOOK_AUTOSAVE_INTERVAL_MS"); msStr != "" {
		ms, err := strconv.Atoi(msStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MARGINBOOK_AUTOSAVE_INTERVAL_MS: %w", err)
		}
		cfg.Autosave.IntervalMS = ms
	}
	if level := os.Getenv("MARGINBOOK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if cur := os.Getenv("MARGINBOOK_CURRENCY"); cur != "" {
		cfg.Currency = cur
	}

	if cfg.Storage.Backend != "file" && cfg.Storage.Backend != "sqlite" {
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

// DocumentPath is the live JSON document location for the file backend.
func (c Config) DocumentPath() string {
	return filepath.Join(c.Storage.Dir, "db.json")
}

// BackupsDir holds the launch-time document backups.
func (c Config) BackupsDir() string {
	return filepath.Join(c.Storage.Dir, "backups")
}

// SQLitePath is the database location for the sqlite backend.
func (c Config) SQLitePath() string {
	return filepath.Join(c.Storage.Dir, "marginbook.db")
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
