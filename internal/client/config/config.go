package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the recipectl CLI.
//
// Fields:
//   - ServerURL: base URL of the recipe API, without the /api/v1 suffix.
//   - RequestTimeout: per-request deadline of the HTTP client.
//   - SessionDB: path of the SQLite file caching login sessions.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDB      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.SessionDB = defaultSessionDB()
}

// LoadConfig constructs a Config, applies defaults and then overlays the
// JSON file at path, if path is not empty.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "recipectl.db"
	}
	return filepath.Join(dir, "recipectl", "session.db")
}
