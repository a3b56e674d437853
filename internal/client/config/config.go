package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings of the tootcache client.
type Config struct {
	DatabasePath string

	PageLimit      int
	TrustThreshold int

	KeepCount       int
	MaxAge          time.Duration
	CleanupInterval time.Duration

	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int

	Streaming   bool
	EventBuffer int

	MetricsAddr string
	LogLevel    string
	LogFormat   string

	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with defaults. The database lives in the user
// config directory when one exists.
func (c *Config) LoadDefaults() {
	c.DatabasePath = defaultDatabasePath()
	c.PageLimit = 20
	c.TrustThreshold = 2
	c.KeepCount = 200
	c.MaxAge = 14 * 24 * time.Hour
	c.CleanupInterval = time.Hour
	c.RequestTimeout = 15 * time.Second
	c.RateLimit = 5
	c.RateBurst = 10
	c.Streaming = true
	c.EventBuffer = 64
	c.MetricsAddr = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.OnlineCheckInterval = 10 * time.Second
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.DatabasePath == "":
		return fmt.Errorf("database path is empty")
	case c.PageLimit <= 0:
		return fmt.Errorf("page limit must be positive, got %d", c.PageLimit)
	case c.TrustThreshold < 0:
		return fmt.Errorf("trust threshold must not be negative, got %d", c.TrustThreshold)
	case c.KeepCount < 0:
		return fmt.Errorf("keep count must not be negative, got %d", c.KeepCount)
	case c.MaxAge <= 0:
		return fmt.Errorf("max age must be positive, got %s", c.MaxAge)
	case c.CleanupInterval <= 0:
		return fmt.Errorf("cleanup interval must be positive, got %s", c.CleanupInterval)
	case c.OnlineCheckInterval <= 0:
		return fmt.Errorf("online check interval must be positive, got %s", c.OnlineCheckInterval)
	case c.EventBuffer <= 0:
		return fmt.Errorf("event buffer must be positive, got %d", c.EventBuffer)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file named by -c/-config (if
// any), then flags. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tootcache.db"
	}
	return filepath.Join(dir, "tootcache", "cache.db")
}
