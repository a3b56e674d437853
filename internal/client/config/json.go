package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/flagx"
	"github.com/dmitrijs2005/tootcache/internal/timex"
	"github.com/tailscale/hujson"
)

// JsonConfig is the file representation of Config. Absent keys leave the
// current value alone, so every field is a pointer. Durations use
// timex.Duration and may be strings like "36h" or integer nanoseconds.
type JsonConfig struct {
	DatabasePath        *string         `json:"database_path"`
	PageLimit           *int            `json:"page_limit"`
	TrustThreshold      *int            `json:"trust_threshold"`
	KeepCount           *int            `json:"keep_count"`
	MaxAge              *timex.Duration `json:"max_age"`
	CleanupInterval     *timex.Duration `json:"cleanup_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	RateLimit           *float64        `json:"rate_limit"`
	RateBurst           *int            `json:"rate_burst"`
	Streaming           *bool           `json:"streaming"`
	EventBuffer         *int            `json:"event_buffer"`
	MetricsAddr         *string         `json:"metrics_addr"`
	LogLevel            *string         `json:"log_level"`
	LogFormat           *string         `json:"log_format"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJson overlays cfg with the file given by -c or -config. The file may
// contain comments and trailing commas.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	data, err = standardizeJSON(data)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}

func standardizeJSON(b []byte) ([]byte, error) {
	ast, err := hujson.Parse(b)
	if err != nil {
		return b, err
	}
	ast.Standardize()
	return ast.Pack(), nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.PageLimit, jc.PageLimit)
	set(&cfg.TrustThreshold, jc.TrustThreshold)
	set(&cfg.KeepCount, jc.KeepCount)
	setDuration(&cfg.MaxAge, jc.MaxAge)
	setDuration(&cfg.CleanupInterval, jc.CleanupInterval)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	set(&cfg.RateLimit, jc.RateLimit)
	set(&cfg.RateBurst, jc.RateBurst)
	set(&cfg.Streaming, jc.Streaming)
	set(&cfg.EventBuffer, jc.EventBuffer)
	set(&cfg.MetricsAddr, jc.MetricsAddr)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
