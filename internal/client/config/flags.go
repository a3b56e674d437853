package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Arguments of flags not
// defined here are skipped.
//
//	-d string     cache database path
//	-l int        page limit
//	-t int        cached rows needed to skip a fetch
//	-k int        rows kept per account by retention
//	-m duration   retention max age
//	-s bool       streaming on/off (use -s=false)
//	-i int        online check interval in seconds
//	-metrics addr serve /metrics on addr
//	-log-level    debug|info|warn|error
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("tootcache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "cache database path")
	fs.IntVar(&cfg.PageLimit, "l", cfg.PageLimit, "page limit")
	fs.IntVar(&cfg.TrustThreshold, "t", cfg.TrustThreshold, "cached rows needed to skip a fetch")
	fs.IntVar(&cfg.KeepCount, "k", cfg.KeepCount, "rows kept per account by retention")
	fs.DurationVar(&cfg.MaxAge, "m", cfg.MaxAge, "retention max age")
	fs.BoolVar(&cfg.Streaming, "s", cfg.Streaming, "subscribe to the streaming API")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "address to serve /metrics on")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := flagx.ParseKnown(fs, args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
