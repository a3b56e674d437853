// Package config loads runtime configuration for the tootcache client.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config. Comments and trailing
//     commas are allowed.
//  3. Command-line flags (see parseFlags).
//
// Example file:
//
//	{
//	  // cache location
//	  "database_path": "/var/lib/tootcache/cache.db",
//	  "trust_threshold": 2,
//	  "keep_count": 200,
//	  "max_age": "336h",
//	  "cleanup_interval": "1h",
//	  "metrics_addr": "127.0.0.1:9090",
//	}
package config
