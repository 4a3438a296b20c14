// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// Config holds every tunable chronoindexd needs at startup. Fields are
// JSONC-serializable so a config file and CLI flags can populate the
// same struct; CLI flags always win over the file.
type Config struct {
	ListenAddr      string `json:"listen_addr"`
	JaegerEndpoint  string `json:"jaeger_endpoint"`
	Production      bool   `json:"production"`
	RecentCacheSize int    `json:"recent_cache_size"`
	EnableStats     bool   `json:"enable_stats"`
}

// Default returns the configuration chronoindexd runs with when no
// file or flags override it.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		JaegerEndpoint:  "",
		Production:      false,
		RecentCacheSize: 4096,
		EnableStats:     false,
	}
}

// Load reads config from path (if non-empty) as JSONC, then overlays
// flags parsed from args, and returns the result. path is optional:
// an empty path skips the file step, while a non-empty path that cannot
// be read or parsed is an error.
func Load(args []string, path string) (Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = merge(cfg, fileCfg)
	}

	fs := pflag.NewFlagSet("chronoindexd", pflag.ContinueOnError)
	listenAddr := fs.String("listen", cfg.ListenAddr, "HTTP listen address")
	jaegerEndpoint := fs.String("jaeger-endpoint", cfg.JaegerEndpoint, "Jaeger collector endpoint")
	production := fs.Bool("production", cfg.Production, "use the JSON structured logger")
	recentCacheSize := fs.Int("recent-cache-size", cfg.RecentCacheSize, "per-line recent-tier LRU capacity")
	enableStats := fs.Bool("enable-stats", cfg.EnableStats, "record per-line read/write/miss/resize counters")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: parsing flags: %w", err)
	}

	cfg.ListenAddr = *listenAddr
	cfg.JaegerEndpoint = *jaegerEndpoint
	cfg.Production = *production
	cfg.RecentCacheSize = *recentCacheSize
	cfg.EnableStats = *enableStats

	if cfg.RecentCacheSize < 1 {
		return Config{}, fmt.Errorf("config: recent-cache-size must be >= 1, got %d", cfg.RecentCacheSize)
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s is not valid JSONC: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s is not valid JSON: %w", path, err)
	}
	return cfg, nil
}

// merge overlays non-zero fields of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.ListenAddr != "" {
		base.ListenAddr = overlay.ListenAddr
	}
	if overlay.JaegerEndpoint != "" {
		base.JaegerEndpoint = overlay.JaegerEndpoint
	}
	if overlay.RecentCacheSize != 0 {
		base.RecentCacheSize = overlay.RecentCacheSize
	}
	base.Production = base.Production || overlay.Production
	base.EnableStats = base.EnableStats || overlay.EnableStats
	return base
}
