package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors ratesched.yml. Batch files carry their own rate limit and
// start time; the values here apply when a batch omits them.
type Config struct {
	RateLimitMs int64   `yaml:"rate_limit_ms"` // 1000 (by default, i.e. no throttling)
	StartTime   int64   `yaml:"start_time"`    // 0 (by default)
	WindowMs    int64   `yaml:"window_ms"`     // 1000 (by default)
	LogLevel    string  `yaml:"log_level"`     // info (by default)
	LogFormat   string  `yaml:"log_format"`    // console (by default)
	Format      string  `yaml:"format"`        // json (by default)
	Speed       float64 `yaml:"speed"`         // playback speed multiplier, 1 (by default)
	TickMS      int     `yaml:"tick_ms"`       // playback progress interval, 100 (by default)
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		RateLimitMs: DefaultWindowMs,
		StartTime:   0,
		WindowMs:    DefaultWindowMs,
		LogLevel:    "info",
		LogFormat:   "console",
		Format:      "json",
		Speed:       1,
		TickMS:      100,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.RateLimitMs <= 0 {
		cfg.RateLimitMs = DefaultWindowMs
	}
	if cfg.StartTime < 0 {
		cfg.StartTime = 0
	}
	if cfg.WindowMs <= 0 || cfg.WindowMs > MaxWindowMs {
		cfg.WindowMs = DefaultWindowMs
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	if cfg.TickMS <= 0 {
		cfg.TickMS = 100
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}

	return cfg
}
