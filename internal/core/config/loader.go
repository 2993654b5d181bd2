package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/davgn/waymeta/internal/recovery"
	"github.com/davgn/waymeta/internal/wayback"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".waymeta-cache"
	}

	wb := wayback.DefaultConfig()
	if cfg.Wayback.Endpoint == "" {
		cfg.Wayback.Endpoint = wb.Endpoint
	}
	if cfg.Wayback.RateLimit == 0 {
		cfg.Wayback.RateLimit = wb.RateLimit
	}
	if cfg.Wayback.ResultLimit == 0 {
		cfg.Wayback.ResultLimit = wb.ResultLimit
	}
	if cfg.Wayback.MinContentLength == 0 {
		cfg.Wayback.MinContentLength = wb.MinContentLength
	}
	if cfg.Wayback.MaxRetries == 0 {
		cfg.Wayback.MaxRetries = wb.MaxRetries
	}
	if cfg.Wayback.BackoffBase == 0 {
		cfg.Wayback.BackoffBase = wb.BackoffBase
	}
	if cfg.Wayback.RateLimitWait == 0 {
		cfg.Wayback.RateLimitWait = wb.RateLimitWait
	}
	if cfg.Wayback.CacheTTL == 0 {
		cfg.Wayback.CacheTTL = wb.CacheTTL
	}
	if cfg.Wayback.RequestTimeout == 0 {
		cfg.Wayback.RequestTimeout = wb.RequestTimeout
	}

	rc := recovery.DefaultConfig()
	if cfg.Recovery.MaxSnapshots == 0 {
		cfg.Recovery.MaxSnapshots = rc.MaxSnapshots
	}
	if cfg.Recovery.FetchTimeout == 0 {
		cfg.Recovery.FetchTimeout = rc.FetchTimeout
	}

	sc := recovery.DefaultServiceConfig()
	if cfg.Service.IdempotencyWindow == 0 {
		cfg.Service.IdempotencyWindow = sc.IdempotencyWindow
	}
	if cfg.Service.BatchDelay == 0 {
		cfg.Service.BatchDelay = sc.BatchDelay
	}
}
