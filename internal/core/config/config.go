package config

import (
	"github.com/davgn/waymeta/internal/cache"
	"github.com/davgn/waymeta/internal/infra/storage/postgres"
	"github.com/davgn/waymeta/internal/recovery"
	"github.com/davgn/waymeta/internal/wayback"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig           `yaml:"server"`
	Logging  LoggingConfig          `yaml:"logging"`
	Database postgres.Config        `yaml:"database"`
	Cache    CacheConfig            `yaml:"cache"`
	Wayback  wayback.Config         `yaml:"wayback"`
	Recovery recovery.Config        `yaml:"recovery"`
	Service  recovery.ServiceConfig `yaml:"service"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// CacheConfig selects and configures the snapshot cache backend.
type CacheConfig struct {
	Backend string            `yaml:"backend"` // file, redis
	Dir     string            `yaml:"dir"`     // file backend only
	Redis   cache.RedisConfig `yaml:"redis"`
}
