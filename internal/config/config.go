// Package config provides YAML-based configuration loading for stagedocs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config is the top-level stagedocs configuration, loaded from stagedocs.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Query     QueryConfig     `yaml:"query"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: release, debug, test
}

// DatabaseConfig selects and addresses the document store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite file
	URI      string `yaml:"uri"`  // mongo connection string
}

// QueryConfig bounds and shapes store queries.
type QueryConfig struct {
	MaxTime     time.Duration `yaml:"max_time"`
	Concurrency int           `yaml:"concurrency"`
	PruneEmpty  *bool         `yaml:"prune_empty"`
	AllowedExts []string      `yaml:"allowed_exts"`
}

// Prune reports whether empty branches are pruned (default true).
func (q QueryConfig) Prune() bool {
	return q.PruneEmpty == nil || *q.PruneEmpty
}

// CacheConfig enables the Redis tree cache and its warmer.
type CacheConfig struct {
	RedisURL     string        `yaml:"redis_url"`
	TTL          time.Duration `yaml:"ttl"`
	WarmSchedule string        `yaml:"warm_schedule"`
	WarmUsers    []int64       `yaml:"warm_users"`
}

// Enabled reports whether a Redis URL is configured.
func (c CacheConfig) Enabled() bool { return strings.TrimSpace(c.RedisURL) != "" }

// StorageConfig configures the signed-URL issuer used by the external content
// fallback. The fallback stays off unless ExternalFallback is set.
type StorageConfig struct {
	ExternalFallback bool          `yaml:"external_fallback"`
	Endpoint         string        `yaml:"endpoint"`
	AccessKey        string        `yaml:"access_key"`
	SecretKey        string        `yaml:"secret_key"`
	Bucket           string        `yaml:"bucket"`
	Region           string        `yaml:"region"`
	Secure           bool          `yaml:"secure"`
	Expiry           time.Duration `yaml:"expiry"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMySQL
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "stagedocs.db"
		}
	case DriverMongo:
		if c.Database.URI == "" {
			c.Database.URI = "mongodb://127.0.0.1:27017"
		}
	}
	if c.Database.Name == "" {
		c.Database.Name = "stagedocs"
	}
	if c.Query.MaxTime == 0 {
		c.Query.MaxTime = 25 * time.Second
	}
	if c.Query.Concurrency == 0 {
		c.Query.Concurrency = 4
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Storage.Expiry == 0 {
		c.Storage.Expiry = 5 * time.Minute
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = "none"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "stagedocs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite, DriverMongo:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (mysql, sqlite, mongo)", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Query.MaxTime < 0 {
		errs = append(errs, "query.max_time must be positive")
	}
	if c.Query.Concurrency < 0 {
		errs = append(errs, "query.concurrency must be positive")
	}
	if c.Cache.WarmSchedule != "" && !c.Cache.Enabled() {
		errs = append(errs, "cache.warm_schedule requires cache.redis_url")
	}
	if c.Storage.ExternalFallback {
		if c.Storage.Endpoint == "" {
			errs = append(errs, "storage.endpoint is required when external_fallback is enabled")
		}
		if c.Storage.Bucket == "" {
			errs = append(errs, "storage.bucket is required when external_fallback is enabled")
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q is not supported (text, json)", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
