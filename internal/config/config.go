// Package config loads the tracker's YAML configuration.
package config

import (
	"errors"
	"time"
)

// Config is the root configuration shared by all commands.
type Config struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	Clickhouse ClickhouseConfig `yaml:"clickhouse"`
	Redis      RedisConfig      `yaml:"redis"`
	HTTP       HTTPConfig       `yaml:"http"`
	Sync       SyncConfig       `yaml:"sync"`
	Feed       FeedConfig       `yaml:"feed"`
}

// PostgresConfig holds the normalized store connection.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ClickhouseConfig holds the raw source connection.
type ClickhouseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig holds the optional query cache. An empty Addr disables
// caching entirely.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// HTTPConfig holds the query API server settings.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SyncConfig holds sync engine settings.
type SyncConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

// FeedConfig holds the live snapshot feed settings.
type FeedConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = 1000
	}
	if c.Feed.Timeout <= 0 {
		c.Feed.Timeout = 15 * time.Second
	}
	if c.Redis.TTL <= 0 {
		c.Redis.TTL = time.Minute
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if c.Clickhouse.DSN == "" {
		return errors.New("clickhouse.dsn is required")
	}
	if c.Sync.Interval < 0 {
		return errors.New("sync.interval must not be negative")
	}
	return nil
}
