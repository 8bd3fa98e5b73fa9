// Package manifest holds the service configuration loaded at boot.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Redis    Redis    `toml:"redis"`
	Eval     Eval     `toml:"eval"`
}

type Server struct {
	Listen  string `toml:"listen"`
	TLSCert string `toml:"tls_cert"`
	TLSKey  string `toml:"tls_key"`
}

type Database struct {
	// DSN is the lib/pq connection string. Empty selects the in-memory
	// repository and the no-op log sink (dev mode).
	DSN    string `toml:"dsn"`
	Schema string `toml:"schema"`
	Name   string `toml:"name"`
}

type Redis struct {
	// Addr enables the route-lookup cache when non-empty.
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type Eval struct {
	TimeoutMS int   `toml:"timeout_ms"`
	MaxAllocs int64 `toml:"max_allocs"`
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Server.Listen) == "" {
		c.Server.Listen = ":4000"
	}
	if strings.TrimSpace(c.Database.Schema) == "" {
		c.Database.Schema = "public"
	}
	if c.Eval.TimeoutMS == 0 {
		c.Eval.TimeoutMS = 5000
	}
	if c.Eval.MaxAllocs == 0 {
		c.Eval.MaxAllocs = 1_000_000
	}
	if c.Redis.TTLSeconds == 0 {
		c.Redis.TTLSeconds = 15
	}
}

func (c *Config) Validate() error {
	c.normalize()
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return errors.New("server: tls_cert and tls_key must be provided together")
	}
	if c.Eval.TimeoutMS < 0 {
		return errors.New("eval.timeout_ms must be >= 0")
	}
	if c.Eval.MaxAllocs < 0 {
		return errors.New("eval.max_allocs must be >= 0")
	}
	if c.Redis.DB < 0 {
		return errors.New("redis.db must be >= 0")
	}
	if c.Redis.Addr != "" && c.Database.DSN == "" {
		return errors.New("redis cache requires a database dsn")
	}
	return nil
}

// Load reads, parses, and validates the TOML config at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
