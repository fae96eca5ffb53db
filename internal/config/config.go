// Package config loads the YAML-driven configuration for the matching
// engine service: a single nested Config struct unmarshaled with
// gopkg.in/yaml.v2.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration for cmd/matchengine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Matching MatchingConfig `yaml:"matching"`
	Audit    AuditConfig    `yaml:"audit"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig is the raw TCP listener the transport layer binds.
type ServerConfig struct {
	ListenAddr       string        `yaml:"listen_addr"`
	WorkerPoolSize   int           `yaml:"worker_pool_size"`
	SessionRateRPS   float64       `yaml:"session_rate_rps"`
	SessionRateBurst int           `yaml:"session_rate_burst"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
}

// AdminConfig is the HTTP admin surface (health/stats/metrics).
type AdminConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	JWTSecret    string   `yaml:"jwt_secret"`
	CORSOrigins  []string `yaml:"cors_origins"`
	RateLimitRPS int      `yaml:"rate_limit_rps"`
}

// MatchingConfig tunes the core engine; it never changes matching
// semantics, only allocation hints.
type MatchingConfig struct {
	InitialBookCapacity int `yaml:"initial_book_capacity"`
}

// AuditConfig selects and configures the audit sinks.
type AuditConfig struct {
	LocalPath   string   `yaml:"local_path"`
	NatsURLs    []string `yaml:"nats_urls"`
	NatsSubject string   `yaml:"nats_subject"`
	PostgresDSN string   `yaml:"postgres_dsn"`
}

// LoggingConfig selects the zap logging profile.
type LoggingConfig struct {
	Environment string `yaml:"environment"` // "production" or "development"
}

// Default returns a Config usable out of the box for local runs.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:       ":9090",
			WorkerPoolSize:   256,
			SessionRateRPS:   1000,
			SessionRateBurst: 2000,
			ShutdownTimeout:  5 * time.Second,
		},
		Admin: AdminConfig{
			ListenAddr:   ":9091",
			RateLimitRPS: 50,
		},
		Matching: MatchingConfig{
			InitialBookCapacity: 1024,
		},
		Audit: AuditConfig{
			LocalPath: "matchcore-audit.log",
		},
		Logging: LoggingConfig{
			Environment: "development",
		},
	}
}

// Load reads and parses a YAML config file at path, filling any unset
// fields from Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
