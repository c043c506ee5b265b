// AquaScope - Water Quality Monitoring and Alerting API
// Copyright 2026 AquaScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aquascope/aquascope

// Package config loads and validates application configuration from
// defaults, an optional YAML file, and environment variables, in that
// order of increasing priority.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	CORSOrigins []string      `koanf:"cors_origins"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" runs fully in-process.
	Path string `koanf:"path"`

	// SeedMockData loads the development fixture dataset at startup.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// SecurityConfig holds authentication settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Minimum 32 characters.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL bounds token validity; the role claim is fixed for the
	// token's whole lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// BcryptCost is the adaptive hashing cost factor.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// RateLimitConfig holds request limiting settings.
type RateLimitConfig struct {
	// TrustProxyDepth is the number of trusted reverse-proxy hops. At 0
	// the forwarded-address header is ignored entirely and the peer
	// address is authoritative.
	TrustProxyDepth int `koanf:"trust_proxy_depth"`

	// Requests/Window bound the general API limiter.
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`

	// AuthRequests/AuthWindow bound the strict limiter on login and
	// register.
	AuthRequests int           `koanf:"auth_requests"`
	AuthWindow   time.Duration `koanf:"auth_window"`

	// Disabled turns limiting off (tests, local development).
	Disabled bool `koanf:"disabled"`
}

// APIConfig holds pagination defaults.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks invariants that would otherwise surface as runtime
// failures or silent security downgrades.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive")
	}
	if c.RateLimit.TrustProxyDepth < 0 {
		return fmt.Errorf("ratelimit.trust_proxy_depth cannot be negative")
	}
	if !c.RateLimit.Disabled {
		if c.RateLimit.Requests < 1 || c.RateLimit.AuthRequests < 1 {
			return fmt.Errorf("ratelimit request counts must be at least 1")
		}
		if c.RateLimit.Window <= 0 || c.RateLimit.AuthWindow <= 0 {
			return fmt.Errorf("ratelimit windows must be positive")
		}
	}
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api page sizes are inconsistent: default=%d max=%d",
			c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	return nil
}

// defaultConfig returns the base configuration before file and env
// overrides.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        5000,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"http://localhost:3000"},
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:         "/data/aquascope.db",
			SeedMockData: false,
		},
		Security: SecurityConfig{
			JWTSecret:  "",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		RateLimit: RateLimitConfig{
			TrustProxyDepth: 1,
			Requests:        100,
			Window:          15 * time.Minute,
			AuthRequests:    5,
			AuthWindow:      15 * time.Minute,
		},
		API: APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
