// Package config provides configuration management for todoapi.
// It handles loading and validating configuration from YAML files and environment variables.
package config

import "time"

// AppConfig represents the complete application configuration
type AppConfig struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Store   StoreConfig   `koanf:"store"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr     string        `koanf:"listen_addr"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// TokenSecret is the shared HMAC signing key for bearer tokens. It is
	// required, must not keep its placeholder default, and is read-only
	// after startup.
	TokenSecret string `koanf:"token_secret"`

	// BcryptCost is the password hashing work factor
	BcryptCost int `koanf:"bcrypt_cost"`

	// LoginRatePerSecond and LoginBurst bound the login endpoint
	LoginRatePerSecond float64 `koanf:"login_rate_per_second"`
	LoginBurst         int     `koanf:"login_burst"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Type       string `koanf:"type"` // "sqlite" or "postgres"
	DSN        string `koanf:"dsn"`  // postgres only
	SQLitePath string `koanf:"sqlite_path"`
}
