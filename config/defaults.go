package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenSecret is a placeholder that validation refuses to run with
const DefaultTokenSecret = "change-me-token-secret"

// DefaultAppConfig returns an AppConfig struct with sensible default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 60 * time.Second,
		},
		Auth: AuthConfig{
			TokenSecret:        DefaultTokenSecret,
			BcryptCost:         bcrypt.DefaultCost,
			LoginRatePerSecond: 10,
			LoginBurst:         5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Store: StoreConfig{
			Type:       "sqlite",
			DSN:        "",
			SQLitePath: "./todoapi.sqlite3",
		},
	}
}
