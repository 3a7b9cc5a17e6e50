package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		RateLimit
		Global
	}

	HTTP struct {
		Port int32
		Host string
		Mode string // gin mode: debug or release
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret     string
		AccessExpiry  time.Duration
		RefreshExpiry time.Duration
		BcryptCost    int
		TOTPIssuer    string
	}
	RateLimit struct {
		Enabled           bool
		RequestsPerMinute int
		RequestsPerHour   int
		SweepInterval     time.Duration
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", "./catalog.db")

	// Auth defaults
	v.SetDefault("jwt_secret", "")
	v.SetDefault("auth_access_expiry", "30m")
	v.SetDefault("auth_refresh_expiry", "168h") // 7 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_totp_issuer", "bookcatalog")

	// Rate limiter defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("rate_limit_per_hour", 1000)
	v.SetDefault("rate_limit_sweep_interval", "5m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
			Mode: v.GetString("GIN_MODE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:     v.GetString("JWT_SECRET"),
			AccessExpiry:  v.GetDuration("AUTH_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetDuration("AUTH_REFRESH_EXPIRY"),
			BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
			TOTPIssuer:    v.GetString("AUTH_TOTP_ISSUER"),
		},
		RateLimit: RateLimit{
			Enabled:           v.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
			RequestsPerHour:   v.GetInt("RATE_LIMIT_PER_HOUR"),
			SweepInterval:     v.GetDuration("RATE_LIMIT_SWEEP_INTERVAL"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
