package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// DatabaseConfig holds the MongoDB connection settings.
type DatabaseConfig struct {
	URI             string        `env:"MONGO_URI,default=mongodb://localhost:27017"`
	DatabaseName    string        `env:"MONGO_DB,default=goaltracker"`
	MaxPoolSize     uint64        `env:"MONGO_MAX_POOL_SIZE,default=100"`
	MinPoolSize     uint64        `env:"MONGO_MIN_POOL_SIZE,default=10"`
	MaxConnIdleTime time.Duration `env:"MONGO_MAX_CONN_IDLE_TIME,default=60s"`
	RetryWrites     bool          `env:"MONGO_RETRY_WRITES,default=true"`
	// Multi-document transactions need a replica set.
	Transactions bool `env:"MONGO_TRANSACTIONS,default=true"`
}

type AuthConfig struct {
	JWTSecretKey           string        `env:"JWT_SECRET_KEY"`
	JWTExpiration          time.Duration `env:"JWT_EXPIRATION_TIME,default=1h"`
	RefreshTokenExpiration time.Duration `env:"REFRESH_TOKEN_EXPIRATION_TIME,default=168h"`
	Issuer                 string        `env:"JWT_ISSUER,default=goaltracker"`
}

type AppConfig struct {
	Env           string `env:"GO_ENV,default=development"`
	Port          string `env:"PORT,default=8080"`
	StorageDriver string `env:"STORAGE_DRIVER,default=mongo"`
	RedisURL      string `env:"REDIS_URL"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`
	LogFormat     string `env:"LOG_FORMAT,default=json"`
	TimeZone      string `env:"TIME_ZONE,default=UTC"`

	// Requests per second per identity; zero disables the limiter.
	RateLimit       int   `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst  int   `env:"RATE_LIMIT_BURST,default=40"`
	MaxRequestBytes int64 `env:"MAX_REQUEST_BYTES,default=1048576"`
	CORSOrigins     string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`

	AtRiskSweepTime string `env:"AT_RISK_SWEEP_TIME,default=20:00"`
	FreeGoalLimit   int    `env:"FREE_GOAL_LIMIT,default=3"`

	Database DatabaseConfig
	Auth     AuthConfig
}

// Load reads an optional .env file and decodes the environment into AppConfig.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg AppConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("decode env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c AppConfig) Validate() error {
	switch c.StorageDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be mongo or memory, got %q", c.StorageDriver)
	}
	if strings.TrimSpace(c.Auth.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.FreeGoalLimit < 0 {
		return fmt.Errorf("FREE_GOAL_LIMIT cannot be negative")
	}
	if _, err := time.Parse("15:04", c.AtRiskSweepTime); c.SweepEnabled() && err != nil {
		return fmt.Errorf("AT_RISK_SWEEP_TIME must be HH:MM or off, got %q", c.AtRiskSweepTime)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c AppConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c AppConfig) SweepEnabled() bool {
	return c.AtRiskSweepTime != "off"
}

func (c AppConfig) IsTest() bool {
	return c.Env == "test"
}
