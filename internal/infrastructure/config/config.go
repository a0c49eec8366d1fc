package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backend selectors.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs identity tokens; startup fails without it.
	JWTSecret string `env:"JWT_SECRET"`
	// EncryptionKey protects database passwords at rest. When empty the
	// service starts with credential storage disabled (fail closed) and
	// logs a prominent warning.
	EncryptionKey string        `env:"ENCRYPTION_KEY"`
	TokenTTL      time.Duration `env:"TOKEN_TTL, default=1h"`
	// SessionBackend selects memory or redis; chosen once at startup.
	SessionBackend string `env:"SESSION_BACKEND, default=memory"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=datamind"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.SessionBackend != BackendMemory && cfg.SessionBackend != BackendRedis {
		return nil, fmt.Errorf("config: unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}
	return &cfg, nil
}
