package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	// PasswordSalt feeds the deterministic password digest. Changing it
	// invalidates every stored hash.
	PasswordSalt string        `env:"PASSWORD_SALT, default=formatrack-v1"`
	CacheTTL     time.Duration `env:"CACHE_TTL,     default=300s"`

	// Seed admin, created at bootstrap when no admin account exists.
	AdminEmail    string `env:"ADMIN_EMAIL,    default=admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD, default=change-me"`

	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=training_system"`
}

type RedisConfig struct {
	// Addr empty means no Redis: the aggregate cache falls back to the
	// in-process implementation.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type SMTPConfig struct {
	// Host empty means no SMTP: recovery codes go to the log instead.
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM, default=no-reply@example.com"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
