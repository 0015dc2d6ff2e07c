package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the wallet backend.
type APIConfig struct {
	BaseURL string        `env:"WALLET_API_URL,     default=http://localhost:8080/api"`
	Timeout time.Duration `env:"WALLET_API_TIMEOUT, default=10s"`
}

type SessionConfig struct {
	Store         string        `env:"SESSION_STORE,          default=memory"`
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL,       default=30m"`
	TokenTTL      time.Duration `env:"SESSION_TOKEN_TTL,      default=24h"`
	SealSecret    string        `env:"TOKEN_SEAL_SECRET"`
	SecureCookies bool          `env:"SESSION_SECURE_COOKIES, default=false"`
	PendingTTL    time.Duration `env:"PENDING_TRANSFER_TTL,   default=5m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=wallet_web"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Development reports whether the process runs in the development environment.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("WALLET_API_URL %q is not an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("WALLET_API_TIMEOUT must be positive"))
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE %q must be one of memory, redis, mongo", c.Session.Store))
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	if c.Session.PendingTTL <= 0 {
		errs = append(errs, errors.New("PENDING_TRANSFER_TTL must be positive"))
	}
	if c.Session.Store != StoreMemory && c.Session.SealSecret != "" && len(c.Session.SealSecret) < 16 {
		errs = append(errs, errors.New("TOKEN_SEAL_SECRET must be at least 16 characters"))
	}

	return errors.Join(errs...)
}
