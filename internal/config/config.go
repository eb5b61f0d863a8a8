package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-yaml/yaml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	DefaultPath = "config.yaml"
	EnvPrefix   = "MARKETPLACE_"

	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	// Memcached reads expirations above 30 days as absolute unix times and
	// stores sub-second ones as 0 (never expire).
	MinOwnerCacheTTL = time.Second
	MaxOwnerCacheTTL = 30 * 24 * time.Hour
)

type Config struct {
	Server  Server  `yaml:"server"`
	Auth    Auth    `yaml:"auth"`
	Listing Listing `yaml:"listing"`
}

type Server struct {
	Addr          string `yaml:"addr" env:"ADDR"`
	Storage       string `yaml:"storage" env:"STORAGE"` // postgres, memory
	PostgresDsn   string `yaml:"postgresDsn" env:"POSTGRES_DSN"`
	RedisAddr     string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisDB       int    `yaml:"redisDB" env:"REDIS_DB"`
	RedisPassword string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	MemcachedAddr string `yaml:"memcachedAddr" env:"MEMCACHED_ADDR"`
	EnableTrace   bool   `yaml:"enableTrace" env:"ENABLE_TRACE"`
	TraceEndpoint string `yaml:"traceEndpoint" env:"TRACE_ENDPOINT"`
	LogLevel      string `yaml:"logLevel" env:"LOG_LEVEL"`
}

type Auth struct {
	JWTSecret        string        `yaml:"jwtSecret" env:"JWT_SECRET"`
	TokenTTL         time.Duration `yaml:"tokenTTL" env:"TOKEN_TTL"`
	ClockSkew        time.Duration `yaml:"clockSkew" env:"CLOCK_SKEW"`
	BcryptCost       int           `yaml:"bcryptCost" env:"BCRYPT_COST"`
	LoginMaxAttempts int           `yaml:"loginMaxAttempts" env:"LOGIN_MAX_ATTEMPTS"`
	LoginLockout     time.Duration `yaml:"loginLockout" env:"LOGIN_LOCKOUT"`
}

type Listing struct {
	DefaultLimit  int           `yaml:"defaultLimit" env:"LISTING_DEFAULT_LIMIT"`
	MaxLimit      int           `yaml:"maxLimit" env:"LISTING_MAX_LIMIT"`
	OwnerCacheTTL time.Duration `yaml:"ownerCacheTTL" env:"OWNER_CACHE_TTL"`
}

func Defaults() Config {
	return Config{
		Server: Server{
			Addr:     ":8000",
			Storage:  StoragePostgres,
			LogLevel: "info",
		},
		Auth: Auth{
			TokenTTL:         24 * time.Hour,
			BcryptCost:       12,
			LoginMaxAttempts: 5,
			LoginLockout:     15 * time.Minute,
		},
		Listing: Listing{
			DefaultLimit:  10,
			MaxLimit:      100,
			OwnerCacheTTL: time.Minute,
		},
	}
}

// Load reads the YAML file at path, then overlays MARKETPLACE_* variables
// from the process environment and a .env file when present. A missing file
// at the default path is not an error.
func Load(path string) (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, errors.Wrap(err, "load .env")
		}
	}
	return LoadWith(path, nil)
}

// LoadWith is Load with an explicit environment; nil means the process
// environment.
func LoadWith(path string, environ map[string]string) (Config, error) {
	config := Defaults()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return Config{}, errors.Wrapf(err, "decode %s", path)
		}
	case os.IsNotExist(err) && path == DefaultPath:
	default:
		return Config{}, errors.Wrapf(err, "open %s", path)
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&config, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate fails fast on settings the server cannot start without.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	switch c.Server.Storage {
	case StoragePostgres:
		if c.Server.PostgresDsn == "" {
			return errors.New("server.postgresDsn is required for postgres storage")
		}
	case StorageMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.Server.Storage)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTTL must be positive")
	}
	if c.Auth.ClockSkew < 0 {
		return errors.New("auth.clockSkew cannot be negative")
	}
	if c.Auth.LoginMaxAttempts < 1 || c.Auth.LoginLockout <= 0 {
		return errors.New("auth.loginMaxAttempts and auth.loginLockout must be positive")
	}
	if c.Listing.MaxLimit < 1 || c.Listing.DefaultLimit < 1 || c.Listing.DefaultLimit > c.Listing.MaxLimit {
		return errors.New("listing limits must satisfy 1 <= defaultLimit <= maxLimit")
	}
	if c.Listing.OwnerCacheTTL < MinOwnerCacheTTL || c.Listing.OwnerCacheTTL > MaxOwnerCacheTTL {
		return errors.Errorf("listing.ownerCacheTTL must be between %s and %s", MinOwnerCacheTTL, MaxOwnerCacheTTL)
	}
	return nil
}
