package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionBackendSQL   = "sql"
	SessionBackendRedis = "redis"

	// defaultConfigFile is read from the working directory when neither an
	// explicit path nor CONFIG_PATH is given.
	defaultConfigFile = "auth.yaml"
)

// Config is the root service configuration. Values come from, in decreasing
// priority:
//  1. an explicit path (the --config flag);
//  2. the file named by CONFIG_PATH;
//  3. ./auth.yaml;
//  4. environment variables only.
//
// Environment variables always overlay values read from YAML.
type Config struct {
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Hash     HashConfig     `yaml:"hash"`
	Cookie   CookieConfig   `yaml:"cookie"`

	PepperFile      string `yaml:"pepper_file" env:"AUTH_PEPPER_FILE" env-default:"pepper"`
	BotVerifySecret string `yaml:"bot_verify_secret" env:"BOT_VERIFY_SECRET"`
	TrustProxy      bool   `yaml:"trust_proxy" env:"AUTH_TRUST_PROXY" env-default:"false"`

	Env                  string        `yaml:"env" env:"ENV" env-default:"prod"`
	LogLevel             string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat            string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	Port                 int           `yaml:"port" env:"PORT" env-default:"8080"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s"`
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval" env:"HOUSEKEEPING_INTERVAL" env-default:"1h"`
}

// AuthConfig holds the token signing secret and credential lifetimes.
type AuthConfig struct {
	Secret     string        `yaml:"secret" env:"AUTH_SECRET"`
	SecretFile string        `yaml:"secret_file" env:"AUTH_SECRET_FILE"`
	AccessTTL  time.Duration `yaml:"access_ttl" env:"AUTH_ACCESS_TTL" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env:"AUTH_REFRESH_TTL" env-default:"168h"`
}

// DatabaseConfig selects the account store and the session backend.
type DatabaseConfig struct {
	Driver         string `yaml:"driver" env:"AUTH_DATABASE_DRIVER" env-default:"sqlite"`
	File           string `yaml:"file" env:"AUTH_DATABASE_FILE" env-default:"auth.db"`
	URL            string `yaml:"url" env:"DATABASE_URL"`
	SessionBackend string `yaml:"session_backend" env:"AUTH_SESSION_BACKEND" env-default:"sql"`
	RedisURL       string `yaml:"redis_url" env:"REDIS_URL"`
}

// HashConfig is the Argon2id work factor for new password digests.
type HashConfig struct {
	MemoryKiB   uint32 `yaml:"memory_kib" env:"AUTH_HASH_MEMORY_KIB" env-default:"19456"`
	Iterations  uint32 `yaml:"iterations" env:"AUTH_HASH_ITERATIONS" env-default:"2"`
	Parallelism uint8  `yaml:"parallelism" env:"AUTH_HASH_PARALLELISM" env-default:"1"`
}

type CookieConfig struct {
	Path   string `yaml:"path" env:"AUTH_COOKIE_PATH" env-default:"/api/auth"`
	Secure bool   `yaml:"secure" env:"AUTH_COOKIE_SECURE" env-default:"true"`
}

// LoadConfig loads the configuration using the priority described on Config
// and validates the result.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	readFile := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		// ReadConfig overlays the environment after parsing the file.
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config %q: %w", p, err)
		}
		return nil
	}

	switch {
	case path != "":
		if err := readFile(path); err != nil {
			return Config{}, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH")); err != nil {
			return Config{}, err
		}
	default:
		if _, err := os.Stat(defaultConfigFile); err == nil {
			if err := readFile(defaultConfigFile); err != nil {
				return Config{}, err
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with. The secret
// itself is checked when it is loaded, since it may live in a file.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Database.SessionBackend {
	case SessionBackendSQL:
	case SessionBackendRedis:
		if c.Database.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis session backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Database.SessionBackend))
	}

	if c.Auth.Secret == "" && c.Auth.SecretFile == "" {
		errs = append(errs, errors.New("one of AUTH_SECRET or AUTH_SECRET_FILE is required"))
	}
	if c.Auth.Secret != "" && len(c.Auth.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TTL must be positive"))
	}
	if c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must be positive"))
	}
	if c.Hash.MemoryKiB == 0 || c.Hash.Iterations == 0 || c.Hash.Parallelism == 0 {
		errs = append(errs, errors.New("hash parameters must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}

	return errors.Join(errs...)
}

// Dev reports whether the service runs in development mode.
func (c Config) Dev() bool { return c.Env == "dev" }
