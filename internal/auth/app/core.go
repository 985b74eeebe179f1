package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpapi "github.com/aussiebroadwan/tabauth/internal/auth/http"
	"github.com/aussiebroadwan/tabauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/aussiebroadwan/tabauth/internal/auth/session"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/aussiebroadwan/tabauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tabauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tabauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	goredis "github.com/redis/go-redis/v9"
)

// BotVerifierFactory builds the bot gate from BOT_VERIFY_SECRET.
type BotVerifierFactory func(secret string) service.BotVerifier

// Option customises how the core is assembled.
type Option func(*options)

type options struct {
	botFactory BotVerifierFactory
}

// WithBotVerifier installs the bot gate provider. It is only consulted when
// BOT_VERIFY_SECRET is set.
func WithBotVerifier(f BotVerifierFactory) Option {
	return func(o *options) { o.botFactory = f }
}

// Core is the storage and service graph shared by the HTTP server and the
// admin CLI.
type Core struct {
	Store    store.Store
	Sessions *session.Store
	Codec    *jwtx.Codec
	Auth     *service.AuthService
	Metrics  *metrics.Metrics

	// SessionBackend is what /readyz pings for the session store. It is the
	// account store unless sessions live in redis.
	SessionBackend httpapi.Pinger

	redis *goredis.Client
}

// NewCore opens the configured stores, applies migrations and wires the
// services. Close releases everything it opened.
func NewCore(ctx context.Context, cfg Config, logger *slog.Logger, opts ...Option) (*Core, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	secret, err := LoadSigningSecret(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	codec, err := jwtx.NewCodec(secret, jwtx.WithTTL(cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	c := &Core{Codec: codec, Metrics: metrics.New()}

	if err := c.openStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	sessionRepo, err := c.openSessions(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	params := hashParams(cfg.Hash)
	c.Sessions = session.New(sessionRepo, cryptox.NewHasher(params, pepper, cryptox.MaxCredentialLength))

	var bot service.BotVerifier
	switch {
	case cfg.BotVerifySecret == "":
		logger.Info("bot verification disabled")
	case o.botFactory == nil:
		logger.Warn("BOT_VERIFY_SECRET is set but no bot verifier is installed, bot verification disabled")
	default:
		bot = o.botFactory(cfg.BotVerifySecret)
		logger.Info("bot verification enabled")
	}

	c.Auth, err = service.NewAuthService(
		c.Store.Accounts(),
		c.Sessions,
		codec,
		cryptox.NewHasher(params, pepper, cryptox.MaxPasswordLength),
		bot,
		c.Metrics,
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	return c, nil
}

func (c *Core) openStore(ctx context.Context, cfg Config, logger *slog.Logger) error {
	switch cfg.Database.Driver {
	case DriverPostgres:
		db, err := postgres.NewStore(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		c.Store = db
	default:
		db, err := sqlite.NewStore(sqlite.DSN(cfg.Database.File))
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		c.Store = db
	}

	if err := c.Store.ApplyMigrations(); err != nil {
		_ = c.Store.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "driver", cfg.Database.Driver)
	return nil
}

func (c *Core) openSessions(ctx context.Context, cfg Config, logger *slog.Logger) (store.Sessions, error) {
	if cfg.Database.SessionBackend != SessionBackendRedis {
		c.SessionBackend = c.Store
		return c.Store.Sessions(), nil
	}

	rdb, err := redis.Open(ctx, cfg.Database.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.redis = rdb

	sessions := redis.NewSessions(rdb, redis.DefaultPrefix)
	c.SessionBackend = sessions
	logger.Info("sessions stored in redis")
	return sessions, nil
}

// Close closes the redis client, if any, and the account store.
func (c *Core) Close() error {
	var errs []error
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}

func hashParams(h HashConfig) cryptox.Params {
	p := cryptox.DefaultParams
	p.Memory = h.MemoryKiB
	p.Iterations = h.Iterations
	p.Parallelism = h.Parallelism
	return p
}
