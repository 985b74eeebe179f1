package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
)

//go:generate mockgen -destination=mocks/store.go -package=mocks . Accounts,Sessions

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories to keep concerns tidy
// and testable.
type Store interface {
	Accounts() Accounts
	Sessions() Sessions

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Accounts interface {
	// GetAccountByEmail expects an already normalized email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by the caller via
	// ULID). A duplicate email fails with ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccountStatus sets the status and bumps updated_at.
	UpdateAccountStatus(ctx context.Context, id string, status domain.Status) error
}

// Sessions persists rotation token digests. Implementations must be safe for
// concurrent use.
type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// ListActiveSessions returns the account's sessions that are still valid
	// at now, oldest first.
	ListActiveSessions(ctx context.Context, accountID string, now time.Time) ([]domain.Session, error)

	// DeleteSession atomically removes the session and reports whether it was
	// present. Of several concurrent callers for the same id at most one
	// observes true.
	DeleteSession(ctx context.Context, id string) (bool, error)

	// DeleteAccountSessions removes every session of the account and returns
	// how many were removed.
	DeleteAccountSessions(ctx context.Context, accountID string) (int64, error)

	// DeleteExpiredSessions is housekeeping. It returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
