// Package storetest holds behaviour checks shared by every store driver.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/aussiebroadwan/tabauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

// NewAccount returns an active regular account with a unique id and email.
func NewAccount(email string) domain.Account {
	return domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$aGFzaA",
		Name:         "Test Account",
		Role:         domain.RoleRegular,
		Status:       domain.StatusActive,
	}
}

// NewSession returns a session for accountID expiring ttl from now.
func NewSession(accountID string, ttl time.Duration) domain.Session {
	now := time.Now().UTC()
	return domain.Session{
		ID:         idx.New().String(),
		AccountID:  accountID,
		TokenHash:  "digest-" + idx.New().String(),
		ExpiresAt:  now.Add(ttl),
		RemoteAddr: "203.0.113.7",
		UserAgent:  "storetest/1.0",
		CreatedAt:  now,
	}
}

// RunAccounts exercises an Accounts implementation.
func RunAccounts(t *testing.T, accounts store.Accounts) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		a := NewAccount("alice-" + idx.New().String() + "@example.com")
		require.NoError(t, accounts.CreateAccount(ctx, a))

		byEmail, err := accounts.GetAccountByEmail(ctx, a.Email)
		require.NoError(t, err)
		require.Equal(t, a.ID, byEmail.ID)
		require.Equal(t, a.PasswordHash, byEmail.PasswordHash)
		require.Equal(t, domain.RoleRegular, byEmail.Role)
		require.Equal(t, domain.StatusActive, byEmail.Status)
		require.False(t, byEmail.CreatedAt.IsZero())

		byID, err := accounts.GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.Email, byID.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		a := NewAccount("dup-" + idx.New().String() + "@example.com")
		require.NoError(t, accounts.CreateAccount(ctx, a))

		b := NewAccount(a.Email)
		require.ErrorIs(t, accounts.CreateAccount(ctx, b), store.ErrAlreadyExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := accounts.GetAccountByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = accounts.GetAccountByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update status", func(t *testing.T) {
		a := NewAccount("status-" + idx.New().String() + "@example.com")
		require.NoError(t, accounts.CreateAccount(ctx, a))

		require.NoError(t, accounts.UpdateAccountStatus(ctx, a.ID, domain.StatusSuspended))
		got, err := accounts.GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusSuspended, got.Status)

		err = accounts.UpdateAccountStatus(ctx, idx.New().String(), domain.StatusActive)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

// RunSessions exercises a Sessions implementation. newAccount must return
// the id of an account sessions may reference.
func RunSessions(t *testing.T, sessions store.Sessions, newAccount func(t *testing.T) string) {
	t.Helper()
	ctx := context.Background()

	t.Run("create and list active", func(t *testing.T) {
		accountID := newAccount(t)

		live := NewSession(accountID, time.Hour)
		expired := NewSession(accountID, -time.Minute)
		require.NoError(t, sessions.CreateSession(ctx, live))
		require.NoError(t, sessions.CreateSession(ctx, expired))

		got, err := sessions.ListActiveSessions(ctx, accountID, time.Now())
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, live.ID, got[0].ID)
		require.Equal(t, live.TokenHash, got[0].TokenHash)
		require.Equal(t, live.UserAgent, got[0].UserAgent)
		require.Equal(t, live.RemoteAddr, got[0].RemoteAddr)
		require.WithinDuration(t, live.ExpiresAt, got[0].ExpiresAt, time.Millisecond)
	})

	t.Run("list is scoped to the account", func(t *testing.T) {
		a, b := newAccount(t), newAccount(t)
		require.NoError(t, sessions.CreateSession(ctx, NewSession(a, time.Hour)))
		require.NoError(t, sessions.CreateSession(ctx, NewSession(a, time.Hour)))
		require.NoError(t, sessions.CreateSession(ctx, NewSession(b, time.Hour)))

		got, err := sessions.ListActiveSessions(ctx, a, time.Now())
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, s := range got {
			require.Equal(t, a, s.AccountID)
		}
	})

	t.Run("delete reports presence", func(t *testing.T) {
		s := NewSession(newAccount(t), time.Hour)
		require.NoError(t, sessions.CreateSession(ctx, s))

		deleted, err := sessions.DeleteSession(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = sessions.DeleteSession(ctx, s.ID)
		require.NoError(t, err)
		require.False(t, deleted, "second delete is a no-op")

		deleted, err = sessions.DeleteSession(ctx, idx.New().String())
		require.NoError(t, err)
		require.False(t, deleted)
	})

	t.Run("concurrent delete has one winner", func(t *testing.T) {
		s := NewSession(newAccount(t), time.Hour)
		require.NoError(t, sessions.CreateSession(ctx, s))

		const racers = 8
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := sessions.DeleteSession(ctx, s.ID)
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), wins.Load())
	})

	t.Run("delete all for account", func(t *testing.T) {
		a, b := newAccount(t), newAccount(t)
		for range 3 {
			require.NoError(t, sessions.CreateSession(ctx, NewSession(a, time.Hour)))
		}
		require.NoError(t, sessions.CreateSession(ctx, NewSession(b, time.Hour)))

		n, err := sessions.DeleteAccountSessions(ctx, a)
		require.NoError(t, err)
		require.Equal(t, int64(3), n)

		left, err := sessions.ListActiveSessions(ctx, a, time.Now())
		require.NoError(t, err)
		require.Empty(t, left)

		other, err := sessions.ListActiveSessions(ctx, b, time.Now())
		require.NoError(t, err)
		require.Len(t, other, 1)
	})

	t.Run("delete expired", func(t *testing.T) {
		accountID := newAccount(t)
		live := NewSession(accountID, 3*time.Hour)
		require.NoError(t, sessions.CreateSession(ctx, live))
		require.NoError(t, sessions.CreateSession(ctx, NewSession(accountID, 30*time.Minute)))
		require.NoError(t, sessions.CreateSession(ctx, NewSession(accountID, time.Hour)))

		// Both short sessions have passed by then but their records still exist.
		n, err := sessions.DeleteExpiredSessions(ctx, time.Now().Add(2*time.Hour))
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, int64(2))

		deleted, err := sessions.DeleteSession(ctx, live.ID)
		require.NoError(t, err)
		require.True(t, deleted, "live session survives the sweep")
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, sessions.Ping(ctx))
	})
}
