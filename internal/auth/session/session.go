// Package session keeps one persisted record per valid rotation token.
//
// Tokens are never stored. Each record holds a salted digest, so a presented
// token cannot be looked up directly: Match scans the account's unexpired
// sessions and verifies the token against each digest in turn. Accounts hold
// a handful of sessions at most, which keeps the scan cheap.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/aussiebroadwan/tabauth/pkg/idx"
)

// maxUserAgentLength bounds the client agent string kept with a session.
const maxUserAgentLength = 512

// Hasher digests rotation tokens. cryptox.Hasher satisfies it.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type Store struct {
	repo   store.Sessions
	hasher Hasher
	now    func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used to filter expired sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(repo store.Sessions, hasher Hasher, opts ...Option) *Store {
	s := &Store{repo: repo, hasher: hasher, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create digests credential and persists a session for accountID.
func (s *Store) Create(
	ctx context.Context,
	accountID, credential string,
	expiresAt time.Time,
	meta domain.SessionMetadata,
) (domain.Session, error) {
	digest, err := s.hasher.Hash(credential)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session: hash credential: %w", err)
	}

	now := s.now().UTC()
	sess := domain.Session{
		ID:         idx.NewAt(now).String(),
		AccountID:  accountID,
		TokenHash:  digest,
		ExpiresAt:  expiresAt.UTC(),
		RemoteAddr: meta.RemoteAddr,
		UserAgent:  truncate(meta.UserAgent, maxUserAgentLength),
		CreatedAt:  now,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("session: create: %w", err)
	}
	return sess, nil
}

// FindCandidates returns the account's sessions that have not expired.
func (s *Store) FindCandidates(ctx context.Context, accountID string) ([]domain.Session, error) {
	sessions, err := s.repo.ListActiveSessions(ctx, accountID, s.now())
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	return sessions, nil
}

// Match returns the account's unexpired session whose digest verifies
// credential.
func (s *Store) Match(ctx context.Context, accountID, credential string) (domain.Session, bool, error) {
	candidates, err := s.FindCandidates(ctx, accountID)
	if err != nil {
		return domain.Session{}, false, err
	}
	for _, c := range candidates {
		if s.hasher.Verify(credential, c.TokenHash) {
			return c, true, nil
		}
	}
	return domain.Session{}, false, nil
}

// Delete removes a session and reports whether this call removed it.
// Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteSession(ctx, id)
	if err != nil {
		return false, fmt.Errorf("session: delete: %w", err)
	}
	return deleted, nil
}

// DeleteAllForAccount logs an account out everywhere.
func (s *Store) DeleteAllForAccount(ctx context.Context, accountID string) (int64, error) {
	n, err := s.repo.DeleteAccountSessions(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("session: delete all: %w", err)
	}
	return n, nil
}

// Sweep deletes every session whose expiry has passed.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("session: sweep: %w", err)
	}
	return n, nil
}

// Ping checks the session backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
