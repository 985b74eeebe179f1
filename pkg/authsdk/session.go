package authsdk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
)

// Session holds a bearer token and refreshes it before it expires. The
// rotation credential stays in the client's cookie jar. A Session is safe
// for concurrent use.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	account     *Account
	threshold   time.Duration
	now         func() time.Time
}

// RegisterSession registers an account and returns a Session for it.
func (c *SDKClient) RegisterSession(ctx context.Context, req RegisterRequest) (*Session, error) {
	res, err := c.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return newSession(c, res), nil
}

// LoginSession logs in and returns a Session.
func (c *SDKClient) LoginSession(ctx context.Context, req LoginRequest) (*Session, error) {
	res, err := c.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return newSession(c, res), nil
}

func newSession(client *SDKClient, res *AuthResponse) *Session {
	return &Session{
		client:      client,
		accessToken: res.AccessToken,
		account:     res.Account,
		threshold:   jwtx.DefaultExpiringSoonThreshold,
		now:         time.Now,
	}
}

// SetRefreshThreshold changes how close to expiry the bearer token may get
// before the next call refreshes it.
func (s *Session) SetRefreshThreshold(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = d
}

// Account returns the account the session was opened for.
func (s *Session) Account() *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// AccessToken returns a bearer token that is not about to expire,
// refreshing first if needed.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if !s.expiringSoon() {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if !s.expiringSoon() {
		return s.accessToken, nil
	}

	res, err := s.client.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	s.accessToken = res.AccessToken
	return s.accessToken, nil
}

// expiringSoon must be called with s.mu held.
func (s *Session) expiringSoon() bool {
	claims, ok := jwtx.DecodeUnverified(s.accessToken)
	if !ok {
		return true
	}
	return claims.ExpiresWithin(s.threshold, s.now())
}

// Me fetches the current account.
func (s *Session) Me(ctx context.Context) (*Account, error) {
	token, err := s.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.Me(ctx, token)
}

// Logout revokes the session's rotation credential and forgets the bearer
// token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.mu.Unlock()

	return s.client.Logout(ctx, "")
}
