package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/session"
	authredis "github.com/aussiebroadwan/tabauth/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tabauth/internal/auth/store/mocks"
	"github.com/aussiebroadwan/tabauth/pkg/cryptox"
	"github.com/golang/mock/gomock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var fastParams = cryptox.Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newHasher() *cryptox.Hasher {
	return cryptox.NewHasher(fastParams, "pepper", cryptox.MaxCredentialLength)
}

func newTestStore(t *testing.T, opts ...session.Option) *session.Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return session.New(authredis.NewSessions(rdb, ""), newHasher(), opts...)
}

func TestStore_CreateNeverPersistsCredential(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	const credential = "header.payload.signature"
	sess, err := st.Create(ctx, "acc-1", credential, time.Now().Add(time.Hour), domain.SessionMetadata{
		RemoteAddr: "203.0.113.9",
		UserAgent:  "curl/8.0",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.NotContains(t, sess.TokenHash, credential)
	require.True(t, strings.HasPrefix(sess.TokenHash, "$argon2id$"))

	candidates, err := st.FindCandidates(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "203.0.113.9", candidates[0].RemoteAddr)
	require.Equal(t, "curl/8.0", candidates[0].UserAgent)
}

func TestStore_Match(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	first, err := st.Create(ctx, "acc-1", "token-one", exp, domain.SessionMetadata{})
	require.NoError(t, err)
	second, err := st.Create(ctx, "acc-1", "token-two", exp, domain.SessionMetadata{})
	require.NoError(t, err)
	_, err = st.Create(ctx, "acc-2", "token-three", exp, domain.SessionMetadata{})
	require.NoError(t, err)

	got, ok, err := st.Match(ctx, "acc-1", "token-two")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second.ID, got.ID)

	got, ok, err = st.Match(ctx, "acc-1", "token-one")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, first.ID, got.ID)

	_, ok, err = st.Match(ctx, "acc-1", "token-three")
	require.NoError(t, err)
	require.False(t, ok, "another account's session never matches")

	_, ok, err = st.Match(ctx, "acc-1", "forged")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_ExpiredSessionIsAbsent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	st := newTestStore(t, session.WithClock(clock))
	ctx := context.Background()

	_, err := st.Create(ctx, "acc-1", "token", now.Add(time.Hour), domain.SessionMetadata{})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, ok, err := st.Match(ctx, "acc-1", "token")
	require.NoError(t, err)
	require.False(t, ok, "expired at the expiry instant")
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	sess, err := st.Create(ctx, "acc-1", "token", time.Now().Add(time.Hour), domain.SessionMetadata{})
	require.NoError(t, err)

	deleted, err := st.Delete(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = st.Delete(ctx, sess.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	_, ok, err := st.Match(ctx, "acc-1", "token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_ConcurrentDeleteSingleWinner(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	sess, err := st.Create(ctx, "acc-1", "token", time.Now().Add(time.Hour), domain.SessionMetadata{})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := st.Delete(ctx, sess.ID); err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
}

func TestStore_DeleteAllForAccount(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	for _, tok := range []string{"a", "b", "c"} {
		_, err := st.Create(ctx, "acc-1", tok, exp, domain.SessionMetadata{})
		require.NoError(t, err)
	}
	_, err := st.Create(ctx, "acc-2", "d", exp, domain.SessionMetadata{})
	require.NoError(t, err)

	n, err := st.DeleteAllForAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	left, err := st.FindCandidates(ctx, "acc-2")
	require.NoError(t, err)
	require.Len(t, left, 1)
}

func TestStore_TruncatesUserAgent(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	sess, err := st.Create(context.Background(), "acc-1", "token", time.Now().Add(time.Hour),
		domain.SessionMetadata{UserAgent: strings.Repeat("x", 2000)})
	require.NoError(t, err)
	require.Len(t, sess.UserAgent, 512)
}

func TestStore_RepositoryFailures(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSessions(ctrl)
	st := session.New(repo, newHasher())
	ctx := context.Background()
	boom := errors.New("boom")

	repo.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(boom)
	_, err := st.Create(ctx, "acc-1", "token", time.Now().Add(time.Hour), domain.SessionMetadata{})
	require.ErrorIs(t, err, boom)

	repo.EXPECT().ListActiveSessions(gomock.Any(), "acc-1", gomock.Any()).Return(nil, boom)
	_, _, err = st.Match(ctx, "acc-1", "token")
	require.ErrorIs(t, err, boom)

	repo.EXPECT().DeleteSession(gomock.Any(), "s-1").Return(false, boom)
	_, err = st.Delete(ctx, "s-1")
	require.ErrorIs(t, err, boom)

	repo.EXPECT().DeleteExpiredSessions(gomock.Any(), gomock.Any()).Return(int64(4), nil)
	n, err := st.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}

func TestStore_CreateRejectsEmptyCredential(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	_, err := st.Create(context.Background(), "acc-1", "", time.Now().Add(time.Hour), domain.SessionMetadata{})
	require.ErrorIs(t, err, cryptox.ErrEmptyInput)
}
