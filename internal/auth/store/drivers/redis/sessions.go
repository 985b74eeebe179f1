// Package redis keeps sessions in Redis. Accounts stay in a SQL driver.
//
// Layout, for the default "auth" prefix:
//
//	auth:session:<id>      hash {account_id, token_hash, expires_at, remote_addr, user_agent, created_at}
//	auth:account:<id>      set of the account's session ids
//
// Session hashes carry a PEXPIREAT at their expiry so Redis drops them on its
// own. Index sets are pruned lazily when listed and by the sweep.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "auth"

// ErrUnavailable wraps transport failures talking to Redis.
var ErrUnavailable = errors.New("store.redis: unavailable")

type Sessions struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewSessions returns a Sessions repository on rdb. An empty prefix uses
// DefaultPrefix.
func NewSessions(rdb goredis.UniversalClient, prefix string) *Sessions {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sessions{rdb: rdb, prefix: prefix}
}

// Open parses a redis:// URL and connects.
func Open(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("store.redis: parse url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rdb, nil
}

func (s *Sessions) sessionKey(id string) string { return s.prefix + ":session:" + id }
func (s *Sessions) accountKey(id string) string { return s.prefix + ":account:" + id }

func (s *Sessions) CreateSession(ctx context.Context, sess domain.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}

	key := s.sessionKey(sess.ID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"account_id", sess.AccountID,
			"token_hash", sess.TokenHash,
			"expires_at", sess.ExpiresAt.UnixMilli(),
			"remote_addr", sess.RemoteAddr,
			"user_agent", sess.UserAgent,
			"created_at", sess.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(ctx, key, sess.ExpiresAt)
		pipe.SAdd(ctx, s.accountKey(sess.AccountID), sess.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Sessions) ListActiveSessions(
	ctx context.Context,
	accountID string,
	now time.Time,
) ([]domain.Session, error) {
	indexKey := s.accountKey(accountID)
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*goredis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.sessionKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var (
		out   []domain.Session
		stale []any
	)
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			stale = append(stale, ids[i])
			continue
		}
		sess, err := decodeSession(ids[i], fields)
		if err != nil {
			return nil, err
		}
		if sess.AccountID != accountID || sess.Expired(now) {
			continue
		}
		out = append(out, sess)
	}

	if len(stale) > 0 {
		_ = s.rdb.SRem(ctx, indexKey, stale...).Err()
	}

	slices.SortFunc(out, func(a, b domain.Session) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteSession removes the session hash and its index entry in one
// MULTI/EXEC. The DEL reply decides the winner: of several concurrent
// callers only one can see it return 1.
func (s *Sessions) DeleteSession(ctx context.Context, id string) (bool, error) {
	key := s.sessionKey(id)
	accountID, err := s.rdb.HGet(ctx, key, "account_id").Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var del *goredis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.SRem(ctx, s.accountKey(accountID), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return del.Val() == 1, nil
}

func (s *Sessions) DeleteAccountSessions(ctx context.Context, accountID string) (int64, error) {
	indexKey := s.accountKey(accountID)
	ids, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}

	var del *goredis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		if len(keys) > 0 {
			del = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, indexKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if del == nil {
		return 0, nil
	}
	return del.Val(), nil
}

// DeleteExpiredSessions prunes index entries whose session hash Redis has
// already expired, and deletes any hash whose recorded expiry has passed but
// which Redis has not evicted yet. It returns the number of session hashes
// it deleted; pruned index entries are not counted.
func (s *Sessions) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	var removed int64

	iter := s.rdb.Scan(ctx, 0, s.accountKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		ids, err := s.rdb.SMembers(ctx, indexKey).Result()
		if err != nil {
			return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		for _, id := range ids {
			expiresAt, err := s.rdb.HGet(ctx, s.sessionKey(id), "expires_at").Int64()
			switch {
			case errors.Is(err, goredis.Nil):
				if err := s.rdb.SRem(ctx, indexKey, id).Err(); err != nil {
					return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
				}
			case err != nil:
				return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
			case expiresAt <= now.UnixMilli():
				ok, err := s.DeleteSession(ctx, id)
				if err != nil {
					return removed, err
				}
				if ok {
					removed++
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return removed, nil
}

func (s *Sessions) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeSession(id string, f map[string]string) (domain.Session, error) {
	expiresAt, err := strconv.ParseInt(f["expires_at"], 10, 64)
	if err != nil {
		return domain.Session{}, fmt.Errorf("store.redis: session %s: bad expires_at: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(f["created_at"], 10, 64)
	if err != nil {
		return domain.Session{}, fmt.Errorf("store.redis: session %s: bad created_at: %w", id, err)
	}
	return domain.Session{
		ID:         id,
		AccountID:  f["account_id"],
		TokenHash:  f["token_hash"],
		ExpiresAt:  time.UnixMilli(expiresAt).UTC(),
		RemoteAddr: f["remote_addr"],
		UserAgent:  f["user_agent"],
		CreatedAt:  time.UnixMilli(createdAt).UTC(),
	}, nil
}

var _ store.Sessions = (*Sessions)(nil)
