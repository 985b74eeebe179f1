package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sessionsRepo struct {
	db *pgxpool.Pool
}

// CreateSession stores a new session.
func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	const op = "store.postgres.CreateSession"

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sessions(id, account_id, token_hash, expires_at, remote_addr, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		s.ID,
		s.AccountID,
		s.TokenHash,
		s.ExpiresAt,
		s.RemoteAddr,
		s.UserAgent,
		s.CreatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// ListActiveSessions returns the account's unexpired sessions, oldest first.
func (r *sessionsRepo) ListActiveSessions(
	ctx context.Context,
	accountID string,
	now time.Time,
) ([]domain.Session, error) {
	const op = "store.postgres.ListActiveSessions"

	query := `
		SELECT id, account_id, token_hash, expires_at, remote_addr, user_agent, created_at
		FROM sessions
		WHERE account_id = $1 AND expires_at > $2
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, accountID, now)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.AccountID,
			&s.TokenHash,
			&s.ExpiresAt,
			&s.RemoteAddr,
			&s.UserAgent,
			&s.CreatedAt,
		); err != nil {
			return nil, mapError(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return out, nil
}

// DeleteSession removes a session. Row locking in PostgreSQL guarantees that
// of several concurrent deletes of the same id only one reports a row.
func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) (bool, error) {
	const op = "store.postgres.DeleteSession"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return false, mapError(op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteAccountSessions removes every session of an account.
func (r *sessionsRepo) DeleteAccountSessions(ctx context.Context, accountID string) (int64, error) {
	const op = "store.postgres.DeleteAccountSessions"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE account_id = $1`, accountID)
	if err != nil {
		return 0, mapError(op, err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "store.postgres.DeleteExpiredSessions"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapError(op, err)
	}
	return tag.RowsAffected(), nil
}

func (r *sessionsRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

var _ store.Sessions = (*sessionsRepo)(nil)
