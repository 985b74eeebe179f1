package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, account_id, token_hash, expires_at, remote_addr, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.TokenHash, toMillis(s.ExpiresAt),
		s.RemoteAddr, s.UserAgent, toMillis(s.CreatedAt),
	)
	return mapUniqueViolation(err)
}

func (r *sessionsRepo) ListActiveSessions(
	ctx context.Context,
	accountID string,
	now time.Time,
) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, token_hash, expires_at, remote_addr, user_agent, created_at
		   FROM sessions
		  WHERE account_id = ? AND expires_at > ?
		  ORDER BY created_at, id`,
		accountID, toMillis(now),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		var (
			s                    domain.Session
			expiresAt, createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.AccountID, &s.TokenHash, &expiresAt,
			&s.RemoteAddr, &s.UserAgent, &createdAt); err != nil {
			return nil, err
		}
		s.ExpiresAt = fromMillis(expiresAt)
		s.CreatedAt = fromMillis(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteSession relies on SQLite applying each DELETE atomically: only one
// concurrent caller can see a row affected.
func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *sessionsRepo) DeleteAccountSessions(ctx context.Context, accountID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
