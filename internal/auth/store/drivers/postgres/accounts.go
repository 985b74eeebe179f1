package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type accountsRepo struct {
	db *pgxpool.Pool
}

// GetAccountByEmail finds an account by its normalized email.
func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	const op = "store.postgres.GetAccountByEmail"

	query := `
		SELECT id, email, password_hash, name, role, status, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	a, err := scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return domain.Account{}, mapError(op, err)
	}
	return a, nil
}

// GetAccountByID finds an account by id.
func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	const op = "store.postgres.GetAccountByID"

	query := `
		SELECT id, email, password_hash, name, role, status, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	a, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Account{}, mapError(op, err)
	}
	return a, nil
}

// CreateAccount inserts a new account.
func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	const op = "store.postgres.CreateAccount"

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}

	query := `
		INSERT INTO accounts(id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.Name,
		string(a.Role),
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// UpdateAccountStatus sets the account status and bumps updated_at.
func (r *accountsRepo) UpdateAccountStatus(ctx context.Context, id string, status domain.Status) error {
	const op = "store.postgres.UpdateAccountStatus"

	query := `
		UPDATE accounts
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, string(status), id)
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return mapError(op, pgx.ErrNoRows)
	}
	return nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a            domain.Account
		role, status string
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&role,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.Status = domain.Status(status)
	return a, nil
}

var _ store.Accounts = (*accountsRepo)(nil)
