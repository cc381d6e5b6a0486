package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"accounts-core/internal/account"
	"accounts-core/internal/account/entity"
)

// pgUniqueViolation is the Postgres error code for unique constraint breaches.
const pgUniqueViolation = "23505"

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// compile-time check that the repo satisfies the store contract
var _ account.Store = (*UserRepo)(nil)

// EnsureTable creates the users table if not exists (idempotent).
// The UNIQUE constraint on email is what resolves concurrent registration;
// there is deliberately no application-level pre-check.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL DEFAULT '',
  grp TEXT NOT NULL DEFAULT 'users',
  password_hash TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT true,
  is_superuser BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// Create inserts a new user row and fills in the assigned id.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (int64, error) {
	const q = `INSERT INTO users (email, username, grp, password_hash, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowxContext(ctx, q,
		u.Email, u.Username, u.Group, u.PasswordHash, u.IsActive, u.IsSuperuser,
	).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return 0, account.ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT id, email, username, grp, password_hash, is_active, is_superuser, created_at
		FROM users WHERE id=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &row, nil
}

// GetByEmail returns the user matched by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT id, email, username, grp, password_hash, is_active, is_superuser, created_at
		FROM users WHERE email=$1`
	var row entity.User
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &row, nil
}

// List returns a page of users in insertion order.
func (r *UserRepo) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	const q = `SELECT id, email, username, grp, password_hash, is_active, is_superuser, created_at
		FROM users ORDER BY id ASC OFFSET $1 LIMIT $2`
	users := []entity.User{}
	if err := r.db.SelectContext(ctx, &users, q, skip, limit); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete removes a user by id.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// Exists reports whether an active user with the given id is present.
// Deactivated users are treated as absent so their outstanding tokens stop
// verifying.
func (r *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND is_active)`
	if err := r.db.GetContext(ctx, &exists, q, id); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}
