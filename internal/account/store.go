package account

import (
	"context"

	"accounts-core/internal/account/entity"
)

// Store abstracts the user table so services and the token verifier can run
// against the Postgres repository or an in-memory fake.
type Store interface {
	// Create inserts a new user and returns the assigned id.
	// Returns ErrEmailTaken when the unique constraint on email rejects the row.
	Create(ctx context.Context, u *entity.User) (int64, error)
	// GetByID returns ErrNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// GetByEmail returns ErrNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// List returns a page of users ordered by id ascending.
	List(ctx context.Context, skip, limit int) ([]entity.User, error)
	// Delete removes a user by id; ErrNotFound when no row was removed.
	Delete(ctx context.Context, id int64) error
	// Exists reports whether an active user with the given id is present.
	Exists(ctx context.Context, id int64) (bool, error)
}
