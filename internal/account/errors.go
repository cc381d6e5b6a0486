package account

import "errors"

// sentinel errors for common failure modes
var (
	// ErrNotFound means no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the store's unique constraint on email
	// rejects an insert.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAuthenticationDenied covers both unknown email and wrong password so
	// callers cannot probe which addresses are registered.
	ErrAuthenticationDenied = errors.New("authentication denied")
	// ErrDeleteFailed is a store-level deletion failure, surfaced as an
	// internal error.
	ErrDeleteFailed = errors.New("can't delete user")
)
