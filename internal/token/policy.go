package token

import (
	"context"
	"errors"
)

// ErrForbidden means the caller's token is missing/invalid or the caller
// lacks the privilege for the operation.
var ErrForbidden = errors.New("forbidden")

// RequireValidToken gates protected operations on Verify.
func (s *Service) RequireValidToken(ctx context.Context, tok string) error {
	if !s.Verify(ctx, tok) {
		return ErrForbidden
	}
	return nil
}

// RequireSuperuser gates privileged operations on the superuser claim.
func RequireSuperuser(c *Claims) error {
	if !c.IsSuperuser {
		return ErrForbidden
	}
	return nil
}

// ResolveDeleteTarget applies the deletion policy. An absent target always
// means "delete self", superuser or not. Deleting a different account
// requires the superuser claim; deleting yourself, by omission or by your own
// explicit id, does not.
func ResolveDeleteTarget(c *Claims, target *int64) (int64, error) {
	if target == nil || *target == c.UserID {
		return c.UserID, nil
	}
	if err := RequireSuperuser(c); err != nil {
		return 0, err
	}
	return *target, nil
}
