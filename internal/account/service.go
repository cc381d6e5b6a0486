package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"accounts-core/internal/account/entity"
	"accounts-core/internal/token"
)

// CreateInput carries the fields for a new account. IsSuperuser is honored
// only on the admin-create path; Register forces it off.
type CreateInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Group       string `json:"group"`
	Password    string `json:"password"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Service implements the account operations as thin wrappers over the store.
// Authorization is decided before these methods run (see the token package
// and the HTTP handler); none of them re-check the caller.
type Service struct {
	store  Store
	hasher token.PasswordHasher
	tokens *token.Service
}

func NewService(store Store, hasher token.PasswordHasher, tokens *token.Service) *Service {
	if hasher == nil {
		hasher = token.BcryptHasher{}
	}
	return &Service{store: store, hasher: hasher, tokens: tokens}
}

// Register creates a non-superuser account. Email uniqueness is resolved by
// the store's constraint; concurrent registrations race there, not here.
func (s *Service) Register(ctx context.Context, in CreateInput) (*entity.PublicUser, error) {
	in.IsSuperuser = false
	return s.Create(ctx, in)
}

// Create persists a new account, hashing the password. Unlike Register it
// honors the IsSuperuser flag, so it must stay behind the superuser gate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.PublicUser, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, errors.New("email required")
	}
	group := in.Group
	if group == "" {
		group = entity.DefaultGroup
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:        email,
		Username:     in.Username,
		Group:        group,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  in.IsSuperuser,
	}
	if _, err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// Authenticate checks credentials and returns the user's public view.
// Unknown email, wrong password and deactivated accounts all surface as the
// same ErrAuthenticationDenied.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.PublicUser, error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAuthenticationDenied
		}
		return nil, err
	}
	if !u.IsActive || !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrAuthenticationDenied
	}
	pub := u.Public()
	return &pub, nil
}

// Login issues a bearer token on successful password verification. An
// unknown email is an error; a wrong password (or a deactivated account) is
// the non-exceptional rejection path: ok=false, no error.
func (s *Service) Login(ctx context.Context, email, password string) (tok string, ok bool, err error) {
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", false, err
	}
	if !u.IsActive || !s.hasher.Verify(password, u.PasswordHash) {
		return "", false, nil
	}
	tok, err = s.tokens.Issue(u.Public(), 0)
	if err != nil {
		return "", false, fmt.Errorf("issue token: %w", err)
	}
	return tok, true, nil
}

// List returns a page of public user views in id order.
func (s *Service) List(ctx context.Context, skip, limit int) ([]entity.PublicUser, error) {
	users, err := s.store.List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entity.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

// GetByID returns a single public user view.
func (s *Service) GetByID(ctx context.Context, id int64) (*entity.PublicUser, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// Delete removes the account. The target id has already been resolved by the
// deletion policy; any store failure, including a vanished row, is reported
// as ErrDeleteFailed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}
