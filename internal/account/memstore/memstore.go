// Package memstore is an in-memory account.Store used by tests and local
// development. Ids are assigned sequentially, matching the Postgres
// BIGSERIAL behavior.
package memstore

import (
	"context"
	"sort"
	"sync"

	"accounts-core/internal/account"
	"accounts-core/internal/account/entity"
)

type InMemory struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]entity.User
}

func New() *InMemory {
	return &InMemory{users: make(map[int64]entity.User)}
}

var _ account.Store = (*InMemory)(nil)

func (s *InMemory) Create(ctx context.Context, u *entity.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return 0, account.ErrEmailTaken
		}
	}
	s.seq++
	u.ID = s.seq
	s.users[u.ID] = *u
	return u.ID, nil
}

func (s *InMemory) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, account.ErrNotFound
}

func (s *InMemory) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	if skip >= len(all) {
		return []entity.User{}, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemory) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return account.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *InMemory) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return ok && u.IsActive, nil
}

// SetActive flips the active flag; test hook for deactivation behavior.
func (s *InMemory) SetActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = active
		s.users[id] = u
	}
}
