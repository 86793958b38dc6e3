package database

import (
	"context"
	"sync"
)

// MemoryResourceRepository keeps records of one kind in process memory.
// It mirrors ResourceRepository and backs tests that run without Postgres.
type MemoryResourceRepository[T, F any] struct {
	kind Kind[T, F]

	mu    sync.RWMutex
	order []string
	items map[string]T
}

// NewMemoryResourceRepository creates an empty in-memory repository for kind.
func NewMemoryResourceRepository[T, F any](kind Kind[T, F]) *MemoryResourceRepository[T, F] {
	return &MemoryResourceRepository[T, F]{
		kind:  kind,
		items: make(map[string]T),
	}
}

func (m *MemoryResourceRepository[T, F]) Create(_ context.Context, id string, fields F) (*T, error) {
	var rec T
	*m.kind.ID(&rec) = id
	m.kind.apply(&rec, fields)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[id]; !exists {
		m.order = append(m.order, id)
	}
	m.items[id] = rec

	return &rec, nil
}

func (m *MemoryResourceRepository[T, F]) List(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.items[id])
	}
	return out, nil
}

func (m *MemoryResourceRepository[T, F]) Get(_ context.Context, id string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryResourceRepository[T, F]) Update(_ context.Context, id string, fields F) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.kind.apply(&rec, fields)
	m.items[id] = rec

	return &rec, nil
}

func (m *MemoryResourceRepository[T, F]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// MemoryUserRepository keeps users in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (m *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserRepository) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = append(m.users, *u)
	return nil
}
