package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/directory"
)

// MockDirectory is a seedable in-memory test double for directory.Directory.
// Users can be added and removed between calls to exercise synchronization.
// It allows custom behavior injection via function fields.
type MockDirectory struct {
	// ListAllFunc is called by ListAll if set.
	ListAllFunc func(ctx context.Context) ([]*core.User, error)

	// GetByIDFunc is called by GetByID if set.
	GetByIDFunc func(ctx context.Context, id core.ID) (*core.User, error)

	mu        sync.Mutex
	users     map[core.ID]*core.User
	listCalls int
	getCalls  int
}

var _ directory.Directory = (*MockDirectory)(nil)

// NewMockDirectory creates an empty mock directory.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		users: make(map[core.ID]*core.User),
	}
}

// Seed adds a user with the given id and bio text.
func (m *MockDirectory) Seed(id core.ID, about string) *core.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := &core.User{
		ID:         id,
		Attributes: map[string]string{"about": about},
	}
	m.users[id] = user
	return user
}

// SeedUser adds a fully specified user.
func (m *MockDirectory) SeedUser(user *core.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// Remove deletes a user, simulating directory churn.
func (m *MockDirectory) Remove(id core.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// ListAll returns the current user set, ordered by id for determinism.
func (m *MockDirectory) ListAll(ctx context.Context) ([]*core.User, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	users := make([]*core.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// GetByID returns the user or directory.ErrNotFound.
func (m *MockDirectory) GetByID(ctx context.Context, id core.ID) (*core.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	user, ok := m.users[id]
	if !ok {
		return nil, directory.ErrNotFound
	}
	return user, nil
}

// ListCalls returns how many times ListAll was invoked.
func (m *MockDirectory) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// GetCalls returns how many times GetByID was invoked.
func (m *MockDirectory) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}
