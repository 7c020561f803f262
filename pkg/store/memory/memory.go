// Package memory provides an in-memory implementation of store.UserStore
// for tests and lightweight deployments. Records are kept in memory and
// lost when the process restarts.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/coverly/coverly/pkg/store"
)

// Store is an in-memory UserStore.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*store.User
	byEmail map[string]string // lower(email) -> user id
}

// Ensure Store implements store.UserStore at compile time.
var _ store.UserStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*store.User),
		byEmail: make(map[string]string),
	}
}

// Create persists a new user and stamps its timestamps. Email uniqueness
// is enforced case-insensitively.
func (s *Store) Create(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emailKey := strings.ToLower(u.Email)
	if _, exists := s.byEmail[emailKey]; exists {
		return store.ErrEmailTaken
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.UpdatedAt = u.CreatedAt

	s.byID[u.ID] = cloneUser(u)
	s.byEmail[emailKey] = u.ID

	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if no such user
// exists.
func (s *Store) GetByID(ctx context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return cloneUser(u), nil
}

// GetByEmail retrieves a user by email address, compared
// case-insensitively. Returns ErrNotFound if no such user exists.
func (s *Store) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrNotFound
	}

	return cloneUser(s.byID[id]), nil
}

// Update persists the mutable fields of an existing user. The stored
// email address and creation time are preserved regardless of what the
// passed record carries.
func (s *Store) Update(ctx context.Context, u *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[u.ID]
	if !ok {
		return store.ErrNotFound
	}

	u.UpdatedAt = time.Now().UTC()

	updated := cloneUser(u)
	updated.Email = existing.Email
	updated.CreatedAt = existing.CreatedAt
	s.byID[u.ID] = updated

	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// cloneUser copies a user record so callers never alias stored state.
func cloneUser(u *store.User) *store.User {
	c := *u
	if u.PasswordHash != nil {
		c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	}
	if u.Roles != nil {
		c.Roles = append([]string(nil), u.Roles...)
	}
	if u.Preferences != nil {
		c.Preferences = make(map[string]any, len(u.Preferences))
		for k, v := range u.Preferences {
			c.Preferences[k] = v
		}
	}
	return &c
}
