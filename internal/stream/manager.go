package stream

import (
	"sync"

	"github.com/google/uuid"

	"docqa/backend/internal/answer"
	app_errors "docqa/backend/internal/errors"
)

// Manager owns the live chat sessions. Each session gets its own Store,
// created on demand and discarded on session end; nothing is persisted.
type Manager struct {
	mu       sync.Mutex
	provider answer.Provider
	welcome  string
	sessions map[string]*Store
}

func NewManager(provider answer.Provider, welcomeText string) *Manager {
	return &Manager{
		provider: provider,
		welcome:  welcomeText,
		sessions: make(map[string]*Store),
	}
}

// Create starts a new session and returns its id together with the
// freshly seeded store.
func (m *Manager) Create() (string, *Store) {
	id := uuid.NewString()
	store := NewStore(m.provider, m.welcome)

	m.mu.Lock()
	m.sessions[id] = store
	m.mu.Unlock()

	return id, store
}

// Get returns the store for an existing session, or ErrNotFound when the
// session id is unknown (expired, ended, or never created).
func (m *Manager) Get(id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.sessions[id]
	if !ok {
		return nil, app_errors.ErrNotFound
	}
	return store, nil
}

// Delete ends a session and discards its state. Deleting an unknown id is
// a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
