package session

import "sync"

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Storage is durable key/value storage for the session pair.
//
// Save and Clear must write or delete both keys atomically.
type Storage interface {
	Load() (token, user string, err error)
	Save(token, user string) error
	Clear() error
}

// MemoryStorage is a process-local [Storage].
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage creates an empty [MemoryStorage].
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Load() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[TokenKey], m.values[UserKey], nil
}

func (m *MemoryStorage) Save(token, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[TokenKey], m.values[UserKey] = token, user
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, TokenKey)
	delete(m.values, UserKey)
	return nil
}

// Set writes a single key. It exists to seed partial or corrupt state.
func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Has reports whether key is present.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}
