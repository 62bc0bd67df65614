package auth

import (
	"context"
	"crypto/subtle"
	"sync"
)

// UserPrefix is the key prefix of credential entries in the properties file.
const UserPrefix = "usuario."

// MemorySource keeps plain credentials loaded from a key-value file.
// Safe for concurrent use; sessions only read it.
type MemorySource struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewMemorySource copies users (name -> password).
func NewMemorySource(users map[string]string) *MemorySource {
	m := &MemorySource{users: make(map[string]string, len(users))}
	for name, pw := range users {
		m.users[NormalizeUsername(name)] = pw
	}
	return m
}

// Verify compares passwords in constant time.
func (m *MemorySource) Verify(ctx context.Context, user, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, ErrUnavailable
	}
	m.mu.RLock()
	want, ok := m.users[user]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1, nil
}

// Len reports how many users are loaded.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
