// Package tokenstore keeps the ids of revoked refresh tokens until they
// would have expired anyway.
package tokenstore

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token ids. Revoke is a claim: it reports true only
// for the one caller that moved the id onto the list.
type Denylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Memory is a process local Denylist.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Revoke(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge()
	if !expiresAt.After(m.now()) {
		return false, nil
	}
	if _, ok := m.entries[jti]; ok {
		return false, nil
	}
	m.entries[jti] = expiresAt
	return true, nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !exp.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// purge drops expired entries. Callers hold mu.
func (m *Memory) purge() {
	now := m.now()
	for jti, exp := range m.entries {
		if !exp.After(now) {
			delete(m.entries, jti)
		}
	}
}
