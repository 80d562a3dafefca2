// Package state holds the in-process fallback for admin console state,
// used when no Redis instance is configured.
package state

import (
	"context"
	"sync"

	"trenbolt-bot/internal/domain/ports/repository"
)

var _ repository.AdminStateRepository = (*MemoryStateRepo)(nil)

type MemoryStateRepo struct {
	mu     sync.RWMutex
	states map[int64]repository.AdminState
}

func NewMemoryStateRepo() *MemoryStateRepo {
	return &MemoryStateRepo{states: make(map[int64]repository.AdminState)}
}

func (m *MemoryStateRepo) Set(_ context.Context, chatID int64, state *repository.AdminState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = *state
	return nil
}

func (m *MemoryStateRepo) Get(_ context.Context, chatID int64) (*repository.AdminState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[chatID]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (m *MemoryStateRepo) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	return nil
}
