package prefs

import (
	"context"
	"sync"
)

// MemoryRepository keeps preferences in process. They do not survive a
// restart, which matches how the dashboard treats them: convenience
// state, rebuilt from defaults when absent. The map holds values, so
// callers never share storage with the repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]Preferences
}

// NewMemoryRepository creates an empty in-process preference store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]Preferences)}
}

// Get retrieves preferences by user ID.
func (r *MemoryRepository) Get(_ context.Context, userID string) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Put stores preferences, replacing any existing entry for the user.
func (r *MemoryRepository) Put(_ context.Context, p *Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byUser[p.UserID] = *p
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
