package client

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the API client of every unlocked local account.
type Registry struct {
	mu      sync.RWMutex
	clients map[int64]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: map[int64]Client{}}
}

func (r *Registry) Register(localAccountID int64, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[localAccountID] = c
}

func (r *Registry) Remove(localAccountID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, localAccountID)
}

// Get returns ErrAccountLocked when the account has not been unlocked.
func (r *Registry) Get(localAccountID int64) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[localAccountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", localAccountID, ErrAccountLocked)
	}
	return c, nil
}

// IDs lists unlocked accounts in ascending order.
func (r *Registry) IDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
