package streaming

import (
	"context"
	"sync"
)

// Manager runs one Subscriber per unlocked account.
type Manager struct {
	ctx  context.Context
	pub  Publisher
	opts []Option

	mu      sync.Mutex
	running map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a manager whose subscribers stop when ctx is done.
func NewManager(ctx context.Context, pub Publisher, opts ...Option) *Manager {
	return &Manager{ctx: ctx, pub: pub, opts: opts, running: map[int64]context.CancelFunc{}}
}

// Start replaces any running subscriber of the account.
func (m *Manager) Start(localAccountID int64, instance, token string) error {
	sub, err := NewSubscriber(localAccountID, instance, token, m.pub, m.opts...)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.running[localAccountID]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.running[localAccountID] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = sub.Run(ctx)
	}()
	return nil
}

func (m *Manager) Stop(localAccountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.running[localAccountID]; ok {
		cancel()
		delete(m.running, localAccountID)
	}
}

// Close stops all subscribers and waits for them.
func (m *Manager) Close() {
	m.mu.Lock()
	for id, cancel := range m.running {
		cancel()
		delete(m.running, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}
