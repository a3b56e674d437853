package events

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/google/uuid"
)

var ErrBusClosed = errors.New("event bus closed")

// Handler consumes one event. Handlers of one subscription run sequentially
// in publish order.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	ch   chan Event
	done chan struct{}
}

// Bus fans events out to subscribers. Each subscriber gets its own buffered
// queue and goroutine, so a slow subscriber never reorders another one.
type Bus struct {
	log    logging.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[uuid.UUID]*subscription
	closed bool
	wg     sync.WaitGroup
}

func NewBus(log logging.Logger, buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{log: log, buffer: buffer, subs: map[uuid.UUID]*subscription{}}
}

// Subscribe starts delivering events to h until Unsubscribe or Close.
// ctx is passed to h and is not used to stop the subscription.
func (b *Bus) Subscribe(ctx context.Context, h Handler) (uuid.UUID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return uuid.Nil, ErrBusClosed
	}

	id := uuid.New()
	sub := &subscription{ch: make(chan Event, b.buffer), done: make(chan struct{})}
	b.subs[id] = sub

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(sub.done)
		for e := range sub.ch {
			h(ctx, e)
		}
	}()

	b.log.Debug(ctx, "event subscriber added", "subscription", id.String())
	return id, nil
}

// Unsubscribe stops a subscription after its queued events are handled.
func (b *Bus) Unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(sub.ch)
	}
	b.mu.Unlock()

	if ok {
		<-sub.done
	}
}

// Publish enqueues e for every subscriber, blocking while a queue is full
// until ctx is done.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close drains and stops every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
