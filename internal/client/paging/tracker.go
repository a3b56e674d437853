// Package paging drives "load next page" over cursor-paginated remote lists
// such as domain blocks, followed tags and notification requests.
package paging

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	EndReached
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case EndReached:
		return "end reached"
	}
	return "unknown"
}

type LoadType int

const (
	// Refresh drops the cursor and the buffer and fetches the first page.
	Refresh LoadType = iota
	// Append fetches the page after the current cursor.
	Append
)

var (
	ErrNoMoreData     = errors.New("no more data")
	ErrLoadInProgress = errors.New("load already in progress")
)

// FetchFunc loads the page that starts below maxID ("" for the first page).
type FetchFunc[T any] func(ctx context.Context, maxID string) (*models.Page[T], error)

// Tracker keeps the next-page cursor and the end-of-data flag of one list,
// plus the items loaded so far. Fetch errors are returned unchanged and
// never retried; the tracker stays where it was before the failed load.
type Tracker[T any] struct {
	fetch FetchFunc[T]

	mu     sync.Mutex
	state  State
	cursor string
	items  []T
}

func NewTracker[T any](fetch FetchFunc[T]) *Tracker[T] {
	return &Tracker[T]{fetch: fetch}
}

// Load performs one transition and returns the items of the fetched page.
// Append without a cursor returns ErrNoMoreData without fetching and
// without changing state. Refresh replaces the buffer only once the first
// page has arrived.
func (t *Tracker[T]) Load(ctx context.Context, lt LoadType) ([]T, error) {
	t.mu.Lock()
	if t.state == Loading {
		t.mu.Unlock()
		return nil, ErrLoadInProgress
	}

	prevState, cursor := t.state, t.cursor
	switch lt {
	case Refresh:
		cursor = ""
	case Append:
		if t.state == EndReached || t.cursor == "" {
			t.mu.Unlock()
			return nil, ErrNoMoreData
		}
	}
	t.state = Loading
	t.mu.Unlock()

	page, err := t.fetch(ctx, cursor)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		t.state = prevState
		return nil, err
	}

	var items []T
	if page != nil {
		items = page.Items
	}
	if lt == Refresh {
		t.items = nil
	}
	t.items = append(t.items, items...)

	if len(items) == 0 || page.NextMaxID == "" {
		t.state = EndReached
		t.cursor = ""
	} else {
		t.state = Loaded
		t.cursor = page.NextMaxID
	}
	return items, nil
}

func (t *Tracker[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker[T]) Cursor() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Items returns a copy of everything loaded since the last refresh.
func (t *Tracker[T]) Items() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, len(t.items))
	copy(out, t.items)
	return out
}
