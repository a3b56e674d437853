// Package events carries cache-relevant state changes (a favourite toggled,
// a status deleted upstream, an account blocked...) from the code that
// observed them to the subscribers that keep the timeline cache in sync.
package events

import "github.com/dmitrijs2005/tootcache/internal/client/models"

// Event is implemented by every message on the bus. Each event belongs to
// exactly one local account.
type Event interface {
	Account() int64
	Kind() string
}

type Favourited struct {
	LocalAccountID int64
	StatusID       string
	Value          bool
}

type Reblogged struct {
	LocalAccountID int64
	StatusID       string
	Value          bool
}

type Bookmarked struct {
	LocalAccountID int64
	StatusID       string
	Value          bool
}

type PollVoted struct {
	LocalAccountID int64
	StatusID       string
	Poll           models.Poll
}

type StatusDeleted struct {
	LocalAccountID int64
	StatusID       string
}

// StatusEdited carries the new version of an edited status.
type StatusEdited struct {
	LocalAccountID int64
	Status         models.Status
}

type Unfollowed struct {
	LocalAccountID  int64
	TargetAccountID string
}

type Blocked struct {
	LocalAccountID  int64
	TargetAccountID string
}

type Muted struct {
	LocalAccountID  int64
	TargetAccountID string
}

func (e Favourited) Account() int64    { return e.LocalAccountID }
func (e Reblogged) Account() int64     { return e.LocalAccountID }
func (e Bookmarked) Account() int64    { return e.LocalAccountID }
func (e PollVoted) Account() int64     { return e.LocalAccountID }
func (e StatusDeleted) Account() int64 { return e.LocalAccountID }
func (e StatusEdited) Account() int64  { return e.LocalAccountID }
func (e Unfollowed) Account() int64    { return e.LocalAccountID }
func (e Blocked) Account() int64       { return e.LocalAccountID }
func (e Muted) Account() int64         { return e.LocalAccountID }

func (Favourited) Kind() string    { return "favourite" }
func (Reblogged) Kind() string     { return "reblog" }
func (Bookmarked) Kind() string    { return "bookmark" }
func (PollVoted) Kind() string     { return "poll_vote" }
func (StatusDeleted) Kind() string { return "status_deleted" }
func (StatusEdited) Kind() string  { return "status_edited" }
func (Unfollowed) Kind() string    { return "unfollow" }
func (Blocked) Kind() string       { return "block" }
func (Muted) Kind() string         { return "mute" }
