package timeline

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
)

// Repository is the timeline store. Every method is scoped to one local
// account; rows of other accounts are never read or touched.
//
// Targeted mutations match a row either by its entry id or by the id of the
// content it reblogs, and are no-ops when nothing matches.
type Repository interface {
	// UpsertStatus inserts or overwrites the row at (ServerID, LocalAccountID).
	// Overwriting a placeholder turns it into content.
	UpsertStatus(ctx context.Context, s *models.StatusRecord) error

	// UpsertAccount inserts or overwrites an author projection.
	UpsertAccount(ctx context.Context, a *models.AccountRecord) error

	// InsertPlaceholderIfAbsent inserts a placeholder unless any row already
	// occupies the key. It reports whether a row was inserted.
	InsertPlaceholderIfAbsent(ctx context.Context, localAccountID int64, serverID string) (bool, error)

	// QueryRange returns up to q.Limit rows with SinceID < id < MaxID, newest
	// first, joined with author and reblog author.
	QueryRange(ctx context.Context, localAccountID int64, q models.PageQuery) ([]models.TimelineRow, error)

	SetFavourited(ctx context.Context, localAccountID int64, statusID string, value bool) error
	SetReblogged(ctx context.Context, localAccountID int64, statusID string, value bool) error
	SetBookmarked(ctx context.Context, localAccountID int64, statusID string, value bool) error

	// SetPollVote replaces the serialized poll of the status.
	SetPollVote(ctx context.Context, localAccountID int64, statusID string, poll string) error

	// UpdateIfPresent refreshes the content columns of cached rows showing
	// s.ServerID, leaving reblog linkage intact. It returns the number of
	// rows updated.
	UpdateIfPresent(ctx context.Context, s *models.StatusRecord) (int64, error)

	DeleteStatus(ctx context.Context, localAccountID int64, statusID string) error
	DeletePlaceholder(ctx context.Context, localAccountID int64, serverID string) error

	// DeleteRange removes every row, content or placeholder, whose id lies in
	// the inclusive range between fromID and toID, in either argument order.
	DeleteRange(ctx context.Context, localAccountID int64, fromID, toID string) (int64, error)

	// RemoveAllByAuthor removes rows authored or reblogged by the account.
	RemoveAllByAuthor(ctx context.Context, localAccountID int64, authorServerID string) (int64, error)

	// HasRowsBetween reports whether any row lies in the inclusive range.
	HasRowsBetween(ctx context.Context, localAccountID int64, fromID, toID string) (bool, error)

	// NextOlderID returns the id of the newest row strictly older than id,
	// or "" when there is none.
	NextOlderID(ctx context.Context, localAccountID int64, id string) (string, error)

	// PruneOldData removes content older than maxAge (relative to now) that is
	// not among the newest keepCount rows, then placeholders left with nothing
	// below them, then author records no longer referenced.
	PruneOldData(ctx context.Context, localAccountID int64, keepCount int, maxAge time.Duration, now time.Time) (PruneResult, error)

	// ClearAccount removes every cached row of the account.
	ClearAccount(ctx context.Context, localAccountID int64) error
}

// PruneResult counts the rows removed by PruneOldData.
type PruneResult struct {
	Statuses     int64
	Placeholders int64
	Accounts     int64
}

func (r PruneResult) Total() int64 {
	return r.Statuses + r.Placeholders + r.Accounts
}
