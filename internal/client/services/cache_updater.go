package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/google/uuid"
)

// CacheUpdater applies events to the timeline cache. Each event becomes a
// single statement against the store, so it can interleave with page merges
// without extra locking.
type CacheUpdater struct {
	db      dbx.DBTX
	metrics metrics.Metrics
	log     logging.Logger
}

func NewCacheUpdater(db dbx.DBTX, m metrics.Metrics, log logging.Logger) *CacheUpdater {
	return &CacheUpdater{db: db, metrics: m, log: log}
}

// Subscribe attaches the updater to bus. Failures are logged; an event
// that cannot be applied is dropped.
func (u *CacheUpdater) Subscribe(ctx context.Context, bus *events.Bus) (uuid.UUID, error) {
	return bus.Subscribe(ctx, func(ctx context.Context, e events.Event) {
		if err := u.Handle(ctx, e); err != nil {
			u.log.Error(ctx, "failed to apply event", "kind", e.Kind(), "account", e.Account(), "err", err)
		}
	})
}

func (u *CacheUpdater) Handle(ctx context.Context, e events.Event) error {
	repo := timeline.NewSQLiteRepository(u.db)
	acc := e.Account()

	var err error
	switch e := e.(type) {
	case events.Favourited:
		err = repo.SetFavourited(ctx, acc, e.StatusID, e.Value)
	case events.Reblogged:
		err = repo.SetReblogged(ctx, acc, e.StatusID, e.Value)
	case events.Bookmarked:
		err = repo.SetBookmarked(ctx, acc, e.StatusID, e.Value)
	case events.PollVoted:
		var poll []byte
		poll, err = json.Marshal(e.Poll)
		if err == nil {
			err = repo.SetPollVote(ctx, acc, e.StatusID, string(poll))
		}
	case events.StatusDeleted:
		err = repo.DeleteStatus(ctx, acc, e.StatusID)
	case events.StatusEdited:
		err = u.applyEdit(ctx, repo, acc, &e.Status)
	case events.Unfollowed:
		_, err = repo.RemoveAllByAuthor(ctx, acc, e.TargetAccountID)
	case events.Blocked:
		_, err = repo.RemoveAllByAuthor(ctx, acc, e.TargetAccountID)
	case events.Muted:
		_, err = repo.RemoveAllByAuthor(ctx, acc, e.TargetAccountID)
	default:
		u.log.Debug(ctx, "ignoring event", "kind", e.Kind())
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", e.Kind(), err)
	}

	u.metrics.EventApplied(e.Kind())
	return nil
}

// applyEdit refreshes cached copies of an edited status. Statuses that are
// not cached are not added.
func (u *CacheUpdater) applyEdit(ctx context.Context, repo timeline.Repository, acc int64, s *models.Status) error {
	rec, accounts, err := models.NewTimelineRecords(acc, s)
	if err != nil {
		return err
	}
	n, err := repo.UpdateIfPresent(ctx, rec)
	if err != nil || n == 0 {
		return err
	}
	return repo.UpsertAccount(ctx, &accounts[0])
}
