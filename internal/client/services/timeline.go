// Package services contains the application services of the tootcache
// client: the timeline synchronizer, the cache updater that applies events,
// local account management, retention cleanup and the paged lists.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/ids"
	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTrustThreshold = 2
	DefaultPageLimit      = 20
)

// Publisher delivers events to the cache updater. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Window is the result of a timeline load.
type Window struct {
	Rows []models.TimelineRow
	// FromCache is set when the rows were served without a network call.
	FromCache bool
	// Placeholder is the gap marker inserted by this load, if any.
	Placeholder string
}

type TimelineOption func(*TimelineService)

// WithTrustThreshold sets how many cached content rows make a window
// trustworthy without a fetch.
func WithTrustThreshold(n int) TimelineOption {
	return func(s *TimelineService) { s.trustThreshold = n }
}

func WithPageLimit(n int) TimelineOption {
	return func(s *TimelineService) { s.pageLimit = n }
}

func WithTimelineMetrics(m metrics.Metrics) TimelineOption {
	return func(s *TimelineService) { s.metrics = m }
}

func WithTimelineLogger(l logging.Logger) TimelineOption {
	return func(s *TimelineService) { s.log = l }
}

// TimelineService decides whether the cache can answer a timeline window,
// fetches from the server when it cannot, and merges fetched pages into the
// cache. Every merge is one transaction.
type TimelineService struct {
	db      *sql.DB
	clients *client.Registry
	bus     Publisher
	metrics metrics.Metrics
	log     logging.Logger

	trustThreshold int
	pageLimit      int

	group singleflight.Group
	now   func() time.Time
}

func NewTimelineService(db *sql.DB, clients *client.Registry, bus Publisher, opts ...TimelineOption) *TimelineService {
	s := &TimelineService{
		db:             db,
		clients:        clients,
		bus:            bus,
		metrics:        metrics.Nop(),
		log:            logging.Nop(),
		trustThreshold: DefaultTrustThreshold,
		pageLimit:      DefaultPageLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fetched is one converted status of a page.
type fetched struct {
	rec      *models.StatusRecord
	accounts []models.AccountRecord
}

func (f fetched) row() *models.StatusRow {
	row := &models.StatusRow{Status: *f.rec, Account: f.accounts[0]}
	if len(f.accounts) > 1 {
		booster := f.accounts[1]
		row.ReblogAccount = &booster
	}
	return row
}

type mergePlan struct {
	// strict clears the fetched span before inserting.
	strict bool
	// full is set when the server returned as many rows as requested.
	full bool
	// dropPlaceholder is removed in the same transaction.
	dropPlaceholder string
}

// LoadWindow returns the timeline rows with q.SinceID < id < q.MaxID.
//
// When the cache holds at least the trust threshold of content rows in the
// window they are returned as is. Otherwise the same window is fetched and
// merged by overwriting rows by key; nothing outside the fetched page is
// removed. The returned rows are the fetched page, not a re-read of the cache.
func (s *TimelineService) LoadWindow(ctx context.Context, localAccountID int64, q models.PageQuery) (*Window, error) {
	q, err := s.normalize(q)
	if err != nil {
		return nil, err
	}

	rows, err := timeline.NewSQLiteRepository(s.db).QueryRange(ctx, localAccountID, q)
	if err != nil {
		return nil, err
	}
	if models.CountContent(rows) >= s.trustThreshold {
		s.metrics.CacheHit()
		s.log.Debug(ctx, "timeline window served from cache",
			"account", localAccountID, "max_id", q.MaxID, "since_id", q.SinceID, "rows", len(rows))
		return &Window{Rows: rows, FromCache: true}, nil
	}

	key := fmt.Sprintf("window:%d:%s:%s:%d", localAccountID, q.MaxID, q.SinceID, q.Limit)
	return s.collapse(ctx, key, func(ctx context.Context) (*Window, error) {
		return s.fetchAndMerge(ctx, localAccountID, "window", q, mergePlan{})
	})
}

// Refresh fetches the newest page and replaces the cached rows in the span
// it covers, so statuses deleted upstream disappear from the cache.
func (s *TimelineService) Refresh(ctx context.Context, localAccountID int64) (*Window, error) {
	q := models.PageQuery{Limit: s.pageLimit}
	key := fmt.Sprintf("refresh:%d", localAccountID)
	w, err := s.collapse(ctx, key, func(ctx context.Context) (*Window, error) {
		return s.fetchAndMerge(ctx, localAccountID, "refresh", q, mergePlan{strict: true})
	})
	if err != nil {
		return nil, err
	}

	stamp := []byte(strconv.FormatInt(s.now().UTC().Unix(), 10))
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, localAccountID, metadata.KeyLastRefreshedAt, stamp); err != nil {
		s.log.Warn(ctx, "failed to record refresh time", "account", localAccountID, "err", err)
	}
	return w, nil
}

// LoadGap fetches the statuses a placeholder stands for: everything not
// newer than the placeholder and newer than the next cached row below it.
// The placeholder is removed and the page strictly merged; a full page gets
// a new placeholder below it.
func (s *TimelineService) LoadGap(ctx context.Context, localAccountID int64, placeholderID string) (*Window, error) {
	if !ids.Valid(placeholderID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWindow, placeholderID)
	}

	repo := timeline.NewSQLiteRepository(s.db)
	found, err := repo.QueryRange(ctx, localAccountID, models.PageQuery{
		MaxID:   ids.Inc(placeholderID),
		SinceID: ids.Dec(placeholderID),
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) != 1 || found[0].RowID() != placeholderID {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaceholder, placeholderID)
	}
	if _, ok := found[0].(models.Placeholder); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotPlaceholder, placeholderID)
	}

	older, err := repo.NextOlderID(ctx, localAccountID, placeholderID)
	if err != nil {
		return nil, err
	}

	q := models.PageQuery{MaxID: ids.Inc(placeholderID), SinceID: older, Limit: s.pageLimit}
	key := fmt.Sprintf("gap:%d:%s", localAccountID, placeholderID)
	return s.collapse(ctx, key, func(ctx context.Context) (*Window, error) {
		return s.fetchAndMerge(ctx, localAccountID, "gap", q, mergePlan{strict: true, dropPlaceholder: placeholderID})
	})
}

// collapse runs fn once for concurrent callers with the same key. The
// shared load is detached from the first caller's cancellation; a caller
// whose context ends stops waiting and the load carries on for the rest.
func (s *TimelineService) collapse(ctx context.Context, key string, fn func(ctx context.Context) (*Window, error)) (*Window, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Window), nil
	}
}

func (s *TimelineService) fetchAndMerge(ctx context.Context, localAccountID int64, source string, q models.PageQuery, plan mergePlan) (*Window, error) {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return nil, err
	}

	s.metrics.NetworkFetch(source)
	page, err := c.HomeTimeline(ctx, q)
	if err != nil {
		s.metrics.FetchFailed(source, failureReason(err))
		s.log.Warn(ctx, "timeline fetch failed", "account", localAccountID, "source", source, "err", err)
		return nil, fetchFailure(ctx, "home timeline", err)
	}

	batch := make([]fetched, 0, len(page.Items))
	for i := range page.Items {
		rec, accounts, err := models.NewTimelineRecords(localAccountID, &page.Items[i])
		if err != nil {
			s.metrics.FetchFailed(source, failureReason(err))
			return nil, fetchFailure(ctx, "home timeline", err)
		}
		batch = append(batch, fetched{rec: rec, accounts: accounts})
	}
	sort.SliceStable(batch, func(i, j int) bool {
		return ids.Less(batch[j].rec.ServerID, batch[i].rec.ServerID)
	})

	plan.full = len(batch) >= q.Limit
	placeholder, err := s.merge(ctx, localAccountID, batch, plan)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TimelineRow, 0, len(batch)+1)
	for _, f := range batch {
		rows = append(rows, f.row())
	}
	if placeholder != "" {
		rows = append(rows, models.Placeholder{ServerID: placeholder, LocalAccountID: localAccountID})
	}

	s.log.Debug(ctx, "timeline page merged",
		"account", localAccountID, "source", source, "rows", len(batch), "placeholder", placeholder)
	return &Window{Rows: rows, Placeholder: placeholder}, nil
}

// merge writes a converted page in one transaction. Once started it is not
// interrupted by ctx. It returns the id of an inserted gap placeholder.
func (s *TimelineService) merge(ctx context.Context, localAccountID int64, batch []fetched, plan mergePlan) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	obs := s.metrics.StartMerge()
	defer obs.Finish()

	var placeholder string
	err := dbx.WithTx(context.WithoutCancel(ctx), s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := timeline.NewSQLiteRepository(tx)

		if plan.dropPlaceholder != "" {
			if err := repo.DeletePlaceholder(ctx, localAccountID, plan.dropPlaceholder); err != nil {
				return err
			}
		}
		if len(batch) == 0 {
			return nil
		}

		newest := batch[0].rec.ServerID
		oldest := batch[len(batch)-1].rec.ServerID

		overlap, err := repo.HasRowsBetween(ctx, localAccountID, newest, oldest)
		if err != nil {
			return err
		}
		older, err := repo.NextOlderID(ctx, localAccountID, oldest)
		if err != nil {
			return err
		}

		if plan.strict {
			if _, err := repo.DeleteRange(ctx, localAccountID, newest, oldest); err != nil {
				return err
			}
		}

		for _, f := range batch {
			for i := range f.accounts {
				if err := repo.UpsertAccount(ctx, &f.accounts[i]); err != nil {
					return err
				}
			}
			if err := repo.UpsertStatus(ctx, f.rec); err != nil {
				return err
			}
		}

		if plan.full && !overlap && older != "" {
			ph := ids.Dec(oldest)
			if ids.Compare(ph, older) > 0 {
				inserted, err := repo.InsertPlaceholderIfAbsent(ctx, localAccountID, ph)
				if err != nil {
					return err
				}
				if inserted {
					placeholder = ph
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return placeholder, nil
}

func (s *TimelineService) normalize(q models.PageQuery) (models.PageQuery, error) {
	if q.MaxID != "" && !ids.Valid(q.MaxID) {
		return q, fmt.Errorf("%w: max_id %q", ErrInvalidWindow, q.MaxID)
	}
	if q.SinceID != "" && !ids.Valid(q.SinceID) {
		return q, fmt.Errorf("%w: since_id %q", ErrInvalidWindow, q.SinceID)
	}
	if q.Limit <= 0 {
		q.Limit = s.pageLimit
	}
	return q, nil
}

// Favourite toggles the favourite on the server, then updates the cache
// through the event bus.
func (s *TimelineService) Favourite(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if _, err := c.Favourite(ctx, statusID, value); err != nil {
		return fetchFailure(ctx, "favourite", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Favourited{LocalAccountID: localAccountID, StatusID: statusID, Value: value})
}

func (s *TimelineService) Reblog(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if _, err := c.Reblog(ctx, statusID, value); err != nil {
		return fetchFailure(ctx, "reblog", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Reblogged{LocalAccountID: localAccountID, StatusID: statusID, Value: value})
}

func (s *TimelineService) Bookmark(ctx context.Context, localAccountID int64, statusID string, value bool) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if _, err := c.Bookmark(ctx, statusID, value); err != nil {
		return fetchFailure(ctx, "bookmark", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Bookmarked{LocalAccountID: localAccountID, StatusID: statusID, Value: value})
}

// VotePoll votes in the poll attached to statusID and stores the updated poll.
func (s *TimelineService) VotePoll(ctx context.Context, localAccountID int64, statusID, pollID string, choices []int) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	poll, err := c.Vote(ctx, pollID, choices)
	if err != nil {
		return fetchFailure(ctx, "vote", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.PollVoted{LocalAccountID: localAccountID, StatusID: statusID, Poll: *poll})
}

// Delete removes one of the user's own statuses.
func (s *TimelineService) Delete(ctx context.Context, localAccountID int64, statusID string) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if err := c.DeleteStatus(ctx, statusID); err != nil {
		return fetchFailure(ctx, "delete status", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.StatusDeleted{LocalAccountID: localAccountID, StatusID: statusID})
}

func (s *TimelineService) Unfollow(ctx context.Context, localAccountID int64, accountID string) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if err := c.Unfollow(ctx, accountID); err != nil {
		return fetchFailure(ctx, "unfollow", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Unfollowed{LocalAccountID: localAccountID, TargetAccountID: accountID})
}

func (s *TimelineService) Block(ctx context.Context, localAccountID int64, accountID string) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if err := c.Block(ctx, accountID); err != nil {
		return fetchFailure(ctx, "block", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Blocked{LocalAccountID: localAccountID, TargetAccountID: accountID})
}

func (s *TimelineService) Mute(ctx context.Context, localAccountID int64, accountID string) error {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return err
	}
	if err := c.Mute(ctx, accountID); err != nil {
		return fetchFailure(ctx, "mute", err)
	}
	return s.bus.Publish(context.WithoutCancel(ctx), events.Muted{LocalAccountID: localAccountID, TargetAccountID: accountID})
}
