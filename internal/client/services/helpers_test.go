package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func wireStatus(id, authorID string) models.Status {
	return models.Status{
		ID:         id,
		CreatedAt:  baseTime,
		Account:    &models.Account{ID: authorID, Username: "user" + authorID, Acct: "user" + authorID},
		Content:    "<p>status " + id + "</p>",
		Visibility: models.VisibilityPublic,
	}
}

func wireReblog(id, contentID, authorID, boosterID string) models.Status {
	content := wireStatus(contentID, authorID)
	s := wireStatus(id, boosterID)
	s.CreatedAt = baseTime.Add(time.Hour)
	s.Reblog = &content
	return s
}

func page(items ...models.Status) *models.Page[models.Status] {
	return &models.Page[models.Status]{Items: items}
}

// seed stores statuses directly, bypassing the synchronizer.
func seed(t *testing.T, db *sql.DB, acc int64, statuses ...models.Status) {
	t.Helper()
	repo := timeline.NewSQLiteRepository(db)
	ctx := context.Background()
	for i := range statuses {
		rec, accounts, err := models.NewTimelineRecords(acc, &statuses[i])
		require.NoError(t, err)
		for j := range accounts {
			require.NoError(t, repo.UpsertAccount(ctx, &accounts[j]))
		}
		require.NoError(t, repo.UpsertStatus(ctx, rec))
	}
}

func seedPlaceholder(t *testing.T, db *sql.DB, acc int64, id string) {
	t.Helper()
	ok, err := timeline.NewSQLiteRepository(db).InsertPlaceholderIfAbsent(context.Background(), acc, id)
	require.NoError(t, err)
	require.True(t, ok)
}

func cachedIDs(t *testing.T, db *sql.DB, acc int64) []string {
	t.Helper()
	rows, err := timeline.NewSQLiteRepository(db).QueryRange(context.Background(), acc, models.PageQuery{Limit: 1000})
	require.NoError(t, err)
	return rowIDs(rows)
}

func rowIDs(rows []models.TimelineRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.RowID())
	}
	return out
}

// recordingPublisher keeps published events instead of delivering them. Like
// the bus it refuses to publish on an ended context.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}
