package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpdater(t *testing.T) (*CacheUpdater, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	return NewCacheUpdater(db, metrics.Nop(), logging.Nop()), db
}

func statusRow(t *testing.T, db *sql.DB, account int64, id string) *models.StatusRow {
	t.Helper()
	rows, err := timeline.NewSQLiteRepository(db).QueryRange(context.Background(), account, models.PageQuery{Limit: 1000})
	require.NoError(t, err)
	for _, r := range rows {
		if r.RowID() == id {
			row, ok := r.(*models.StatusRow)
			require.True(t, ok, "row %s is not content", id)
			return row
		}
	}
	t.Fatalf("row %s not cached", id)
	return nil
}

func TestCacheUpdater_FlagEvents(t *testing.T) {
	u, db := newUpdater(t)
	ctx := context.Background()
	seed(t, db, acc, wireStatus("7", "a"), wireReblog("9", "7", "a", "b"))

	require.NoError(t, u.Handle(ctx, events.Favourited{LocalAccountID: acc, StatusID: "7", Value: true}))
	require.NoError(t, u.Handle(ctx, events.Reblogged{LocalAccountID: acc, StatusID: "7", Value: true}))
	require.NoError(t, u.Handle(ctx, events.Bookmarked{LocalAccountID: acc, StatusID: "7", Value: true}))

	for _, id := range []string{"7", "9"} {
		row := statusRow(t, db, acc, id)
		assert.True(t, row.Status.Favourited, id)
		assert.True(t, row.Status.Reblogged, id)
		assert.True(t, row.Status.Bookmarked, id)
	}

	require.NoError(t, u.Handle(ctx, events.Favourited{LocalAccountID: acc, StatusID: "7", Value: false}))
	assert.False(t, statusRow(t, db, acc, "7").Status.Favourited)
}

func TestCacheUpdater_AbsentRowIsNoop(t *testing.T) {
	u, db := newUpdater(t)
	ctx := context.Background()

	require.NoError(t, u.Handle(ctx, events.Favourited{LocalAccountID: acc, StatusID: "404", Value: true}))
	require.NoError(t, u.Handle(ctx, events.StatusDeleted{LocalAccountID: acc, StatusID: "404"}))
	assert.Empty(t, cachedIDs(t, db, acc))
}

func TestCacheUpdater_PollVote(t *testing.T) {
	u, db := newUpdater(t)
	seed(t, db, acc, wireStatus("7", "a"))

	poll := models.Poll{ID: "p1", Voted: true, OwnVotes: []int{1}, Options: []models.PollOption{{Title: "x"}, {Title: "y"}}}
	require.NoError(t, u.Handle(context.Background(), events.PollVoted{LocalAccountID: acc, StatusID: "7", Poll: poll}))

	var stored models.Poll
	require.NoError(t, json.Unmarshal([]byte(statusRow(t, db, acc, "7").Status.Poll), &stored))
	assert.Equal(t, poll, stored)
}

func TestCacheUpdater_DeleteRemovesReblogsToo(t *testing.T) {
	u, db := newUpdater(t)
	seed(t, db, acc, wireStatus("7", "a"), wireReblog("9", "7", "a", "b"), wireStatus("8", "c"))

	require.NoError(t, u.Handle(context.Background(), events.StatusDeleted{LocalAccountID: acc, StatusID: "7"}))
	assert.Equal(t, []string{"8"}, cachedIDs(t, db, acc))
}

func TestCacheUpdater_EditUpdatesCachedCopiesOnly(t *testing.T) {
	u, db := newUpdater(t)
	seed(t, db, acc, wireStatus("7", "a"), wireReblog("9", "7", "a", "b"))

	edited := wireStatus("7", "a")
	edited.Content = "<p>fixed typo</p>"
	require.NoError(t, u.Handle(context.Background(), events.StatusEdited{LocalAccountID: acc, Status: edited}))

	assert.Equal(t, "<p>fixed typo</p>", statusRow(t, db, acc, "7").Status.Content)
	boost := statusRow(t, db, acc, "9")
	assert.Equal(t, "<p>fixed typo</p>", boost.Status.Content)
	assert.Equal(t, "7", boost.Status.ReblogServerID)

	require.NoError(t, u.Handle(context.Background(), events.StatusEdited{LocalAccountID: acc, Status: wireStatus("55", "z")}))
	assert.Equal(t, []string{"9", "7"}, cachedIDs(t, db, acc))
}

func TestCacheUpdater_RelationshipEventsRemoveAuthor(t *testing.T) {
	u, db := newUpdater(t)
	seed(t, db, acc,
		wireStatus("10", "a"),
		wireStatus("11", "b"),
		wireReblog("12", "3", "c", "a"),
		wireStatus("13", "d"),
		wireStatus("14", "e"),
	)
	seed(t, db, 2, wireStatus("10", "a"))

	ctx := context.Background()
	require.NoError(t, u.Handle(ctx, events.Unfollowed{LocalAccountID: acc, TargetAccountID: "a"}))
	assert.Equal(t, []string{"14", "13", "11"}, cachedIDs(t, db, acc))

	require.NoError(t, u.Handle(ctx, events.Blocked{LocalAccountID: acc, TargetAccountID: "b"}))
	require.NoError(t, u.Handle(ctx, events.Muted{LocalAccountID: acc, TargetAccountID: "d"}))
	assert.Equal(t, []string{"14"}, cachedIDs(t, db, acc))

	assert.Equal(t, []string{"10"}, cachedIDs(t, db, 2))
}

func TestCacheUpdater_SubscribedToBus(t *testing.T) {
	u, db := newUpdater(t)
	seed(t, db, acc, wireStatus("7", "a"))

	bus := events.NewBus(logging.Nop(), 8)
	defer bus.Close()

	id, err := u.Subscribe(context.Background(), bus)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), events.Bookmarked{LocalAccountID: acc, StatusID: "7", Value: true}))
	bus.Unsubscribe(id)

	assert.True(t, statusRow(t, db, acc, "7").Status.Bookmarked)
}
