package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/config"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/paging"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/client/services"
	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeTimelines struct {
	window *services.Window
	err    error

	queries []models.PageQuery
	gaps    []string
	actions []string
	votes   [][]int
}

func (f *fakeTimelines) LoadWindow(ctx context.Context, id int64, q models.PageQuery) (*services.Window, error) {
	f.queries = append(f.queries, q)
	return f.window, f.err
}
func (f *fakeTimelines) Refresh(ctx context.Context, id int64) (*services.Window, error) {
	f.actions = append(f.actions, "refresh")
	return f.window, f.err
}
func (f *fakeTimelines) LoadGap(ctx context.Context, id int64, ph string) (*services.Window, error) {
	f.gaps = append(f.gaps, ph)
	return f.window, f.err
}
func (f *fakeTimelines) act(name string) error {
	f.actions = append(f.actions, name)
	return f.err
}
func (f *fakeTimelines) Favourite(ctx context.Context, id int64, s string, v bool) error {
	return f.act("fav " + s)
}
func (f *fakeTimelines) Reblog(ctx context.Context, id int64, s string, v bool) error {
	return f.act("boost " + s)
}
func (f *fakeTimelines) Bookmark(ctx context.Context, id int64, s string, v bool) error {
	return f.act("bookmark " + s)
}
func (f *fakeTimelines) VotePoll(ctx context.Context, id int64, s, poll string, choices []int) error {
	f.votes = append(f.votes, choices)
	return f.act("vote " + s + " " + poll)
}
func (f *fakeTimelines) Delete(ctx context.Context, id int64, s string) error {
	return f.act("delete " + s)
}
func (f *fakeTimelines) Unfollow(ctx context.Context, id int64, acc string) error {
	return f.act("unfollow " + acc)
}
func (f *fakeTimelines) Block(ctx context.Context, id int64, acc string) error {
	return f.act("block " + acc)
}
func (f *fakeTimelines) Mute(ctx context.Context, id int64, acc string) error {
	return f.act("mute " + acc)
}

type fakeAccounts struct {
	list     []models.LocalAccount
	unlocked map[int64]bool
	pingErr  error
	err      error

	added   []string
	removed []int64
}

func (f *fakeAccounts) Add(ctx context.Context, instance string, token, pass []byte) (*models.LocalAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, instance+" "+string(token)+" "+string(pass))
	acc := models.LocalAccount{ID: int64(len(f.list) + 1), Domain: instance, Username: "me"}
	f.list = append(f.list, acc)
	f.unlocked[acc.ID] = true
	return &acc, nil
}
func (f *fakeAccounts) Unlock(ctx context.Context, id int64, pass []byte) error {
	if f.err != nil {
		return f.err
	}
	f.unlocked[id] = true
	return nil
}
func (f *fakeAccounts) Lock(id int64)                             { delete(f.unlocked, id) }
func (f *fakeAccounts) Ping(ctx context.Context, id int64) error  { return f.pingErr }
func (f *fakeAccounts) Unlocked(id int64) bool                    { return f.unlocked[id] }
func (f *fakeAccounts) List(ctx context.Context) ([]models.LocalAccount, error) {
	return f.list, nil
}
func (f *fakeAccounts) Remove(ctx context.Context, id int64) error {
	f.removed = append(f.removed, id)
	delete(f.unlocked, id)
	return f.err
}

type fakeCleaner struct {
	res map[int64]timeline.PruneResult
}

func (f *fakeCleaner) PruneAll(ctx context.Context) (map[int64]timeline.PruneResult, error) {
	return f.res, nil
}

type fakeLists struct {
	blocks    *paging.Tracker[string]
	forgotten []int64
}

func (f *fakeLists) DomainBlocks(id int64) (*paging.Tracker[string], error) { return f.blocks, nil }
func (f *fakeLists) FollowedTags(id int64) (*paging.Tracker[models.Tag], error) {
	return paging.NewTracker(func(ctx context.Context, maxID string) (*models.Page[models.Tag], error) {
		return &models.Page[models.Tag]{Items: []models.Tag{{Name: "golang"}}}, nil
	}), nil
}
func (f *fakeLists) NotificationRequests(id int64) (*paging.Tracker[models.NotificationRequest], error) {
	return nil, client.ErrAccountLocked
}
func (f *fakeLists) Forget(id int64) { f.forgotten = append(f.forgotten, id) }

type harness struct {
	app *App
	tl  *fakeTimelines
	acc *fakeAccounts
	ls  *fakeLists
	out *bytes.Buffer
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	h := &harness{
		tl: &fakeTimelines{window: &services.Window{}},
		acc: &fakeAccounts{
			list:     []models.LocalAccount{{ID: 1, Domain: "example.social", Username: "alice"}},
			unlocked: map[int64]bool{},
		},
		ls:  &fakeLists{},
		out: &bytes.Buffer{},
	}
	h.app = NewApp(&config.Config{OnlineCheckInterval: time.Millisecond}, Deps{
		Timelines: h.tl,
		Accounts:  h.acc,
		Cleaner: &fakeCleaner{res: map[int64]timeline.PruneResult{
			2: {Statuses: 1},
			1: {Statuses: 5, Placeholders: 1, Accounts: 2},
		}},
		Lists: h.ls,
	})
	h.app.reader = bufio.NewReader(strings.NewReader(input))
	h.app.out = h.out
	return h
}

// selected unlocks account 1 and selects it.
func (h *harness) selected() *harness {
	h.acc.unlocked[1] = true
	h.app.setAccount(&h.acc.list[0])
	return h
}

func stubPassword(t *testing.T, values ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(values) {
			return nil, errors.New("no more input")
		}
		v := values[i]
		i++
		return []byte(v), nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func row(id, acct, content string) *models.StatusRow {
	return &models.StatusRow{
		Status: models.StatusRecord{
			ServerID:  id,
			Content:   "<p>" + content + "</p>",
			CreatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		},
		Account: models.AccountRecord{ServerID: "a" + id, Acct: acct},
	}
}

func TestSetMode_ChangesAndStatus(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, ModeDisabled, h.app.Mode)
	require.Equal(t, "no account", h.app.status())

	h.selected()
	h.app.setMode(ModeOnline)
	require.Equal(t, ModeOnline, h.app.mode())
	require.Equal(t, "@alice@example.social online", h.app.status())
}

func TestAddAccount_SelectsNewAccount(t *testing.T) {
	h := newHarness(t, "mastodon.example\n")
	stubPassword(t, "tok", "pass")

	require.NoError(t, h.app.AddAccount(context.Background()))

	require.Equal(t, []string{"mastodon.example tok pass"}, h.acc.added)
	require.True(t, h.app.hasAccount())
	require.Equal(t, int64(2), h.app.account().ID)
	require.Equal(t, ModeOnline, h.app.mode())
	require.Contains(t, h.out.String(), "Logged in as @me@mastodon.example")
}

func TestUnlockAccount(t *testing.T) {
	h := newHarness(t, "")
	stubPassword(t, "pass")

	require.NoError(t, h.app.UnlockAccount(context.Background(), []string{"1"}))
	require.Equal(t, int64(1), h.app.account().ID)
	require.Contains(t, h.out.String(), "Using @alice@example.social")
}

func TestUnlockAccount_Errors(t *testing.T) {
	h := newHarness(t, "")

	err := h.app.UnlockAccount(context.Background(), nil)
	require.ErrorIs(t, err, errUsage)

	err = h.app.UnlockAccount(context.Background(), []string{"abc"})
	require.ErrorIs(t, err, errUsage)

	err = h.app.UnlockAccount(context.Background(), []string{"9"})
	require.ErrorIs(t, err, common.ErrorNotFound)

	stubPassword(t, "wrong")
	h.acc.err = common.ErrInvalidPassphrase
	err = h.app.UnlockAccount(context.Background(), []string{"1"})
	require.ErrorIs(t, err, common.ErrInvalidPassphrase)
	require.Contains(t, h.out.String(), "Wrong passphrase")
	require.False(t, h.app.hasAccount())
}

func TestUseAccount_RequiresUnlocked(t *testing.T) {
	h := newHarness(t, "")
	require.Error(t, h.app.UseAccount(context.Background(), []string{"1"}))
	require.False(t, h.app.hasAccount())

	h.acc.unlocked[1] = true
	require.NoError(t, h.app.UseAccount(context.Background(), []string{"1"}))
	require.True(t, h.app.hasAccount())
}

func TestAccounts_ListsWithMarkers(t *testing.T) {
	h := newHarness(t, "").selected()
	h.acc.list = append(h.acc.list, models.LocalAccount{ID: 2, Domain: "other.host", Username: "bob"})

	require.NoError(t, h.app.Accounts(context.Background()))
	out := h.out.String()
	require.Contains(t, out, "* 1  @alice@example.social  unlocked")
	require.Contains(t, out, "  2  @bob@other.host  locked")
}

func TestLockAndRemoveAccount(t *testing.T) {
	h := newHarness(t, "").selected()

	require.NoError(t, h.app.LockAccount(context.Background()))
	require.False(t, h.app.hasAccount())
	require.False(t, h.acc.Unlocked(1))
	require.Equal(t, []int64{1}, h.ls.forgotten)
	require.Equal(t, ModeDisabled, h.app.mode())

	h.selected()
	require.NoError(t, h.app.RemoveAccount(context.Background(), []string{"1"}))
	require.Equal(t, []int64{1}, h.acc.removed)
	require.False(t, h.app.hasAccount())
}

func TestTimeline_RendersRowsAndPagesOlder(t *testing.T) {
	h := newHarness(t, "").selected()
	boost := row("50", "bob", "boosted text")
	boost.ReblogAccount = &models.AccountRecord{Acct: "carol"}
	h.tl.window = &services.Window{
		Rows: []models.TimelineRow{
			row("60", "alice", "hello<br>world"),
			boost,
			models.Placeholder{ServerID: "39"},
		},
		Placeholder: "39",
	}

	require.NoError(t, h.app.Timeline(context.Background(), []string{"-", "10", "5"}))
	require.Equal(t, models.PageQuery{SinceID: "10", Limit: 5}, h.tl.queries[0])

	out := h.out.String()
	require.Contains(t, out, "[60] @alice")
	require.Contains(t, out, "  hello\n  world\n")
	require.Contains(t, out, "[50] @bob (boosted by @carol)")
	require.Contains(t, out, "gap below 39")
	require.NotContains(t, out, "(from cache)")
	require.Equal(t, ModeOnline, h.app.mode())

	require.NoError(t, h.app.Older(context.Background()))
	require.Equal(t, models.PageQuery{MaxID: "39"}, h.tl.queries[1])
}

func TestTimeline_FromCacheAndEmpty(t *testing.T) {
	h := newHarness(t, "").selected()
	h.tl.window = &services.Window{Rows: []models.TimelineRow{row("7", "a", "x")}, FromCache: true}
	require.NoError(t, h.app.Timeline(context.Background(), nil))
	require.Contains(t, h.out.String(), "(from cache)")
	require.Equal(t, ModeDisabled, h.app.mode())

	h.out.Reset()
	h.tl.window = &services.Window{}
	require.NoError(t, h.app.Refresh(context.Background()))
	require.Contains(t, h.out.String(), "Timeline is empty")
}

func TestTimeline_BadArgs(t *testing.T) {
	h := newHarness(t, "").selected()
	require.ErrorIs(t, h.app.Timeline(context.Background(), []string{"1", "2", "x"}), errUsage)
	require.ErrorIs(t, h.app.Timeline(context.Background(), []string{"1", "2", "3", "4"}), errUsage)
	require.ErrorIs(t, h.app.Gap(context.Background(), nil), errUsage)
	require.Empty(t, h.tl.queries)
}

func TestOlder_WithoutWindow(t *testing.T) {
	h := newHarness(t, "").selected()
	require.NoError(t, h.app.Older(context.Background()))
	require.Empty(t, h.tl.queries)
	require.Contains(t, h.out.String(), "load a window with tl first")
}

func TestTimeline_UnavailableGoesOffline(t *testing.T) {
	h := newHarness(t, "").selected()
	h.app.setMode(ModeOnline)
	h.tl.err = &services.FetchError{Op: "window", Err: client.ErrUnavailable}

	err := h.app.Timeline(context.Background(), nil)
	require.ErrorIs(t, err, client.ErrUnavailable)
	require.Equal(t, ModeOffline, h.app.mode())
}

func TestGap_PassesPlaceholder(t *testing.T) {
	h := newHarness(t, "").selected()
	require.NoError(t, h.app.Gap(context.Background(), []string{"39"}))
	require.Equal(t, []string{"39"}, h.tl.gaps)
}

func TestStatusActions(t *testing.T) {
	h := newHarness(t, "").selected()
	ctx := context.Background()

	require.NoError(t, h.app.Favourite(ctx, []string{"1"}, true))
	require.NoError(t, h.app.Reblog(ctx, []string{"2"}, false))
	require.NoError(t, h.app.Bookmark(ctx, []string{"3"}, true))
	require.NoError(t, h.app.Delete(ctx, []string{"4"}))
	require.NoError(t, h.app.Unfollow(ctx, []string{"u1"}))
	require.NoError(t, h.app.Block(ctx, []string{"u2"}))
	require.NoError(t, h.app.Mute(ctx, []string{"u3"}))
	require.NoError(t, h.app.Vote(ctx, []string{"5", "p1", "0", "2"}))

	require.Equal(t, []string{
		"fav 1", "boost 2", "bookmark 3", "delete 4", "unfollow u1", "block u2", "mute u3", "vote 5 p1",
	}, h.tl.actions)
	require.Equal(t, [][]int{{0, 2}}, h.tl.votes)

	require.ErrorIs(t, h.app.Favourite(ctx, nil, true), errUsage)
	require.ErrorIs(t, h.app.Vote(ctx, []string{"5", "p1"}), errUsage)
	require.ErrorIs(t, h.app.Vote(ctx, []string{"5", "p1", "-1"}), errUsage)
}

func TestPrune_PrintsSortedResults(t *testing.T) {
	h := newHarness(t, "").selected()
	require.NoError(t, h.app.Prune(context.Background()))
	require.Equal(t,
		"account 1: 5 statuses, 1 gaps, 2 authors removed\naccount 2: 1 statuses, 0 gaps, 0 authors removed\n",
		h.out.String())
}

func TestDomainBlocks_Pages(t *testing.T) {
	h := newHarness(t, "").selected()
	h.ls.blocks = paging.NewTracker(func(ctx context.Context, maxID string) (*models.Page[string], error) {
		if maxID == "" {
			return &models.Page[string]{Items: []string{"a.example", "b.example"}, NextMaxID: "2"}, nil
		}
		return &models.Page[string]{Items: []string{"c.example"}}, nil
	})
	ctx := context.Background()

	require.NoError(t, h.app.DomainBlocks(ctx, nil))
	require.Contains(t, h.out.String(), "a.example\nb.example\n(2 total, blocks more for the next page)")

	h.out.Reset()
	require.NoError(t, h.app.DomainBlocks(ctx, []string{"more"}))
	require.Contains(t, h.out.String(), "c.example\n(3 total, end of list)")

	h.out.Reset()
	require.NoError(t, h.app.DomainBlocks(ctx, []string{"more"}))
	require.Equal(t, "No more data\n", h.out.String())

	require.ErrorIs(t, h.app.DomainBlocks(ctx, []string{"again"}), errUsage)
}

func TestFollowedTagsAndRequests(t *testing.T) {
	h := newHarness(t, "").selected()
	require.NoError(t, h.app.FollowedTags(context.Background(), nil))
	require.Contains(t, h.out.String(), "#golang")

	require.ErrorIs(t, h.app.Requests(context.Background(), nil), client.ErrAccountLocked)
}

func TestCheckOnline(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	h.app.checkOnline(ctx)
	require.Equal(t, ModeDisabled, h.app.mode())

	h.selected()
	h.app.checkOnline(ctx)
	require.Equal(t, ModeOnline, h.app.mode())

	h.acc.pingErr = client.ErrUnavailable
	h.app.checkOnline(ctx)
	require.Equal(t, ModeOffline, h.app.mode())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	h := newHarness(t, "").selected()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.app.StartOnlineStatusWatcher(ctx, time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.app.mode() == ModeOnline }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
