package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/services"
)

// noBound is typed for an unset window bound.
const noBound = "-"

func bound(args []string, i int) string {
	if i >= len(args) || args[i] == noBound {
		return ""
	}
	return args[i]
}

func (a *App) Timeline(ctx context.Context, args []string) error {
	if len(args) > 3 {
		return usage("tl [max|-] [since|-] [limit]")
	}
	q := models.PageQuery{MaxID: bound(args, 0), SinceID: bound(args, 1)}
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return usage("tl [max|-] [since|-] [limit]")
		}
		q.Limit = n
	}
	return a.showWindow(ctx, func(ctx context.Context, id int64) (*services.Window, error) {
		return a.timelines.LoadWindow(ctx, id, q)
	})
}

func (a *App) Older(ctx context.Context) error {
	a.mu.Lock()
	oldest := a.oldest
	a.mu.Unlock()
	if oldest == "" {
		fmt.Fprintln(a.out, "Nothing to page from, load a window with tl first")
		return nil
	}
	return a.showWindow(ctx, func(ctx context.Context, id int64) (*services.Window, error) {
		return a.timelines.LoadWindow(ctx, id, models.PageQuery{MaxID: oldest})
	})
}

func (a *App) Refresh(ctx context.Context) error {
	return a.showWindow(ctx, a.timelines.Refresh)
}

func (a *App) Gap(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("gap <placeholder>")
	}
	return a.showWindow(ctx, func(ctx context.Context, id int64) (*services.Window, error) {
		return a.timelines.LoadGap(ctx, id, args[0])
	})
}

func (a *App) showWindow(ctx context.Context, load func(ctx context.Context, id int64) (*services.Window, error)) error {
	acc := a.account()
	w, err := load(ctx, acc.ID)
	if err != nil {
		a.noteFailure(err)
		return err
	}
	if !w.FromCache {
		a.setMode(ModeOnline)
	}
	renderWindow(a.out, w)

	if n := len(w.Rows); n > 0 {
		a.mu.Lock()
		a.oldest = w.Rows[n-1].RowID()
		a.mu.Unlock()
	}
	return nil
}

// noteFailure switches to offline mode when the instance could not be reached.
func (a *App) noteFailure(err error) {
	var fe *services.FetchError
	if errors.As(err, &fe) && fe.Retryable() {
		a.setMode(ModeOffline)
	}
}

func renderWindow(w io.Writer, win *services.Window) {
	if len(win.Rows) == 0 {
		fmt.Fprintln(w, "Timeline is empty")
		return
	}
	for _, row := range win.Rows {
		switch r := row.(type) {
		case *models.StatusRow:
			renderStatus(w, r)
		case models.Placeholder:
			fmt.Fprintf(w, "~~~ gap below %s ~~~ (gap %s to load)\n", r.ServerID, r.ServerID)
		}
	}
	if win.FromCache {
		fmt.Fprintln(w, "(from cache)")
	}
}

func renderStatus(w io.Writer, r *models.StatusRow) {
	d, err := r.Decode()
	if err != nil {
		fmt.Fprintf(w, "[%s] unreadable: %v\n", r.RowID(), err)
		return
	}

	head := fmt.Sprintf("[%s] @%s", d.ID, d.Author.Acct)
	if d.RebloggedBy != nil {
		head += fmt.Sprintf(" (boosted by @%s)", d.RebloggedBy.Acct)
	}
	head += " " + d.CreatedAt.Local().Format("2006-01-02 15:04")
	if d.EditedAt != nil {
		head += " (edited)"
	}
	fmt.Fprintln(w, head)

	if d.SpoilerText != "" {
		fmt.Fprintf(w, "  CW: %s\n", d.SpoilerText)
	} else {
		for _, line := range strings.Split(d.Text, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	for _, at := range d.Attachments {
		fmt.Fprintf(w, "  [%s] %s\n", at.Type, at.URL)
	}
	if d.Poll != nil {
		for i, o := range d.Poll.Options {
			fmt.Fprintf(w, "  (%d) %s\n", i, o.Title)
		}
	}

	var flags []string
	if d.Favourited {
		flags = append(flags, "faved")
	}
	if d.Reblogged {
		flags = append(flags, "boosted")
	}
	if d.Bookmarked {
		flags = append(flags, "bookmarked")
	}
	fmt.Fprintf(w, "  ↩ %d  ⟳ %d  ★ %d  %s\n", d.RepliesCount, d.ReblogsCount, d.FavouritesCount, strings.Join(flags, " "))
}

func (a *App) statusAction(ctx context.Context, args []string, cmd string, fn func(ctx context.Context, localID int64, id string) error) error {
	if len(args) != 1 {
		return usage(cmd + " <id>")
	}
	if err := fn(ctx, a.account().ID, args[0]); err != nil {
		a.noteFailure(err)
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) Favourite(ctx context.Context, args []string, value bool) error {
	return a.statusAction(ctx, args, "fav", func(ctx context.Context, localID int64, id string) error {
		return a.timelines.Favourite(ctx, localID, id, value)
	})
}

func (a *App) Reblog(ctx context.Context, args []string, value bool) error {
	return a.statusAction(ctx, args, "boost", func(ctx context.Context, localID int64, id string) error {
		return a.timelines.Reblog(ctx, localID, id, value)
	})
}

func (a *App) Bookmark(ctx context.Context, args []string, value bool) error {
	return a.statusAction(ctx, args, "bookmark", func(ctx context.Context, localID int64, id string) error {
		return a.timelines.Bookmark(ctx, localID, id, value)
	})
}

func (a *App) Delete(ctx context.Context, args []string) error {
	return a.statusAction(ctx, args, "delete", a.timelines.Delete)
}

func (a *App) Unfollow(ctx context.Context, args []string) error {
	return a.statusAction(ctx, args, "unfollow", a.timelines.Unfollow)
}

func (a *App) Block(ctx context.Context, args []string) error {
	return a.statusAction(ctx, args, "block", a.timelines.Block)
}

func (a *App) Mute(ctx context.Context, args []string) error {
	return a.statusAction(ctx, args, "mute", a.timelines.Mute)
}

func (a *App) Vote(ctx context.Context, args []string) error {
	const u = "vote <status> <poll> <choice>..."
	if len(args) < 3 {
		return usage(u)
	}
	choices := make([]int, 0, len(args)-2)
	for _, s := range args[2:] {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return usage(u)
		}
		choices = append(choices, n)
	}
	if err := a.timelines.VotePoll(ctx, a.account().ID, args[0], args[1], choices); err != nil {
		a.noteFailure(err)
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func (a *App) Prune(ctx context.Context) error {
	res, err := a.cleaner.PruneAll(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(res))
	for id := range res {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		r := res[id]
		fmt.Fprintf(a.out, "account %d: %d statuses, %d gaps, %d authors removed\n", id, r.Statuses, r.Placeholders, r.Accounts)
	}
	return nil
}
