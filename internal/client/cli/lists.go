package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/paging"
)

func loadType(args []string, cmd string) (paging.LoadType, error) {
	switch {
	case len(args) == 0:
		return paging.Refresh, nil
	case len(args) == 1 && args[0] == "more":
		return paging.Append, nil
	}
	return 0, usage(cmd + " [more]")
}

// showPage loads one page of a tracked list and prints it with render.
func showPage[T any](ctx context.Context, a *App, args []string, cmd string, tracker func(int64) (*paging.Tracker[T], error), render func(io.Writer, T)) error {
	lt, err := loadType(args, cmd)
	if err != nil {
		return err
	}
	tr, err := tracker(a.account().ID)
	if err != nil {
		return err
	}

	items, err := tr.Load(ctx, lt)
	if errors.Is(err, paging.ErrNoMoreData) {
		fmt.Fprintln(a.out, "No more data")
		return nil
	}
	if err != nil {
		a.noteFailure(err)
		return err
	}

	for _, it := range items {
		render(a.out, it)
	}
	if tr.State() == paging.EndReached {
		fmt.Fprintf(a.out, "(%d total, end of list)\n", len(tr.Items()))
	} else {
		fmt.Fprintf(a.out, "(%d total, %s more for the next page)\n", len(tr.Items()), cmd)
	}
	return nil
}

func (a *App) DomainBlocks(ctx context.Context, args []string) error {
	return showPage(ctx, a, args, "blocks", a.lists.DomainBlocks, func(w io.Writer, d string) {
		fmt.Fprintln(w, d)
	})
}

func (a *App) FollowedTags(ctx context.Context, args []string) error {
	return showPage(ctx, a, args, "tags", a.lists.FollowedTags, func(w io.Writer, t models.Tag) {
		fmt.Fprintf(w, "#%s\n", t.Name)
	})
}

func (a *App) Requests(ctx context.Context, args []string) error {
	return showPage(ctx, a, args, "requests", a.lists.NotificationRequests, func(w io.Writer, r models.NotificationRequest) {
		fmt.Fprintf(w, "[%s] @%s  %s notifications\n", r.ID, r.Account.Acct, r.NotificationsCount)
	})
}
