package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/common"
)

// Input seams; tests swap them to avoid the terminal.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var errUsage = errors.New("usage")

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

func parseAccountID(args []string, cmd string) (int64, error) {
	if len(args) != 1 {
		return 0, usage(cmd + " <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usage(cmd + " <id>")
	}
	return id, nil
}

func (a *App) findAccount(ctx context.Context, id int64) (*models.LocalAccount, error) {
	list, err := a.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("account %d: %w", id, common.ErrorNotFound)
}

func (a *App) Accounts(ctx context.Context) error {
	list, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No accounts. Use add to log in.")
		return nil
	}

	cur := a.account()
	for _, acc := range list {
		mark := " "
		if cur != nil && cur.ID == acc.ID {
			mark = "*"
		}
		state := "locked"
		if a.accounts.Unlocked(acc.ID) {
			state = "unlocked"
		}
		fmt.Fprintf(a.out, "%s %d  %s  %s\n", mark, acc.ID, acc.FullName(), state)
	}
	return nil
}

func (a *App) AddAccount(ctx context.Context) error {
	instance, err := getSimpleText(a.reader, "Instance (e.g. mastodon.social)", a.out)
	if err != nil {
		return err
	}
	token, err := getPassword(a.out, "Access token")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(token)

	pass, err := getPassword(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	acc, err := a.accounts.Add(ctx, instance, token, pass)
	if err != nil {
		return err
	}
	a.setAccount(acc)
	a.setMode(ModeOnline)
	fmt.Fprintf(a.out, "Logged in as %s (id %d)\n", acc.FullName(), acc.ID)
	return nil
}

func (a *App) UnlockAccount(ctx context.Context, args []string) error {
	id, err := parseAccountID(args, "unlock")
	if err != nil {
		return err
	}
	acc, err := a.findAccount(ctx, id)
	if err != nil {
		return err
	}

	pass, err := getPassword(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	if err := a.accounts.Unlock(ctx, id, pass); err != nil {
		if errors.Is(err, common.ErrInvalidPassphrase) {
			fmt.Fprintln(a.out, "Wrong passphrase")
		}
		return err
	}
	a.setAccount(acc)
	fmt.Fprintf(a.out, "Using %s\n", acc.FullName())
	return nil
}

func (a *App) UseAccount(ctx context.Context, args []string) error {
	id, err := parseAccountID(args, "use")
	if err != nil {
		return err
	}
	if !a.accounts.Unlocked(id) {
		return fmt.Errorf("account %d is locked, unlock it first", id)
	}
	acc, err := a.findAccount(ctx, id)
	if err != nil {
		return err
	}
	a.setAccount(acc)
	fmt.Fprintf(a.out, "Using %s\n", acc.FullName())
	return nil
}

func (a *App) LockAccount(ctx context.Context) error {
	acc := a.account()
	if acc == nil {
		return nil
	}
	a.accounts.Lock(acc.ID)
	a.lists.Forget(acc.ID)
	a.setAccount(nil)
	a.setMode(ModeDisabled)
	fmt.Fprintf(a.out, "Locked %s\n", acc.FullName())
	return nil
}

func (a *App) RemoveAccount(ctx context.Context, args []string) error {
	id, err := parseAccountID(args, "remove")
	if err != nil {
		return err
	}
	if err := a.accounts.Remove(ctx, id); err != nil {
		return err
	}
	a.lists.Forget(id)
	if cur := a.account(); cur != nil && cur.ID == id {
		a.setAccount(nil)
		a.setMode(ModeDisabled)
	}
	fmt.Fprintf(a.out, "Removed account %d\n", id)
	return nil
}
