package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hasAccount() bool

	Accounts(ctx context.Context) error
	AddAccount(ctx context.Context) error
	UnlockAccount(ctx context.Context, args []string) error
	LockAccount(ctx context.Context) error
	UseAccount(ctx context.Context, args []string) error
	RemoveAccount(ctx context.Context, args []string) error

	Timeline(ctx context.Context, args []string) error
	Older(ctx context.Context) error
	Refresh(ctx context.Context) error
	Gap(ctx context.Context, args []string) error

	Favourite(ctx context.Context, args []string, value bool) error
	Reblog(ctx context.Context, args []string, value bool) error
	Bookmark(ctx context.Context, args []string, value bool) error
	Vote(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Unfollow(ctx context.Context, args []string) error
	Block(ctx context.Context, args []string) error
	Mute(ctx context.Context, args []string) error

	Prune(ctx context.Context) error
	DomainBlocks(ctx context.Context, args []string) error
	FollowedTags(ctx context.Context, args []string) error
	Requests(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the tootcache CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches the remaining tokens to methods on 'a'. Unknown
// commands are reported back to the user. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Without a selected account only the account commands are offered:
//
//	accounts                 list local accounts
//	add                      log in with an access token
//	unlock <id>              unlock a stored account and select it
//	use <id>                 select an already unlocked account
//	remove <id>              forget an account and its cache
//
// With an account selected the timeline commands become available:
//
//	tl [max] [since] [limit] load a home timeline window
//	older                    the window below the last one shown
//	refresh                  fetch the newest page
//	gap <placeholder>        fill a gap marker
//	fav|unfav <id>, boost|unboost <id>, bookmark|unbookmark <id>
//	vote <status> <poll> <choice>...
//	delete <id>, unfollow|block|mute <account>
//	blocks [more], tags [more], requests [more]
//	prune, lock
//
// Errors returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("toot> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.hasAccount() {
			printlnFn("Available commands: tl, older, refresh, gap, fav, unfav, boost, unboost, bookmark, unbookmark, vote, delete, unfollow, block, mute, blocks, tags, requests, prune, accounts, add, unlock, use, lock, remove, exit")
		} else {
			printlnFn("Available commands: accounts, add, unlock, use, remove, exit")
		}
		return nil

	case "accounts":
		return a.Accounts(ctx)
	case "add":
		return a.AddAccount(ctx)
	case "unlock":
		return a.UnlockAccount(ctx, args)
	case "use":
		return a.UseAccount(ctx, args)
	case "remove":
		return a.RemoveAccount(ctx, args)
	}

	fn, ok := timelineCommands[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.hasAccount() {
		printlnFn("Select an account first: unlock <id> or add")
		return nil
	}
	return fn(ctx, a, args)
}

type command func(ctx context.Context, a execIface, args []string) error

var timelineCommands = map[string]command{
	"lock":       func(ctx context.Context, a execIface, _ []string) error { return a.LockAccount(ctx) },
	"tl":         func(ctx context.Context, a execIface, args []string) error { return a.Timeline(ctx, args) },
	"older":      func(ctx context.Context, a execIface, _ []string) error { return a.Older(ctx) },
	"refresh":    func(ctx context.Context, a execIface, _ []string) error { return a.Refresh(ctx) },
	"gap":        func(ctx context.Context, a execIface, args []string) error { return a.Gap(ctx, args) },
	"fav":        func(ctx context.Context, a execIface, args []string) error { return a.Favourite(ctx, args, true) },
	"unfav":      func(ctx context.Context, a execIface, args []string) error { return a.Favourite(ctx, args, false) },
	"boost":      func(ctx context.Context, a execIface, args []string) error { return a.Reblog(ctx, args, true) },
	"unboost":    func(ctx context.Context, a execIface, args []string) error { return a.Reblog(ctx, args, false) },
	"bookmark":   func(ctx context.Context, a execIface, args []string) error { return a.Bookmark(ctx, args, true) },
	"unbookmark": func(ctx context.Context, a execIface, args []string) error { return a.Bookmark(ctx, args, false) },
	"vote":       func(ctx context.Context, a execIface, args []string) error { return a.Vote(ctx, args) },
	"delete":     func(ctx context.Context, a execIface, args []string) error { return a.Delete(ctx, args) },
	"unfollow":   func(ctx context.Context, a execIface, args []string) error { return a.Unfollow(ctx, args) },
	"block":      func(ctx context.Context, a execIface, args []string) error { return a.Block(ctx, args) },
	"mute":       func(ctx context.Context, a execIface, args []string) error { return a.Mute(ctx, args) },
	"prune":      func(ctx context.Context, a execIface, _ []string) error { return a.Prune(ctx) },
	"blocks":     func(ctx context.Context, a execIface, args []string) error { return a.DomainBlocks(ctx, args) },
	"tags":       func(ctx context.Context, a execIface, args []string) error { return a.FollowedTags(ctx, args) },
	"requests":   func(ctx context.Context, a execIface, args []string) error { return a.Requests(ctx, args) },
}
