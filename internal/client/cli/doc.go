// Package cli provides the interactive tootcache command-line client.
//
// It drives the timeline synchronizer and the account services from a small
// REPL. Typical flow: add or unlock an account, load home timeline windows,
// page older, fill gaps, and act on statuses. A background watcher pings
// the selected account's instance and shows online/offline in the prompt.
//
// Key features:
//   - Accounts: add, unlock, lock, use, remove
//   - Timeline windows served from the local cache when it is trustworthy
//   - Gap markers that can be loaded on demand
//   - Status and author actions (favourite, boost, bookmark, vote, delete,
//     unfollow, block, mute) reflected in the cache through events
//   - Paged lists: domain blocks, followed tags, notification requests
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
