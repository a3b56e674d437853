// Package client contains the remote side of tootcache.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the subset of the Mastodon REST API that the
//     cache layer needs (home timeline pages, paged lists, status and account
//     actions).
//  2. HTTPClient, a net/http implementation with bearer-token auth, a
//     per-client rate limiter and Link header cursor parsing.
//  3. Registry, which maps unlocked local accounts to their clients.
//  4. InitDatabase and RunMigrations, which open the local SQLite cache and
//     apply the embedded goose migrations.
//
// # Error Handling
//
// Failures are mapped onto sentinel errors that callers match with errors.Is:
// ErrUnauthorized (401/403), ErrUnavailable (transport errors, timeouts, 429
// and 5xx), ErrMalformedResponse (undecodable bodies). Other non-2xx answers
// are returned as *HTTPError. Caller cancellation is returned unchanged.
//
// Concurrency & Contexts
//
// HTTPClient and Registry are safe for concurrent use. All operations accept
// context.Context and honor cancellation and deadlines.
package client
