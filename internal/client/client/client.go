package client

import (
	"context"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/dmitrijs2005/tootcache/internal/client/client Client

// Client is the part of the Mastodon REST API the cache layer consumes.
// Paged calls return cursors parsed from the Link header.
type Client interface {
	Ping(ctx context.Context) error
	VerifyCredentials(ctx context.Context) (*models.Account, error)

	HomeTimeline(ctx context.Context, q models.PageQuery) (*models.Page[models.Status], error)
	DomainBlocks(ctx context.Context, maxID string) (*models.Page[string], error)
	FollowedTags(ctx context.Context, maxID string) (*models.Page[models.Tag], error)
	NotificationRequests(ctx context.Context, maxID string) (*models.Page[models.NotificationRequest], error)

	Favourite(ctx context.Context, statusID string, value bool) (*models.Status, error)
	Reblog(ctx context.Context, statusID string, value bool) (*models.Status, error)
	Bookmark(ctx context.Context, statusID string, value bool) (*models.Status, error)
	Vote(ctx context.Context, pollID string, choices []int) (*models.Poll, error)
	DeleteStatus(ctx context.Context, statusID string) error

	Unfollow(ctx context.Context, accountID string) error
	Block(ctx context.Context, accountID string) error
	Mute(ctx context.Context, accountID string) error
}
