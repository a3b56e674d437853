package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/paging"
)

type listKey struct {
	account int64
	list    string
}

// ListService keeps one paging tracker per account and list, so a caller
// can resume "load more" where it stopped.
type ListService struct {
	clients *client.Registry

	mu       sync.Mutex
	trackers map[listKey]any
}

func NewListService(clients *client.Registry) *ListService {
	return &ListService{clients: clients, trackers: map[listKey]any{}}
}

func (s *ListService) DomainBlocks(localAccountID int64) (*paging.Tracker[string], error) {
	return trackerFor[string](s, localAccountID, "domain_blocks", client.Client.DomainBlocks)
}

func (s *ListService) FollowedTags(localAccountID int64) (*paging.Tracker[models.Tag], error) {
	return trackerFor[models.Tag](s, localAccountID, "followed_tags", client.Client.FollowedTags)
}

func (s *ListService) NotificationRequests(localAccountID int64) (*paging.Tracker[models.NotificationRequest], error) {
	return trackerFor[models.NotificationRequest](s, localAccountID, "notification_requests", client.Client.NotificationRequests)
}

// Forget drops the trackers of an account, e.g. after it is locked.
func (s *ListService) Forget(localAccountID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.trackers {
		if k.account == localAccountID {
			delete(s.trackers, k)
		}
	}
}

type listCall[T any] func(c client.Client, ctx context.Context, maxID string) (*models.Page[T], error)

func trackerFor[T any](s *ListService, localAccountID int64, list string, call listCall[T]) (*paging.Tracker[T], error) {
	c, err := s.clients.Get(localAccountID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := listKey{account: localAccountID, list: list}
	if t, ok := s.trackers[key].(*paging.Tracker[T]); ok {
		return t, nil
	}

	t := paging.NewTracker(func(ctx context.Context, maxID string) (*models.Page[T], error) {
		page, err := call(c, ctx, maxID)
		if err != nil {
			return nil, fetchFailure(ctx, list, err)
		}
		return page, nil
	})
	s.trackers[key] = t
	return t, nil
}
