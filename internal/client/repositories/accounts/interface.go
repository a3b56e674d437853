// Package accounts persists the identities logged in on this device.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
)

type Repository interface {
	// Create stores a new account and fills a.ID. A second account with the
	// same domain and username yields common.ErrorAlreadyExists.
	Create(ctx context.Context, a *models.LocalAccount) error

	// Get returns common.ErrorNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*models.LocalAccount, error)

	// List returns all accounts ordered by id.
	List(ctx context.Context) ([]models.LocalAccount, error)

	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id int64) error
}
