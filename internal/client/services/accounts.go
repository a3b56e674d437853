package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/dmitrijs2005/tootcache/internal/cryptox"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
	"github.com/dmitrijs2005/tootcache/internal/logging"
)

// ClientFactory builds an API client for an instance and access token.
type ClientFactory func(instance, token string) (client.Client, error)

// AccountService manages the local accounts: adding one with an access
// token, unlocking it with the passphrase that seals the token, and
// removing it together with everything cached for it.
type AccountService struct {
	db        *sql.DB
	clients   *client.Registry
	newClient ClientFactory
	log       logging.Logger

	onUnlock func(a *models.LocalAccount, token string)
	onLock   func(id int64)
}

type AccountOption func(*AccountService)

// WithUnlockHook is called with the plain token each time an account is
// added or unlocked, e.g. to open its streaming connection.
func WithUnlockHook(fn func(a *models.LocalAccount, token string)) AccountOption {
	return func(s *AccountService) { s.onUnlock = fn }
}

// WithLockHook is called when an account is locked or removed.
func WithLockHook(fn func(id int64)) AccountOption {
	return func(s *AccountService) { s.onLock = fn }
}

func NewAccountService(db *sql.DB, clients *client.Registry, newClient ClientFactory, log logging.Logger, opts ...AccountOption) *AccountService {
	s := &AccountService{db: db, clients: clients, newClient: newClient, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add verifies token against the instance, stores the account with the token
// sealed under passphrase, and leaves it unlocked.
func (s *AccountService) Add(ctx context.Context, instance string, token, passphrase []byte) (*models.LocalAccount, error) {
	base, err := client.InstanceURL(instance)
	if err != nil {
		return nil, err
	}

	host := strings.ToLower(base.Host)

	c, err := s.newClient(host, string(token))
	if err != nil {
		return nil, err
	}
	me, err := c.VerifyCredentials(ctx)
	if err != nil {
		return nil, fetchFailure(ctx, "verify credentials", err)
	}

	sealed, err := cryptox.Seal(token, passphrase)
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}

	a := &models.LocalAccount{
		Domain:          host,
		Username:        me.Username,
		AccountServerID: me.ID,
		DisplayName:     me.DisplayName,
		SealedToken:     sealed.Ciphertext,
		TokenNonce:      sealed.Nonce,
		TokenSalt:       sealed.Salt,
	}
	if err := accounts.NewSQLiteRepository(s.db).Create(ctx, a); err != nil {
		return nil, err
	}

	s.clients.Register(a.ID, c)
	if s.onUnlock != nil {
		s.onUnlock(a, string(token))
	}
	s.log.Info(ctx, "account added", "account", a.ID, "name", a.FullName())
	return a, nil
}

// Unlock opens the sealed token and registers a client for the account.
// A wrong passphrase yields common.ErrInvalidPassphrase.
func (s *AccountService) Unlock(ctx context.Context, id int64, passphrase []byte) error {
	a, err := accounts.NewSQLiteRepository(s.db).Get(ctx, id)
	if err != nil {
		return err
	}

	token, err := cryptox.Open(&cryptox.Sealed{
		Ciphertext: a.SealedToken,
		Nonce:      a.TokenNonce,
		Salt:       a.TokenSalt,
	}, passphrase)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(token)

	c, err := s.newClient(a.Domain, string(token))
	if err != nil {
		return err
	}
	s.clients.Register(a.ID, c)
	if s.onUnlock != nil {
		s.onUnlock(a, string(token))
	}
	s.log.Info(ctx, "account unlocked", "account", a.ID)
	return nil
}

func (s *AccountService) Lock(id int64) {
	s.clients.Remove(id)
	if s.onLock != nil {
		s.onLock(id)
	}
}

// Ping checks that the account's instance is reachable.
func (s *AccountService) Ping(ctx context.Context, id int64) error {
	c, err := s.clients.Get(id)
	if err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return fetchFailure(ctx, "ping", err)
	}
	return nil
}

// Remove deletes the account, its cached timeline and its metadata in one
// transaction.
func (s *AccountService) Remove(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := timeline.NewSQLiteRepository(tx).ClearAccount(ctx, id); err != nil {
			return err
		}
		if err := metadata.NewSQLiteRepository(tx).Clear(ctx, id); err != nil {
			return err
		}
		return accounts.NewSQLiteRepository(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Lock(id)
	s.log.Info(ctx, "account removed", "account", id)
	return nil
}

func (s *AccountService) List(ctx context.Context) ([]models.LocalAccount, error) {
	return accounts.NewSQLiteRepository(s.db).List(ctx)
}

// Unlocked reports whether a client is registered for the account.
func (s *AccountService) Unlocked(id int64) bool {
	_, err := s.clients.Get(id)
	return err == nil
}
