package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/client/mocks"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type factoryCall struct {
	instance string
	token    string
}

type accountFixture struct {
	svc    *AccountService
	reg    *client.Registry
	client *mocks.MockClient
	calls  []factoryCall
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	db := setupDB(t)
	ctrl := gomock.NewController(t)
	f := &accountFixture{reg: client.NewRegistry(), client: mocks.NewMockClient(ctrl)}
	factory := func(instance, token string) (client.Client, error) {
		f.calls = append(f.calls, factoryCall{instance: instance, token: token})
		return f.client, nil
	}
	f.svc = NewAccountService(db, f.reg, factory, logging.Nop())
	return f
}

func TestAccountService_AddSealsTokenAndUnlocks(t *testing.T) {
	f := newAccountFixture(t)
	f.client.EXPECT().VerifyCredentials(gomock.Any()).
		Return(&models.Account{ID: "109", Username: "alice", DisplayName: "Alice"}, nil)

	a, err := f.svc.Add(context.Background(), "https://Mastodon.example/", []byte("tok-1"), []byte("pass"))
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, "mastodon.example", a.Domain)
	assert.Equal(t, "@alice@mastodon.example", a.FullName())
	assert.NotContains(t, string(a.SealedToken), "tok-1")
	assert.True(t, f.svc.Unlocked(a.ID))
	assert.Equal(t, []factoryCall{{instance: "mastodon.example", token: "tok-1"}}, f.calls)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "109", list[0].AccountServerID)
}

func TestAccountService_AddDuplicate(t *testing.T) {
	f := newAccountFixture(t)
	f.client.EXPECT().VerifyCredentials(gomock.Any()).
		Return(&models.Account{ID: "109", Username: "alice"}, nil).Times(2)

	_, err := f.svc.Add(context.Background(), "mastodon.example", []byte("tok"), []byte("pass"))
	require.NoError(t, err)
	_, err = f.svc.Add(context.Background(), "mastodon.example", []byte("tok"), []byte("pass"))
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestAccountService_AddRejectedToken(t *testing.T) {
	f := newAccountFixture(t)
	f.client.EXPECT().VerifyCredentials(gomock.Any()).Return(nil, client.ErrUnauthorized)

	_, err := f.svc.Add(context.Background(), "mastodon.example", []byte("bad"), []byte("pass"))
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAccountService_LockUnlock(t *testing.T) {
	f := newAccountFixture(t)
	f.client.EXPECT().VerifyCredentials(gomock.Any()).Return(&models.Account{ID: "1", Username: "bob"}, nil)

	a, err := f.svc.Add(context.Background(), "social.example", []byte("secret-token"), []byte("pass"))
	require.NoError(t, err)

	f.svc.Lock(a.ID)
	assert.False(t, f.svc.Unlocked(a.ID))
	require.ErrorIs(t, f.svc.Ping(context.Background(), a.ID), client.ErrAccountLocked)

	err = f.svc.Unlock(context.Background(), a.ID, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrInvalidPassphrase)
	assert.False(t, f.svc.Unlocked(a.ID))

	require.NoError(t, f.svc.Unlock(context.Background(), a.ID, []byte("pass")))
	assert.True(t, f.svc.Unlocked(a.ID))
	assert.Equal(t, factoryCall{instance: "social.example", token: "secret-token"}, f.calls[len(f.calls)-1])

	f.client.EXPECT().Ping(gomock.Any()).Return(nil)
	require.NoError(t, f.svc.Ping(context.Background(), a.ID))
}

func TestAccountService_UnlockUnknown(t *testing.T) {
	f := newAccountFixture(t)
	require.ErrorIs(t, f.svc.Unlock(context.Background(), 99, []byte("pass")), common.ErrorNotFound)
}

func TestAccountService_RemoveClearsCache(t *testing.T) {
	f := newAccountFixture(t)
	f.client.EXPECT().VerifyCredentials(gomock.Any()).Return(&models.Account{ID: "1", Username: "bob"}, nil)
	ctx := context.Background()

	a, err := f.svc.Add(ctx, "social.example", []byte("tok"), []byte("pass"))
	require.NoError(t, err)

	seed(t, f.svc.db, a.ID, wireStatus("5", "x"), wireStatus("4", "x"))
	seed(t, f.svc.db, a.ID+1, wireStatus("5", "x"))
	require.NoError(t, metadata.NewSQLiteRepository(f.svc.db).Set(ctx, a.ID, metadata.KeyLastPrunedAt, []byte("1")))

	require.NoError(t, f.svc.Remove(ctx, a.ID))

	assert.Empty(t, cachedIDs(t, f.svc.db, a.ID))
	assert.Equal(t, []string{"5"}, cachedIDs(t, f.svc.db, a.ID+1))
	kv, err := metadata.NewSQLiteRepository(f.svc.db).List(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, kv)
	assert.False(t, f.svc.Unlocked(a.ID))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAccountService_Hooks(t *testing.T) {
	db := setupDB(t)
	ctrl := gomock.NewController(t)
	mc := mocks.NewMockClient(ctrl)
	mc.EXPECT().VerifyCredentials(gomock.Any()).Return(&models.Account{ID: "1", Username: "bob"}, nil)

	var unlocked []string
	var locked []int64
	svc := NewAccountService(db, client.NewRegistry(),
		func(string, string) (client.Client, error) { return mc, nil },
		logging.Nop(),
		WithUnlockHook(func(a *models.LocalAccount, token string) { unlocked = append(unlocked, a.Domain+"|"+token) }),
		WithLockHook(func(id int64) { locked = append(locked, id) }),
	)

	a, err := svc.Add(context.Background(), "social.example", []byte("tok"), []byte("pass"))
	require.NoError(t, err)
	svc.Lock(a.ID)
	require.NoError(t, svc.Unlock(context.Background(), a.ID, []byte("pass")))
	require.NoError(t, svc.Remove(context.Background(), a.ID))

	assert.Equal(t, []string{"social.example|tok", "social.example|tok"}, unlocked)
	assert.Equal(t, []int64{a.ID, a.ID}, locked)
}
