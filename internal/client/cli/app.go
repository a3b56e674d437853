package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/config"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/paging"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/client/services"
	"github.com/dmitrijs2005/tootcache/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// Timelines is the part of services.TimelineService the CLI drives.
type Timelines interface {
	LoadWindow(ctx context.Context, localAccountID int64, q models.PageQuery) (*services.Window, error)
	Refresh(ctx context.Context, localAccountID int64) (*services.Window, error)
	LoadGap(ctx context.Context, localAccountID int64, placeholderID string) (*services.Window, error)

	Favourite(ctx context.Context, localAccountID int64, statusID string, value bool) error
	Reblog(ctx context.Context, localAccountID int64, statusID string, value bool) error
	Bookmark(ctx context.Context, localAccountID int64, statusID string, value bool) error
	VotePoll(ctx context.Context, localAccountID int64, statusID, pollID string, choices []int) error
	Delete(ctx context.Context, localAccountID int64, statusID string) error
	Unfollow(ctx context.Context, localAccountID int64, accountID string) error
	Block(ctx context.Context, localAccountID int64, accountID string) error
	Mute(ctx context.Context, localAccountID int64, accountID string) error
}

// Accounts is the part of services.AccountService the CLI drives.
type Accounts interface {
	Add(ctx context.Context, instance string, token, passphrase []byte) (*models.LocalAccount, error)
	Unlock(ctx context.Context, id int64, passphrase []byte) error
	Lock(id int64)
	Ping(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.LocalAccount, error)
	Unlocked(id int64) bool
}

type Cleaner interface {
	PruneAll(ctx context.Context) (map[int64]timeline.PruneResult, error)
}

type Lists interface {
	DomainBlocks(localAccountID int64) (*paging.Tracker[string], error)
	FollowedTags(localAccountID int64) (*paging.Tracker[models.Tag], error)
	NotificationRequests(localAccountID int64) (*paging.Tracker[models.NotificationRequest], error)
	Forget(localAccountID int64)
}

// Deps are the services an App runs on. cmd/client builds them.
type Deps struct {
	Timelines Timelines
	Accounts  Accounts
	Cleaner   Cleaner
	Lists     Lists
	Logger    logging.Logger
}

type App struct {
	config    *config.Config
	timelines Timelines
	accounts  Accounts
	cleaner   Cleaner
	lists     Lists
	log       logging.Logger

	mu      sync.Mutex
	current *models.LocalAccount
	// oldest is the lowest row id of the last window shown, the cursor for "older".
	oldest string

	Mode   Mode
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, d Deps) *App {
	l := d.Logger
	if l == nil {
		l = logging.Nop()
	}
	return &App{
		config:    c,
		timelines: d.Timelines,
		accounts:  d.Accounts,
		cleaner:   d.Cleaner,
		lists:     d.Lists,
		log:       l,
		Mode:      ModeDisabled,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) hasAccount() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil
}

func (a *App) account() *models.LocalAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) setAccount(acc *models.LocalAccount) {
	a.mu.Lock()
	a.current = acc
	a.oldest = ""
	a.mu.Unlock()
}

// status renders the prompt prefix: the selected account and the mode.
func (a *App) status() string {
	acc := a.account()
	if acc == nil {
		return "no account"
	}
	return acc.FullName() + " " + string(a.mode())
}

// Run starts the connectivity watcher and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interval := 10 * time.Second
	if a.config != nil && a.config.OnlineCheckInterval > 0 {
		interval = a.config.OnlineCheckInterval
	}
	go a.StartOnlineStatusWatcher(ctx, interval)

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

// StartOnlineStatusWatcher pings the selected account's instance every
// interval and flips Mode between online and offline. Without a selected
// account the mode is disabled.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	acc := a.account()
	if acc == nil || !a.accounts.Unlocked(acc.ID) {
		a.setMode(ModeDisabled)
		return
	}

	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.accounts.Ping(pctx, acc.ID)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
	}
}
