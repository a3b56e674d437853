// Package app wires the tootcache client together: the cache database, the
// event bus and cache updater, the timeline and account services, the
// streaming manager, periodic cleanup, the metrics endpoint and the REPL.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/cli"
	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/config"
	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/client/services"
	"github.com/dmitrijs2005/tootcache/internal/client/streaming"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const userAgent = "tootcache/1.0"

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	registry *prometheus.Registry
	metrics  metrics.Metrics
	bus      *events.Bus
	clients  *client.Registry
	streams  *streaming.Manager

	Timelines *services.TimelineService
	Accounts  *services.AccountService
	Cleanup   *services.CleanupService
	Lists     *services.ListService

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metricsLn net.Listener
}

// NewApp opens the cache and builds every service. The returned App owns
// a context derived from ctx that Close cancels.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	app := &App{
		config:   c,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
		clients:  client.NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
	app.registry.MustRegister(collectors.NewGoCollector())
	app.metrics = metrics.New(app.registry)
	app.bus = events.NewBus(logger.With("component", "bus"), c.EventBuffer)

	updater := services.NewCacheUpdater(db, app.metrics, logger.With("component", "cache"))
	if _, err := updater.Subscribe(ctx, app.bus); err != nil {
		app.Close()
		return nil, fmt.Errorf("subscribe cache updater: %w", err)
	}

	app.streams = streaming.NewManager(ctx, app.bus,
		streaming.WithLogger(logger.With("component", "streaming")),
		streaming.WithMetrics(app.metrics),
	)

	app.Timelines = services.NewTimelineService(db, app.clients, app.bus,
		services.WithPageLimit(c.PageLimit),
		services.WithTrustThreshold(c.TrustThreshold),
		services.WithTimelineMetrics(app.metrics),
		services.WithTimelineLogger(logger.With("component", "timeline")),
	)
	app.Lists = services.NewListService(app.clients)
	app.Accounts = services.NewAccountService(db, app.clients, app.newClient, logger.With("component", "accounts"),
		services.WithUnlockHook(app.onUnlock),
		services.WithLockHook(app.onLock),
	)
	app.Cleanup = services.NewCleanupService(db, services.RetentionPolicy{
		KeepCount: c.KeepCount,
		MaxAge:    c.MaxAge,
	}, app.metrics, logger.With("component", "cleanup"))

	return app, nil
}

// newClient is the services.ClientFactory of the app.
func (app *App) newClient(instance, token string) (client.Client, error) {
	c, err := client.NewHTTPClient(instance, token,
		client.WithHTTPClient(&http.Client{Timeout: app.config.RequestTimeout}),
		client.WithRateLimit(app.config.RateLimit, app.config.RateBurst),
		client.WithUserAgent(userAgent),
		client.WithLogger(app.logger.With("instance", instance)),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (app *App) onUnlock(a *models.LocalAccount, token string) {
	if !app.config.Streaming {
		return
	}
	if err := app.streams.Start(a.ID, a.Domain, token); err != nil {
		app.logger.Warn(app.ctx, "streaming not started", "account", a.ID, "err", err)
	}
}

func (app *App) onLock(id int64) {
	app.streams.Stop(id)
	app.Lists.Forget(id)
}

func (app *App) initSignalHandler() {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		select {
		case <-sigs:
			app.cancel()
		case <-app.ctx.Done():
		}
		signal.Stop(sigs)
	}()
}

// StartMetricsServer serves /metrics on addr until the app context ends.
func (app *App) StartMetricsServer(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	app.metricsLn = ln

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(app.registry))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	app.wg.Add(2)
	go func() {
		defer app.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(app.ctx, "metrics server failed", "err", err)
		}
	}()
	go func() {
		defer app.wg.Done()
		<-app.ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	app.logger.Info(app.ctx, "metrics server started", "addr", ln.Addr().String())
	return nil
}

// MetricsAddr is the address the metrics server listens on, or "".
func (app *App) MetricsAddr() string {
	if app.metricsLn == nil {
		return ""
	}
	return app.metricsLn.Addr().String()
}

func (app *App) startCleanup() {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.Cleanup.Run(app.ctx, app.config.CleanupInterval)
	}()
}

// Run starts the background workers and blocks in the REPL until the user
// exits or a termination signal arrives.
func (app *App) Run() {
	app.logger.Info(app.ctx, "Starting app...")

	app.initSignalHandler()
	app.startCleanup()

	if app.config.MetricsAddr != "" {
		if err := app.StartMetricsServer(app.config.MetricsAddr); err != nil {
			app.logger.Error(app.ctx, err.Error())
		}
	}

	repl := cli.NewApp(app.config, cli.Deps{
		Timelines: app.Timelines,
		Accounts:  app.Accounts,
		Cleaner:   app.Cleanup,
		Lists:     app.Lists,
		Logger:    app.logger.With("component", "cli"),
	})
	repl.Run(app.ctx)
}

// Close stops the workers, locks every account and closes the database.
func (app *App) Close() {
	for _, id := range app.clients.IDs() {
		app.Accounts.Lock(id)
	}
	app.cancel()
	if app.streams != nil {
		app.streams.Close()
	}
	app.wg.Wait()
	if app.bus != nil {
		app.bus.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "close database", "err", err)
	}
}
