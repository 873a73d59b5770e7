// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"

	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/config"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/internal/service"
	"github.com/easysholi/listsync/internal/store"
)

// App is the composition root: it owns the durable store, the remote
// adapter, and the service layer, and ties their lifetimes to the process.
type App struct {
	cfg      *config.ClientConfig
	log      *logger.Logger
	db       *store.DB
	remote   adapter.RemoteStore
	services *service.ClientServices
	prober   *service.Prober
}

// NewApp builds the full dependency graph. Durable state (queue, snapshots)
// is hydrated before anything else can touch it; the connectivity monitor
// starts offline until the first probe, unless forceOffline pins it there.
func NewApp(ctx context.Context, cfg *config.ClientConfig, forceOffline bool, log *logger.Logger) (*App, error) {
	db, err := store.NewConnectSQLite(ctx, cfg.Storage.DB, log.GetChildLogger())
	if err != nil {
		return nil, fmt.Errorf("connect local store: %w", err)
	}
	if err = db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}

	kv := store.NewKVStore(db, log.GetChildLogger())
	queue := store.NewMutationQueue(kv, log.GetChildLogger())
	snapshots := store.NewSnapshotStore(kv, log.GetChildLogger())

	if err = queue.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err = snapshots.Load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	remote := adapter.NewHTTPRemoteStore(adapter.HTTPClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		APIKey:  cfg.Remote.APIKey,
		Timeout: cfg.Remote.RequestTimeout,
	}, log.GetChildLogger())

	monitor := service.NewMonitor(false, log.GetChildLogger())
	services := service.NewClientServices(queue, snapshots, remote, monitor, log)

	app := &App{
		cfg:      cfg,
		log:      log,
		db:       db,
		remote:   remote,
		services: services,
	}

	if !forceOffline {
		// first probe runs inline so one-shot commands see the real state;
		// the transition to online also kicks off the reconnect drain
		monitor.Set(remote.Ping(ctx) == nil)
	}

	return app, nil
}

func (a *App) Services() *service.ClientServices {
	return a.services
}

func (a *App) Online() bool {
	return a.services.Monitor.Online()
}

// StartBackground launches the periodic drain job and the connectivity
// prober. Used by watch mode; one-shot commands never call it.
func (a *App) StartBackground(ctx context.Context) {
	a.services.SyncJob.Start(ctx, a.cfg.Workers.SyncInterval)

	if a.cfg.Workers.ProbeInterval > 0 {
		a.prober = service.NewProber(
			a.services.Monitor,
			a.remote,
			a.cfg.Workers.ProbeInterval,
			a.log.GetChildLogger(),
		)
		a.prober.Start(ctx)
	}
}

// Close stops background work and releases the local database.
func (a *App) Close() error {
	if a.prober != nil {
		a.prober.Stop()
	}
	a.services.SyncJob.Stop()

	return a.db.Close()
}
