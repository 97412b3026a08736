package app

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vsinha/bomkit/pkg/application/services/bom"
	"github.com/vsinha/bomkit/pkg/application/services/dashboard"
	"github.com/vsinha/bomkit/pkg/application/services/importer"
	"github.com/vsinha/bomkit/pkg/application/services/inventory"
	"github.com/vsinha/bomkit/pkg/application/services/parts"
	"github.com/vsinha/bomkit/pkg/application/services/procurement"
	"github.com/vsinha/bomkit/pkg/application/services/quotes"
	"github.com/vsinha/bomkit/pkg/application/services/schedule"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/application/state"
	"github.com/vsinha/bomkit/pkg/config"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/bomkit/pkg/infrastructure/scheduler"
	"go.uber.org/zap"
)

// ReconcileTaskName names the periodic inventory status task.
const ReconcileTaskName = "inventory.reconcile"

// Options configures New. Zero fields fall back to values derived from Config.
type Options struct {
	Config      *config.Config
	Store       repositories.DocumentStore
	Logger      *zap.Logger
	Notifier    notify.Notifier
	Confirmer   notify.Confirmer
	AlertSender notify.AlertSender
	Scheduler   scheduler.Scheduler
	Clock       func() time.Time
	Rand        entities.RandSource
}

// App wires the services over one store and one state container and
// serialises every trigger through Do.
type App struct {
	mu     sync.Mutex
	deps   shared.Dependencies
	events *events.InMemoryEventStore
	alerts *notify.AlertHandler
	sched  scheduler.Scheduler
	closer io.Closer

	Parts     *parts.Service
	BOMs      *bom.Service
	Inventory *inventory.Service
	Quotes    *quotes.Service
	Orders    *procurement.Service
	Schedules *schedule.Service
	Importer  *importer.Service
	Dashboard *dashboard.Service
}

// OpenStore opens the document store named by cfg. The closer is nil for the
// memory driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (repositories.DocumentStore, io.Closer, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.NewStore(), nil, nil
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// New opens the store, loads state, subscribes the order alert handler and
// registers the reconcile task. The scheduler is not started.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, closer := opts.Store, io.Closer(nil)
	if store == nil {
		var err error
		if store, closer, err = OpenStore(ctx, cfg.Store); err != nil {
			return nil, err
		}
	}

	ev := events.NewInMemoryEventStore(logger)
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(clock().UnixNano()), 0))
	}
	deps := shared.Dependencies{
		Store:     store,
		State:     state.New(),
		Notifier:  opts.Notifier,
		Confirmer: opts.Confirmer,
		Events:    ev,
		Logger:    logger,
		Clock:     clock,
		Rand:      rng,
	}.WithDefaults()

	a := &App{
		deps:      deps,
		events:    ev,
		closer:    closer,
		Parts:     parts.NewService(deps),
		BOMs:      bom.NewService(deps),
		Inventory: inventory.NewService(deps),
		Quotes:    quotes.NewService(deps),
		Orders:    procurement.NewService(deps),
		Schedules: schedule.NewService(deps),
		Importer:  importer.NewService(deps),
		Dashboard: dashboard.NewService(deps),
	}

	if err := deps.State.Sync(ctx, store); err != nil {
		a.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	sender := opts.AlertSender
	if sender == nil {
		sender = notify.NewWebhookAlertSender(cfg.Notify.WebhookURL, cfg.Notify.Token, 10*time.Second)
	}
	a.alerts = notify.NewAlertHandler(sender, deps.Notifier, logger, clock)
	if err := ev.Subscribe([]string{events.OrdersConfirmedEvent}, a.alerts); err != nil {
		a.Close()
		return nil, fmt.Errorf("subscribe order alerts: %w", err)
	}

	a.sched = opts.Scheduler
	if a.sched == nil {
		a.sched = scheduler.NewTickerScheduler(logger)
	}
	if interval := cfg.Inventory.ReconcileInterval; interval > 0 {
		if err := a.sched.Every(interval, a.ReconcileTask()); err != nil {
			a.Close()
			return nil, err
		}
	}

	logger.Info("application ready",
		zap.String("store", cfg.Store.Driver),
		zap.Int("parts", len(deps.State.Parts)),
		zap.Int("inventory", len(deps.State.Inventory)),
		zap.Int("boms", len(deps.State.BOMs)),
		zap.Int("quotes", len(deps.State.Quotes)),
		zap.Int("orders", len(deps.State.Orders)))
	return a, nil
}

// Do runs fn with exclusive access to state and services. Triggers never
// interleave.
func (a *App) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(ctx)
}

// Sync reloads every collection from the store. On failure state is left as
// it was.
func (a *App) Sync(ctx context.Context) error {
	return a.Do(ctx, func(ctx context.Context) error {
		if err := a.deps.State.Sync(ctx, a.deps.Store); err != nil {
			a.deps.Notifier.Notify("データの同期に失敗しました", notify.Error)
			return fmt.Errorf("sync: %w", err)
		}
		return nil
	})
}

// ReconcileTask recomputes stored inventory statuses under Do.
func (a *App) ReconcileTask() scheduler.Task {
	return scheduler.NewTask(ReconcileTaskName, func(ctx context.Context) error {
		return a.Do(ctx, func(ctx context.Context) error {
			_, err := a.Inventory.ReconcileStatuses(ctx)
			return err
		})
	})
}

// Start runs scheduled tasks until ctx is done or Close is called.
func (a *App) Start(ctx context.Context) {
	a.sched.Start(ctx)
}

func (a *App) State() *state.State {
	return a.deps.State
}

func (a *App) Events() events.EventStore {
	return a.events
}

func (a *App) Logger() *zap.Logger {
	return a.deps.Logger
}

func (a *App) Now() time.Time {
	return a.deps.Now()
}

// Close stops the scheduler, cancels undelivered order alerts and closes the
// store.
func (a *App) Close() error {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.alerts != nil {
		a.alerts.Close()
	}
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
