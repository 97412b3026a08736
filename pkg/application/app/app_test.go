package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/config"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/seed"
	"github.com/vsinha/bomkit/pkg/infrastructure/scheduler"
	storetesting "github.com/vsinha/bomkit/pkg/infrastructure/testing"
)

var now = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

const fixtureYAML = `
parts:
  - {partNumber: R-100, name: Resistor 10k, purchasePrice: "100", supplier: Acme, leadTime: 7}
  - {partNumber: M-300, name: Mounting bracket, category: mechanical, purchasePrice: "30", supplier: Globex, leadTime: 3}
inventory:
  - {partNumber: R-100, currentStock: 2, minStock: 5, reorderPoint: 10}
  - {partNumber: M-300, currentStock: 50, minStock: 0, reorderPoint: 10}
boms:
  - name: Controller
    productName: Controller board
    items:
      - {partNumber: R-100, quantity: 2, usageTiming: manufacturing}
      - {partNumber: M-300, quantity: 1, usageTiming: days_after_start, daysAfterStart: 5}
quotes:
  - customerName: Initech
    productName: Controller board
    quantity: 4
    manufacturingStartDate: 2025-04-01
    deliveryDate: 2025-05-01
    bom: Controller
`

type recordingSender struct {
	mu       sync.Mutex
	messages []string
}

func (s *recordingSender) SendAlert(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// blockingSender holds a send until release is closed or ctx ends.
type blockingSender struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingSender) SendAlert(ctx context.Context, _ string) error {
	s.started <- struct{}{}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type harness struct {
	app     *App
	store   *storetesting.SpyStore
	notices *notify.Recorder
	sender  *recordingSender
	sched   *scheduler.ManualScheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sender := &recordingSender{}
	h := newHarnessWithSender(t, sender)
	h.sender = sender
	return h
}

func newHarnessWithSender(t *testing.T, sender notify.AlertSender) *harness {
	t.Helper()
	h := &harness{
		store:   storetesting.NewSpyStore(memory.NewStore()),
		notices: notify.NewRecorder(),
		sched:   scheduler.NewManualScheduler(nil),
	}
	a, err := New(context.Background(), Options{
		Config:      config.Default(),
		Store:       h.store,
		Notifier:    h.notices,
		Confirmer:   notify.AutoConfirm(true),
		AlertSender: sender,
		Scheduler:   h.sched,
		Clock:       func() time.Time { return now },
		Rand:        rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	h.app = a
	return h
}

func (h *harness) seed(t *testing.T) {
	t.Helper()
	fixture, err := seed.Parse(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	result, err := h.app.Seed(context.Background(), fixture)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Parts)
	assert.Equal(t, 2, result.Inventory)
	assert.Equal(t, 1, result.BOMs)
	assert.Equal(t, 1, result.Quotes)
}

func TestNew_RegistersReconcileTask(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{ReconcileTaskName}, h.sched.Tasks())
}

func TestNew_NoReconcileWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Inventory.ReconcileInterval = 0
	sched := scheduler.NewManualScheduler(nil)
	a, err := New(context.Background(), Options{Config: cfg, Scheduler: sched})
	require.NoError(t, err)
	defer a.Close()
	assert.Empty(t, sched.Tasks())
}

func TestSeed(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	st := h.app.State()
	require.Len(t, st.BOMs, 1)
	if !st.BOMs[0].TotalCost.Equal(decimal.NewFromInt(230)) {
		t.Errorf("Expected BOM cost 230, got %s", st.BOMs[0].TotalCost)
	}
	require.Len(t, st.Quotes, 1)
	quote := st.Quotes[0]
	assert.Equal(t, st.BOMs[0].ID, quote.BOMID)
	if !quote.TotalAmount.Equal(decimal.NewFromInt(920)) {
		t.Errorf("Expected quote total 920, got %s", quote.TotalAmount)
	}
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), quote.ManufacturingStartDate)

	resistor, ok := st.PartByNumber("R-100")
	require.True(t, ok)
	record, ok := st.InventoryFor(resistor.ID)
	require.True(t, ok)
	assert.Equal(t, entities.StockLow, record.Status)
}

func TestSeed_IsRepeatable(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.seed(t)

	st := h.app.State()
	assert.Len(t, st.Parts, 2, "parts are matched by part number")
	assert.Len(t, st.Inventory, 2)
	assert.Len(t, st.BOMs, 1, "boms are matched by name")
	assert.Len(t, st.Quotes, 2)
}

func TestReconcileTask(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	resistor, _ := h.app.State().PartByNumber("R-100")
	record, _ := h.app.State().InventoryFor(resistor.ID)
	require.NoError(t, h.store.Update(ctx, repositories.Inventory, record.ID,
		entities.InventoryStatusUpdate{Status: entities.StockNormal}))
	require.NoError(t, h.app.Sync(ctx))
	record, _ = h.app.State().InventoryFor(resistor.ID)
	require.Equal(t, entities.StockNormal, record.Status)

	require.NoError(t, h.sched.Tick(ctx))
	require.NoError(t, h.app.Sync(ctx))
	record, _ = h.app.State().InventoryFor(resistor.ID)
	assert.Equal(t, entities.StockLow, record.Status)
}

func TestOrdersConfirmed_SendsAlert(t *testing.T) {
	h := newHarness(t)
	h.seed(t)

	var orders []*entities.Order
	err := h.app.Do(context.Background(), func(ctx context.Context) error {
		var err error
		orders, err = h.app.Orders.CreateFromAlerts(ctx)
		return err
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Acme", orders[0].Supplier)

	require.Eventually(t, func() bool { return len(h.sender.sent()) == 1 }, 5*time.Second, 10*time.Millisecond)
	message := h.sender.sent()[0]
	assert.Contains(t, message, "1件の発注を作成しました")
	assert.Contains(t, message, "Acme")
}

func TestOrdersConfirmed_AlertDoesNotHoldLock(t *testing.T) {
	sender := &blockingSender{started: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(sender.release)
	h := newHarnessWithSender(t, sender)
	h.seed(t)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- h.app.Do(ctx, func(ctx context.Context) error {
			_, err := h.app.Orders.CreateFromAlerts(ctx)
			return err
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected order confirmation to return while the alert is in flight, got a blocked trigger")
	}

	<-sender.started
	require.NoError(t, h.app.Sync(ctx))
	assert.Len(t, h.app.State().Orders, 1)
}

func TestSync_FailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	h.store.FailOn(storetesting.OpListAll, errors.New("offline"))

	err := h.app.Sync(context.Background())
	assert.ErrorContains(t, err, "sync")
	assert.Len(t, h.app.State().Parts, 2)
	assert.True(t, h.notices.Contains(notify.Error, "データの同期に失敗しました"))
}

func TestExportTable(t *testing.T) {
	h := newHarness(t)
	h.seed(t)
	ctx := context.Background()

	table, err := h.app.ExportTable(ctx, "inventory")
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "R-100", table.Rows[0][0])

	table, err = h.app.ExportTable(ctx, "parts")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	_, err = h.app.ExportTable(ctx, "boms")
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	store, closer, err := OpenStore(ctx, config.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Nil(t, closer)

	store, closer, err = OpenStore(ctx, config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "bomkit.db")})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()
	_, err = store.Create(ctx, repositories.Parts, map[string]any{"partNumber": "A"})
	assert.NoError(t, err)

	_, _, err = OpenStore(ctx, config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}
