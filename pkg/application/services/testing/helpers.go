package testing

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/application/state"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"github.com/vsinha/bomkit/pkg/infrastructure/repositories/memory"
	storetesting "github.com/vsinha/bomkit/pkg/infrastructure/testing"
)

// Now is the fixed clock used by service tests.
var Now = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

// Env wires services against a memory store with recorded notices.
type Env struct {
	Deps    shared.Dependencies
	Store   *storetesting.SpyStore
	Notices *notify.Recorder
	Events  *events.InMemoryEventStore
}

// NewEnv builds an empty environment with a fixed clock and seeded rand.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	store := storetesting.NewSpyStore(memory.NewStore())
	rec := notify.NewRecorder()
	ev := events.NewInMemoryEventStore(nil)
	return &Env{
		Deps: shared.Dependencies{
			Store:     store,
			State:     state.New(),
			Notifier:  rec,
			Confirmer: notify.AutoConfirm(true),
			Events:    ev,
			Clock:     func() time.Time { return Now },
			Rand:      rand.New(rand.NewPCG(1, 2)),
		}.WithDefaults(),
		Store:   store,
		Notices: rec,
		Events:  ev,
	}
}

func (e *Env) State() *state.State {
	return e.Deps.State
}

// AddPart stores a part and registers it in state.
func (e *Env) AddPart(t *testing.T, partNumber, name string, purchasePrice int64, supplier string, leadTime int) *entities.Part {
	t.Helper()
	p, err := entities.NewPart(partNumber, name, entities.Electronic, Now)
	require.NoError(t, err)
	p.PurchasePrice = decimal.NewFromInt(purchasePrice)
	p.ListPrice = decimal.NewFromInt(purchasePrice * 2)
	p.Supplier = supplier
	p.LeadTime = leadTime
	p.ID = e.create(t, repositories.Parts, p)
	e.Deps.State.PutPart(p)
	return p
}

// AddInventory stores an inventory record and registers it in state.
func (e *Env) AddInventory(t *testing.T, partID string, current, minStock, reorderPoint int) *entities.InventoryRecord {
	t.Helper()
	r, err := entities.NewInventoryRecord(partID, current, minStock, reorderPoint, Now)
	require.NoError(t, err)
	r.ID = e.create(t, repositories.Inventory, r)
	e.Deps.State.PutInventory(r)
	return r
}

// AddBOM stores a BOM with the given cost and registers it in state.
func (e *Env) AddBOM(t *testing.T, name string, totalCost int64, items ...entities.BOMItem) *entities.BOM {
	t.Helper()
	b, err := entities.NewBOM(name, name+" product", "", items, Now)
	require.NoError(t, err)
	b.TotalCost = decimal.NewFromInt(totalCost)
	b.ID = e.create(t, repositories.BOMs, b)
	e.Deps.State.PutBOM(b)
	return b
}

// AddQuote stores a quote and registers it in state.
func (e *Env) AddQuote(t *testing.T, bomID string, quantity int, start, delivery time.Time) *entities.Quote {
	t.Helper()
	q, err := entities.NewQuote("Tanaka Seisakusho", "Controller", quantity, delivery, Now, e.Deps.Rand)
	require.NoError(t, err)
	q.BOMID = bomID
	q.ManufacturingStartDate = start
	q.ID = e.create(t, repositories.Quotes, q)
	e.Deps.State.PutQuote(q)
	return q
}

func (e *Env) create(t *testing.T, c repositories.Collection, doc any) string {
	t.Helper()
	id, err := e.Store.Create(context.Background(), c, doc)
	require.NoError(t, err)
	return id
}

// Item builds a BOM item, failing the test on invalid input.
func Item(t *testing.T, partID string, quantity int, timing entities.UsageTiming, days int) entities.BOMItem {
	t.Helper()
	item, err := entities.NewBOMItem(partID, quantity, timing, days)
	require.NoError(t, err)
	return *item
}

// Workshop is a small catalogue shared by several service tests.
type Workshop struct {
	Resistor  *entities.Part // ¥100, Acme, 7 days
	Capacitor *entities.Part // ¥50, Acme, 14 days
	Bracket   *entities.Part // ¥30, Globex, 3 days
	Sample    *entities.Part // ¥10, no supplier
}

// BuildWorkshop adds the workshop parts to env.
func BuildWorkshop(t *testing.T, env *Env) *Workshop {
	t.Helper()
	return &Workshop{
		Resistor:  env.AddPart(t, "R-100", "Resistor 10k", 100, "Acme", 7),
		Capacitor: env.AddPart(t, "C-200", "Capacitor 1uF", 50, "Acme", 14),
		Bracket:   env.AddPart(t, "M-300", "Mounting bracket", 30, "Globex", 3),
		Sample:    env.AddPart(t, "S-400", "Free sample", 10, "", 0),
	}
}
