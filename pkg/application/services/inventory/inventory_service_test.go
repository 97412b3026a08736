package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svctesting "github.com/vsinha/bomkit/pkg/application/services/testing"
	"github.com/vsinha/bomkit/pkg/application/state"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	storetesting "github.com/vsinha/bomkit/pkg/infrastructure/testing"
)

func TestReconcileStatuses_WritesOnlyChangedAndIsIdempotent(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	stale := env.AddInventory(t, shop.Resistor.ID, 3, 0, 5)
	env.AddInventory(t, shop.Capacitor.ID, 50, 0, 5)
	stale.Status = entities.StockNormal
	env.Store.Reset()

	service := NewService(env.Deps)
	ctx := context.Background()

	written, err := service.ReconcileStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.Equal(t, entities.StockLow, stale.Status)
	assert.Equal(t, 1, env.Store.Writes())

	env.Store.Reset()
	written, err = service.ReconcileStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, written, "second pass has nothing to write")
	assert.Equal(t, 0, env.Store.Writes())

	reloaded, err := state.Load(ctx, env.Store)
	require.NoError(t, err)
	record, ok := reloaded.InventoryFor(shop.Resistor.ID)
	require.True(t, ok)
	assert.Equal(t, entities.StockLow, record.Status)
}

func TestReconcileStatuses_StoreFailureLeavesRecord(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	stale := env.AddInventory(t, shop.Resistor.ID, 0, 0, 5)
	stale.Status = entities.StockNormal
	env.Store.FailOn(storetesting.OpUpdate, errors.New("offline"))

	written, err := NewService(env.Deps).ReconcileStatuses(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, entities.StockNormal, stale.Status)
}

func TestConsume(t *testing.T) {
	testCases := []struct {
		name          string
		current       int
		consume       int
		expectedStock int
		expectedState entities.StockStatus
		expectWarning bool
	}{
		{"stays normal", 20, 5, 15, entities.StockNormal, false},
		{"drops to low", 20, 15, 5, entities.StockLow, true},
		{"clamps at zero", 3, 10, 0, entities.StockOut, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := svctesting.NewEnv(t)
			shop := svctesting.BuildWorkshop(t, env)
			env.AddInventory(t, shop.Resistor.ID, tc.current, 0, 5)

			record, err := NewService(env.Deps).Consume(context.Background(), shop.Resistor.ID, tc.consume)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStock, record.CurrentStock)
			assert.Equal(t, tc.expectedState, record.Status)
			assert.Equal(t, svctesting.Now, record.LastUpdated)
			assert.Equal(t, tc.expectWarning, env.Notices.Contains(notify.Warning, "R-100の在庫が不足しています"))
		})
	}
}

func TestConsume_Errors(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	record := env.AddInventory(t, shop.Resistor.ID, 10, 0, 5)
	service := NewService(env.Deps)
	ctx := context.Background()

	_, err := service.Consume(ctx, shop.Resistor.ID, 0)
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = service.Consume(ctx, shop.Bracket.ID, 1)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	env.Store.FailOn(storetesting.OpUpdate, errors.New("offline"))
	_, err = service.Consume(ctx, shop.Resistor.ID, 4)
	assert.Error(t, err)
	assert.Equal(t, 10, record.CurrentStock, "state unchanged after failed write")
	assert.True(t, env.Notices.Contains(notify.Error, "在庫の保存に失敗しました"))
}

func TestReplenish(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	env.AddInventory(t, shop.Capacitor.ID, 0, 0, 5)

	record, err := NewService(env.Deps).Replenish(context.Background(), shop.Capacitor.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, record.CurrentStock)
	assert.Equal(t, entities.StockNormal, record.Status)
	assert.True(t, env.Notices.Contains(notify.Success, "C-200の在庫を12個補充しました"))

	evs, err := env.Events.ReadEvents(events.InventoryStream, 1)
	require.NoError(t, err)
	require.NotEmpty(t, evs)
	assert.Equal(t, events.InventoryReplenishedEvent, evs[len(evs)-1].Type())
}

func TestSaveRecord_Upsert(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	service := NewService(env.Deps)
	ctx := context.Background()

	created, err := service.SaveRecord(ctx, shop.Bracket.ID, 4, 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entities.StockNormal, created.Status)

	updated, err := service.SaveRecord(ctx, shop.Bracket.ID, 4, 2, 6)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, entities.StockLow, updated.Status)
	assert.Len(t, env.State().Inventory, 1)

	_, err = service.SaveRecord(ctx, "nope", 1, -1, 0)
	var verrs *entities.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Errors, 2)
}

func TestFilter(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	env.AddInventory(t, shop.Resistor.ID, 2, 0, 5)
	env.AddInventory(t, shop.Capacitor.ID, 20, 0, 5)
	env.AddInventory(t, "deleted-part", 0, 0, 5)
	service := NewService(env.Deps)

	assert.Len(t, service.Filter("", nil), 2, "orphan record skipped")
	assert.Len(t, service.Filter("resistor", nil), 1)
	assert.Len(t, service.Filter("c-2", nil), 1)

	low := entities.StockLow
	rows := service.Filter("", &low)
	require.Len(t, rows, 1)
	assert.Equal(t, "R-100", rows[0].Part.PartNumber)

	assert.Len(t, service.LowStock(), 2, "orphaned out-of-stock record still needs reorder")
}
