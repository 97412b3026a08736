package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svctesting "github.com/vsinha/bomkit/pkg/application/services/testing"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	storetesting "github.com/vsinha/bomkit/pkg/infrastructure/testing"
)

func TestCleanPrice(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"1200", "1200"},
		{"¥1,200", "1200"},
		{"1,200円", "1200"},
		{" ￥12.5 ", "12.5"},
		{"", "0"},
		{"call us", "0"},
	}

	for _, tc := range testCases {
		got := CleanPrice(tc.input)
		if !got.Equal(decimal.RequireFromString(tc.expected)) {
			t.Errorf("Expected %q to clean to %s, got %s", tc.input, tc.expected, got)
		}
	}
}

func TestImportParts(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	ctx := context.Background()

	rows := [][]string{
		{"D-500", "Diode", "electronic", "Rohm", "¥40", "25円", "Acme", "5"},
		{"R-100", "Resistor 4.7k", "", "", "1,000", "120", "Acme", "9"},
		{"", ""},
		{"X-1", ""},
		{"only-one-cell"},
		{"P-9", "Plastic", "plastic"},
		{"S-1", "Screw", "mechanical", "", "", "", "", "abc"},
	}

	result, err := NewService(env.Deps).Import(ctx, Parts, rows)
	require.NoError(t, err)
	assert.Equal(t, "parts", result.Kind)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, result.Errored)

	require.Len(t, env.State().Parts, 6)
	resistor, ok := env.State().Part(shop.Resistor.ID)
	require.True(t, ok, "existing part number is updated in place")
	assert.Equal(t, "Resistor 4.7k", resistor.Name)
	assert.True(t, resistor.PurchasePrice.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, 9, resistor.LeadTime)

	diode, ok := env.State().PartByNumber("D-500")
	require.True(t, ok)
	assert.True(t, diode.PurchasePrice.Equal(decimal.NewFromInt(25)))
	screw, ok := env.State().PartByNumber("S-1")
	require.True(t, ok)
	assert.Equal(t, entities.Mechanical, screw.Category)
	assert.Equal(t, 0, screw.LeadTime)

	assert.True(t, env.Notices.Contains(notify.Success, "3件のデータをインポートしました"))
	assert.True(t, env.Notices.Contains(notify.Warning, "スキップ: 3件"))

	evs, err := env.Events.ReadEvents(events.ImportStream, 1)
	require.NoError(t, err)
	require.Len(t, evs, 1)
}

func TestImportParts_StoreFailureContinues(t *testing.T) {
	env := svctesting.NewEnv(t)
	env.Store.FailOn(storetesting.OpCreate, errors.New("offline"))

	result, err := NewService(env.Deps).Import(context.Background(), Parts, [][]string{
		{"A-1", "Alpha"},
		{"B-2", "Beta"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 2, result.Errored)
}

func TestImportInventory(t *testing.T) {
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	existing := env.AddInventory(t, shop.Resistor.ID, 50, 0, 5)
	ctx := context.Background()

	rows := [][]string{
		{"R-100", "3", "2", "10"},
		{"C-200", "40", "", "5"},
		{"NOPE-1", "1", "1", "1"},
		{"M-300"},
		{"S-400", "-1", "0", "0"},
	}

	result, err := NewService(env.Deps).Import(ctx, Inventory, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 1, result.Errored)

	require.Len(t, env.State().Inventory, 2)
	resistor, ok := env.State().InventoryFor(shop.Resistor.ID)
	require.True(t, ok)
	assert.Equal(t, existing.ID, resistor.ID)
	assert.Equal(t, 3, resistor.CurrentStock)
	assert.Equal(t, entities.StockLow, resistor.Status)

	capacitor, ok := env.State().InventoryFor(shop.Capacitor.ID)
	require.True(t, ok)
	assert.Equal(t, 40, capacitor.CurrentStock)
	assert.Equal(t, entities.StockNormal, capacitor.Status)
}

func TestImportBOMs_NotSupported(t *testing.T) {
	env := svctesting.NewEnv(t)
	env.Store.Reset()

	result, err := NewService(env.Deps).Import(context.Background(), BOMs, [][]string{{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.True(t, env.Notices.Contains(notify.Info, "BOMインポートは今後のバージョンで対応予定です"))
	assert.Empty(t, env.Store.Calls())
}

func TestImport_SyncFailure(t *testing.T) {
	env := svctesting.NewEnv(t)
	env.Store.FailOn(storetesting.OpListAll, errors.New("offline"))

	_, err := NewService(env.Deps).Import(context.Background(), Parts, [][]string{{"A-1", "Alpha"}})
	assert.ErrorContains(t, err, "refresh state")
	assert.True(t, env.Notices.Contains(notify.Error, "データの同期に失敗しました"))
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Parts, Inventory, BOMs} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("quotes")
	assert.Error(t, err)
}
