package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/xuri/excelize/v2"
)

type partMap map[string]*entities.Part

func (m partMap) Part(id string) (*entities.Part, bool) {
	p, ok := m[id]
	return p, ok
}

var day = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func sampleParts() []*entities.Part {
	return []*entities.Part{
		{
			ID: "p1", PartNumber: "R-100", Name: "Resistor, 10k", Category: entities.Electronic,
			ListPrice: decimal.NewFromInt(200), PurchasePrice: decimal.NewFromInt(100),
			Supplier: "Acme", LeadTime: 7,
		},
		{
			ID: "p2", PartNumber: "M-300", Name: `Bracket "L"`, Category: entities.Mechanical,
			ListPrice: decimal.NewFromInt(60), PurchasePrice: decimal.NewFromInt(30),
			Supplier: "Globex", LeadTime: 3,
		},
	}
}

func TestFileName(t *testing.T) {
	table := PartsTable(nil)
	if got := table.FileName(CSV, day); got != "parts_20250310.csv" {
		t.Errorf("Expected parts_20250310.csv, got %s", got)
	}
	inventory := InventoryTable(nil, partMap{})
	if got := inventory.FileName(XLSX, day); got != "inventory_20250310.xlsx" {
		t.Errorf("Expected inventory_20250310.xlsx, got %s", got)
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", CSV, false},
		{"CSV", CSV, false},
		{"xlsx", XLSX, false},
		{"excel", XLSX, false},
		{"pdf", CSV, true},
	}

	for _, tc := range testCases {
		got, err := ParseFormat(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		if got != tc.expected {
			t.Errorf("Expected %q to parse as %s, got %s", tc.input, tc.expected, got)
		}
	}
}

func TestWriteCSV_Parts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PartsTable(sampleParts()).Write(&buf, CSV))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "品番,部品名,カテゴリ,メーカー,定価,仕入れ値,発注先,リードタイム", lines[0])
	assert.Equal(t, `R-100,"Resistor, 10k",electronic,,200,100,Acme,7`, lines[1])
	assert.Equal(t, `M-300,"Bracket ""L""",mechanical,,60,30,Globex,3`, lines[2])
}

func TestWriteCSV_InventoryMissingPart(t *testing.T) {
	records := []*entities.InventoryRecord{
		{ID: "i1", PartID: "p1", CurrentStock: 2, MinStock: 5, ReorderPoint: 10, Status: entities.StockLow, LastUpdated: day},
		{ID: "i2", PartID: "gone", CurrentStock: 8, MinStock: 0, ReorderPoint: 4, Status: entities.StockNormal, LastUpdated: day},
	}
	parts := partMap{"p1": sampleParts()[0]}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, InventoryTable(records, parts)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "品番,部品名,現在庫数,最小在庫数,発注点,ステータス,最終更新日", lines[0])
	assert.Equal(t, `R-100,"Resistor, 10k",2,5,10,`+entities.StockLow.Label()+",2025/03/10", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], ",,8,0,4,"), "missing part leaves the part columns empty")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PartsTable(sampleParts()).Write(&buf, XLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"parts"}, f.GetSheetList())
	rows, err := f.GetRows("parts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "品番", rows[0][0])
	assert.Equal(t, "リードタイム", rows[0][7])
	assert.Equal(t, "Resistor, 10k", rows[1][1])
	assert.Equal(t, `Bracket "L"`, rows[2][1])

	styleID, err := f.GetCellStyle("parts", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestOrdersTable(t *testing.T) {
	order := &entities.Order{
		OrderNumber: "PO-1", Supplier: "Acme",
		Items:       []entities.OrderLine{{PartID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(100)}},
		TotalAmount: decimal.NewFromInt(200), OrderDate: day, ExpectedDeliveryDate: day.AddDate(0, 0, 7),
		Status: entities.OrderPending,
	}
	table := OrdersTable([]*entities.Order{order})
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"PO-1", "Acme", "1", "200", "2025/03/10", "2025/03/17", entities.OrderPending.Label()}, table.Rows[0])
}
