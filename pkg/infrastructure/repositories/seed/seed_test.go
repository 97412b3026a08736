package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workshop = `
parts:
  - partNumber: R-100
    name: Resistor 10k
    category: electronic
    listPrice: "200"
    purchasePrice: "100"
    supplier: Acme
    leadTime: 7
  - partNumber: M-300
    name: Mounting bracket
    category: mechanical
    purchasePrice: "30"
    supplier: Globex
    leadTime: 3
inventory:
  - partNumber: R-100
    currentStock: 2
    minStock: 5
    reorderPoint: 10
boms:
  - name: Controller
    productName: Controller board
    version: "1.0"
    items:
      - partNumber: R-100
        quantity: 2
        usageTiming: manufacturing
      - partNumber: M-300
        quantity: 1
        usageTiming: days_after_start
        daysAfterStart: 5
quotes:
  - customerName: Initech
    productName: Controller board
    quantity: 4
    manufacturingStartDate: 2025-04-01
    deliveryDate: 2025-05-01
    bom: Controller
`

func TestParse(t *testing.T) {
	fixture, err := Parse(strings.NewReader(workshop))
	require.NoError(t, err)

	require.Len(t, fixture.Parts, 2)
	assert.Equal(t, "R-100", fixture.Parts[0].PartNumber)
	assert.Equal(t, 7, fixture.Parts[0].LeadTime)
	require.Len(t, fixture.Inventory, 1)
	assert.Equal(t, 10, fixture.Inventory[0].ReorderPoint)
	require.Len(t, fixture.BOMs, 1)
	require.Len(t, fixture.BOMs[0].Items, 2)
	assert.Equal(t, 5, fixture.BOMs[0].Items[1].DaysAfterStart)
	require.Len(t, fixture.Quotes, 1)
	assert.Equal(t, "2025-04-01", fixture.Quotes[0].ManufacturingStartDate)
	assert.Equal(t, "Controller", fixture.Quotes[0].BOM)
}

func TestParse_Empty(t *testing.T) {
	fixture, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fixture.Parts)
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"unknown key", "widgets: []\n", "decode seed"},
		{"duplicate part", "parts:\n  - {partNumber: A, name: a}\n  - {partNumber: A, name: b}\n", "duplicate partNumber A"},
		{"missing part number", "parts:\n  - {name: a}\n", "partNumber is required"},
		{"bad price", "parts:\n  - {partNumber: A, name: a, listPrice: cheap}\n", "invalid price"},
		{"unknown inventory part", "inventory:\n  - {partNumber: Z, currentStock: 1}\n", "unknown part Z"},
		{"unknown bom part", "boms:\n  - {name: B, items: [{partNumber: Z, quantity: 1}]}\n", "unknown part Z"},
		{"unknown quote bom", "quotes:\n  - {customerName: c, productName: p, quantity: 1, deliveryDate: 2025-05-01, bom: nope}\n", "unknown bom nope"},
		{"bad date", "quotes:\n  - {customerName: c, productName: p, quantity: 1, deliveryDate: 05/01/2025}\n", "invalid date"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(workshop), 0o600))

	fixture, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, fixture.Parts, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open seed file")
}

func TestPriceAndDate(t *testing.T) {
	p, err := Price(" 12.5 ")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("12.5")))

	p, err = Price("")
	require.NoError(t, err)
	assert.True(t, p.IsZero())

	d, err := Date("2025-04-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = Date("", time.UTC)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}
