package entities

import (
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand int

func (f fixedRand) IntN(int) int { return int(f) }

func TestGenerateNumbers(t *testing.T) {
	assert.Equal(t, "Q20250310-007", GenerateQuoteNumber(testNow, fixedRand(7)))
	assert.Equal(t, "PO20250310-999", GenerateOrderNumber(testNow, fixedRand(999)))
	assert.Equal(t, "Q20250310-000", GenerateQuoteNumber(testNow, fixedRand(0)))

	pattern := regexp.MustCompile(`^PO\d{8}-\d{3}$`)
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		n := GenerateOrderNumber(testNow, rng)
		if !pattern.MatchString(n) {
			t.Fatalf("Expected order number to match %s, got %s", pattern, n)
		}
	}
}

func TestNewOrder(t *testing.T) {
	lines := []OrderLine{
		{PartID: "a", Quantity: 8, UnitPrice: decimal.NewFromInt(50)},
		{PartID: "b", Quantity: 2, UnitPrice: decimal.RequireFromString("12.5")},
	}
	order, err := NewOrder("Acme", lines, 14, testNow, fixedRand(42))
	require.NoError(t, err)

	assert.Equal(t, "PO20250310-042", order.OrderNumber)
	assert.Equal(t, OrderPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(425)), "got %s", order.TotalAmount)
	assert.Equal(t, testNow.AddDate(0, 0, 14), order.ExpectedDeliveryDate)

	_, err = NewOrder("", lines, 0, testNow, fixedRand(1))
	assert.Error(t, err)
	_, err = NewOrder("Acme", nil, 0, testNow, fixedRand(1))
	assert.Error(t, err)
	_, err = NewOrder("Acme", []OrderLine{{PartID: "a"}}, 0, testNow, fixedRand(1))
	assert.Error(t, err)
}

func TestOrderStatus_Parse(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderOrdered, OrderDelivered, OrderCancelled} {
		parsed, err := ParseOrderStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestNewQuote(t *testing.T) {
	delivery := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	q, err := NewQuote("Tanaka Inc", "Controller", 4, delivery, testNow, fixedRand(5))
	require.NoError(t, err)
	assert.Equal(t, "Q20250310-005", q.QuoteNumber)
	assert.Equal(t, QuoteDraft, q.Status)
	assert.False(t, q.Schedulable())

	q.BOMID = "bom-1"
	q.ManufacturingStartDate = testNow
	assert.True(t, q.Schedulable())

	_, err = NewQuote("Tanaka Inc", "Controller", 0, delivery, testNow, fixedRand(5))
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 100, DaysBetween(start, start.AddDate(0, 0, 100)))
	assert.Equal(t, 0, DaysBetween(start, start.Add(23*time.Hour)))
	assert.Equal(t, -1, DaysBetween(start, start.Add(-time.Hour)))
	assert.Equal(t, start, StartOfDay(start.Add(13*time.Hour)))
}
