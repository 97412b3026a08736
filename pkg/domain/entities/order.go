package entities

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks a purchase order.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderOrdered
	OrderDelivered
	OrderCancelled
)

var orderStatusNames = []string{"pending", "ordered", "delivered", "cancelled"}

func (s OrderStatus) String() string { return enumName(orderStatusNames, int(s)) }

func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "発注待ち"
	case OrderOrdered:
		return "発注済み"
	case OrderDelivered:
		return "納品済み"
	case OrderCancelled:
		return "キャンセル"
	default:
		return "Unknown"
	}
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	if s == "" {
		return OrderPending, nil
	}
	return parseEnum[OrderStatus]("order status", orderStatusNames, s)
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// OrderLine is one part on a purchase order.
type OrderLine struct {
	PartID    string          `json:"partId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Amount is quantity times unit price.
func (l OrderLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a purchase order to a single supplier.
type Order struct {
	ID                   string          `json:"id,omitempty"`
	OrderNumber          string          `json:"orderNumber"`
	Supplier             string          `json:"supplier"`
	Items                []OrderLine     `json:"parts"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	OrderDate            time.Time       `json:"orderDate"`
	ExpectedDeliveryDate time.Time       `json:"expectedDeliveryDate"`
	Status               OrderStatus     `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// NewOrder creates a pending order. The expected delivery date is the order
// date plus maxLeadTime days.
func NewOrder(supplier string, lines []OrderLine, maxLeadTime int, now time.Time, rng RandSource) (*Order, error) {
	if supplier == "" {
		return nil, fmt.Errorf("supplier cannot be empty")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("order must contain at least one line")
	}
	if maxLeadTime < 0 {
		return nil, fmt.Errorf("lead time cannot be negative, got %d", maxLeadTime)
	}
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("order line %s: quantity must be at least 1, got %d", line.PartID, line.Quantity)
		}
		total = total.Add(line.Amount())
	}
	return &Order{
		OrderNumber:          GenerateOrderNumber(now, rng),
		Supplier:             supplier,
		Items:                lines,
		TotalAmount:          total,
		OrderDate:            now,
		ExpectedDeliveryDate: now.AddDate(0, 0, maxLeadTime),
		Status:               OrderPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func (o *Order) SetID(id string) { o.ID = id }

// Snapshot returns a copy that shares no memory with o.
func (o *Order) Snapshot() Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return c
}

// OrderStatusUpdate is the store patch for a status change.
type OrderStatusUpdate struct {
	Status    OrderStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
