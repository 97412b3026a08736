package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus tracks a quote through the sales cycle.
type QuoteStatus int

const (
	QuoteDraft QuoteStatus = iota
	QuoteSent
	QuoteAccepted
	QuoteRejected
)

var quoteStatusNames = []string{"draft", "sent", "accepted", "rejected"}

func (s QuoteStatus) String() string { return enumName(quoteStatusNames, int(s)) }

func (s QuoteStatus) Label() string {
	switch s {
	case QuoteDraft:
		return "下書き"
	case QuoteSent:
		return "送信済み"
	case QuoteAccepted:
		return "受注"
	case QuoteRejected:
		return "失注"
	default:
		return "Unknown"
	}
}

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	if s == "" {
		return QuoteDraft, nil
	}
	return parseEnum[QuoteStatus]("quote status", quoteStatusNames, s)
}

func (s QuoteStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *QuoteStatus) UnmarshalText(b []byte) error {
	v, err := ParseQuoteStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Quote is a customer quotation, optionally priced from a BOM.
type Quote struct {
	ID                     string          `json:"id,omitempty"`
	QuoteNumber            string          `json:"quoteNumber"`
	CustomerName           string          `json:"customerName"`
	ProductName            string          `json:"productName"`
	Quantity               int             `json:"quantity"`
	ManufacturingStartDate time.Time       `json:"manufacturingStartDate,omitzero"`
	DeliveryDate           time.Time       `json:"deliveryDate"`
	BOMID                  string          `json:"bomId,omitempty"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	Status                 QuoteStatus     `json:"status"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// NewQuote creates a draft quote with a fresh quote number.
func NewQuote(customer, product string, quantity int, delivery time.Time, now time.Time, rng RandSource) (*Quote, error) {
	if customer == "" {
		return nil, fmt.Errorf("customer name cannot be empty")
	}
	if product == "" {
		return nil, fmt.Errorf("product name cannot be empty")
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if delivery.IsZero() {
		return nil, fmt.Errorf("delivery date cannot be empty")
	}
	return &Quote{
		QuoteNumber:  GenerateQuoteNumber(now, rng),
		CustomerName: customer,
		ProductName:  product,
		Quantity:     quantity,
		DeliveryDate: delivery,
		TotalAmount:  decimal.Zero,
		Status:       QuoteDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (q *Quote) SetID(id string) { q.ID = id }

// Schedulable reports whether a production schedule can be derived.
func (q *Quote) Schedulable() bool {
	return q.BOMID != "" && !q.ManufacturingStartDate.IsZero() && !q.DeliveryDate.IsZero()
}

// QuoteUpdate is the store patch for an edited quote. The quote number is kept.
type QuoteUpdate struct {
	CustomerName           string          `json:"customerName"`
	ProductName            string          `json:"productName"`
	Quantity               int             `json:"quantity"`
	ManufacturingStartDate time.Time       `json:"manufacturingStartDate"`
	DeliveryDate           time.Time       `json:"deliveryDate"`
	BOMID                  string          `json:"bomId"`
	TotalAmount            decimal.Decimal `json:"totalAmount"`
	Notes                  string          `json:"notes"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

func (q *Quote) Patch() QuoteUpdate {
	return QuoteUpdate{
		CustomerName:           q.CustomerName,
		ProductName:            q.ProductName,
		Quantity:               q.Quantity,
		ManufacturingStartDate: q.ManufacturingStartDate,
		DeliveryDate:           q.DeliveryDate,
		BOMID:                  q.BOMID,
		TotalAmount:            q.TotalAmount,
		Notes:                  q.Notes,
		UpdatedAt:              q.UpdatedAt,
	}
}

// QuoteStatusUpdate is the store patch for a status change.
type QuoteStatusUpdate struct {
	Status    QuoteStatus `json:"status"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
