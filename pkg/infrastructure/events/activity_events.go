package events

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

const (
	PartSavedEvent   = "part.saved"
	PartDeletedEvent = "part.deleted"

	BOMSavedEvent   = "bom.saved"
	BOMDeletedEvent = "bom.deleted"

	InventorySavedEvent       = "inventory.saved"
	InventoryConsumedEvent    = "inventory.consumed"
	InventoryReplenishedEvent = "inventory.replenished"
	InventoryReconciledEvent  = "inventory.reconciled"

	QuoteSavedEvent         = "quote.saved"
	QuoteStatusChangedEvent = "quote.status_changed"
	QuoteDeletedEvent       = "quote.deleted"

	OrdersConfirmedEvent    = "orders.confirmed"
	OrderStatusChangedEvent = "order.status_changed"
	OrderDeletedEvent       = "order.deleted"

	ImportCompletedEvent = "import.completed"
)

// Stream names group events by aggregate type.
const (
	PartsStream     = "parts"
	BOMsStream      = "boms"
	InventoryStream = "inventory"
	QuotesStream    = "quotes"
	OrdersStream    = "orders"
	ImportStream    = "import"
)

type PartSaved struct {
	PartID     string `json:"part_id"`
	PartNumber string `json:"part_number"`
	Created    bool   `json:"created"`
}

type BOMSaved struct {
	BOMID     string          `json:"bom_id"`
	Name      string          `json:"name"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Created   bool            `json:"created"`
}

type StockChanged struct {
	PartID       string               `json:"part_id"`
	Quantity     int                  `json:"quantity"`
	CurrentStock int                  `json:"current_stock"`
	Status       entities.StockStatus `json:"status"`
}

type InventoryReconciled struct {
	Checked int `json:"checked"`
	Written int `json:"written"`
}

type QuoteSaved struct {
	QuoteID     string          `json:"quote_id"`
	QuoteNumber string          `json:"quote_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Created     bool            `json:"created"`
}

type StatusChanged struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Deleted struct {
	ID string `json:"id"`
}

// OrdersConfirmed carries copies of the created orders; later status changes
// do not reach it.
type OrdersConfirmed struct {
	Orders      []entities.Order `json:"orders"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

type ImportCompleted struct {
	Kind     string `json:"kind"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Errored  int    `json:"errored"`
}
