package entities

import (
	"fmt"
	"time"
)

// StockStatus is derived from current stock and reorder point.
type StockStatus int

const (
	StockNormal StockStatus = iota
	StockLow
	StockOut
)

var stockStatusNames = []string{"normal", "low", "out"}

func (s StockStatus) String() string { return enumName(stockStatusNames, int(s)) }

// Label returns the display label for the status.
func (s StockStatus) Label() string {
	switch s {
	case StockNormal:
		return "正常"
	case StockLow:
		return "在庫不足"
	case StockOut:
		return "在庫切れ"
	default:
		return "Unknown"
	}
}

// NeedsReorder reports whether the status is low or out.
func (s StockStatus) NeedsReorder() bool { return s == StockLow || s == StockOut }

func ParseStockStatus(s string) (StockStatus, error) {
	return parseEnum[StockStatus]("stock status", stockStatusNames, s)
}

func (s StockStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *StockStatus) UnmarshalText(b []byte) error {
	v, err := ParseStockStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CalculateStatus derives the stock status. A stock equal to the reorder point
// is low.
func CalculateStatus(currentStock, reorderPoint int) StockStatus {
	switch {
	case currentStock <= 0:
		return StockOut
	case currentStock <= reorderPoint:
		return StockLow
	default:
		return StockNormal
	}
}

// InventoryRecord tracks stock for exactly one part.
type InventoryRecord struct {
	ID           string      `json:"id,omitempty"`
	PartID       string      `json:"partId"`
	CurrentStock int         `json:"currentStock"`
	MinStock     int         `json:"minStock"`
	ReorderPoint int         `json:"reorderPoint"`
	Status       StockStatus `json:"status"`
	LastUpdated  time.Time   `json:"lastUpdated"`
}

// NewInventoryRecord creates a record with its status derived.
func NewInventoryRecord(partID string, currentStock, minStock, reorderPoint int, now time.Time) (*InventoryRecord, error) {
	if partID == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if currentStock < 0 {
		return nil, fmt.Errorf("current stock cannot be negative, got %d", currentStock)
	}
	if minStock < 0 {
		return nil, fmt.Errorf("min stock cannot be negative, got %d", minStock)
	}
	if reorderPoint < 0 {
		return nil, fmt.Errorf("reorder point cannot be negative, got %d", reorderPoint)
	}
	return &InventoryRecord{
		PartID:       partID,
		CurrentStock: currentStock,
		MinStock:     minStock,
		ReorderPoint: reorderPoint,
		Status:       CalculateStatus(currentStock, reorderPoint),
		LastUpdated:  now,
	}, nil
}

func (r *InventoryRecord) SetID(id string) { r.ID = id }

// UpdateStock sets the stock and recomputes the status. Callers clamp.
func (r *InventoryRecord) UpdateStock(newStock int, now time.Time) {
	r.CurrentStock = newStock
	r.Status = CalculateStatus(r.CurrentStock, r.ReorderPoint)
	r.LastUpdated = now
}

// UpdateSettings sets the thresholds and recomputes the status.
func (r *InventoryRecord) UpdateSettings(minStock, reorderPoint int, now time.Time) {
	r.MinStock = minStock
	r.ReorderPoint = reorderPoint
	r.Status = CalculateStatus(r.CurrentStock, r.ReorderPoint)
	r.LastUpdated = now
}

// ReorderQuantity is max(reorderPoint - currentStock, minStock).
func (r *InventoryRecord) ReorderQuantity() int {
	return max(r.ReorderPoint-r.CurrentStock, r.MinStock)
}

// InventoryUpdate is the store patch for a stock or settings change.
type InventoryUpdate struct {
	CurrentStock int         `json:"currentStock"`
	MinStock     int         `json:"minStock"`
	ReorderPoint int         `json:"reorderPoint"`
	Status       StockStatus `json:"status"`
	LastUpdated  time.Time   `json:"lastUpdated"`
}

// InventoryStatusUpdate is the store patch written by reconciliation.
type InventoryStatusUpdate struct {
	Status StockStatus `json:"status"`
}

func (r *InventoryRecord) Patch() InventoryUpdate {
	return InventoryUpdate{
		CurrentStock: r.CurrentStock,
		MinStock:     r.MinStock,
		ReorderPoint: r.ReorderPoint,
		Status:       r.Status,
		LastUpdated:  r.LastUpdated,
	}
}
