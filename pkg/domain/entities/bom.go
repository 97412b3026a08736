package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBOMVersion is applied when a BOM is saved without a version.
const DefaultBOMVersion = "1.0"

// UsageTiming says when a BOM item is consumed during production.
type UsageTiming int

const (
	AtManufacturing UsageTiming = iota
	AtDelivery
	DaysAfterStart
)

var usageTimingNames = []string{"manufacturing", "delivery", "days_after_start"}

func (u UsageTiming) String() string { return enumName(usageTimingNames, int(u)) }

func ParseUsageTiming(s string) (UsageTiming, error) {
	if s == "" {
		return AtManufacturing, nil
	}
	return parseEnum[UsageTiming]("usage timing", usageTimingNames, s)
}

func (u UsageTiming) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *UsageTiming) UnmarshalText(b []byte) error {
	v, err := ParseUsageTiming(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// BOMItem is one line of a bill of materials.
type BOMItem struct {
	PartID         string      `json:"partId"`
	Quantity       int         `json:"quantity"`
	UsageTiming    UsageTiming `json:"usageTiming"`
	DaysAfterStart int         `json:"daysAfterStart"`
	Level          int         `json:"level"`
	ParentID       string      `json:"parentId,omitempty"`
	Children       []BOMItem   `json:"children,omitempty"`
}

// NewBOMItem creates a top-level item. daysAfterStart is ignored unless the
// timing is DaysAfterStart.
func NewBOMItem(partID string, quantity int, timing UsageTiming, daysAfterStart int) (*BOMItem, error) {
	if partID == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if timing < AtManufacturing || timing > DaysAfterStart {
		return nil, fmt.Errorf("invalid usage timing %d", int(timing))
	}
	item := &BOMItem{PartID: partID, Quantity: quantity, UsageTiming: timing}
	if timing == DaysAfterStart {
		if daysAfterStart < 0 {
			return nil, fmt.Errorf("days after start cannot be negative, got %d", daysAfterStart)
		}
		item.DaysAfterStart = daysAfterStart
	}
	return item, nil
}

// TimingLabel renders the usage timing for display.
func (i BOMItem) TimingLabel() string {
	switch i.UsageTiming {
	case AtManufacturing:
		return "製造開始時"
	case AtDelivery:
		return "納品時"
	case DaysAfterStart:
		return fmt.Sprintf("製造開始%d日後", i.DaysAfterStart)
	default:
		return "Unknown"
	}
}

// RequiredDate resolves when the item must be on hand.
func (i BOMItem) RequiredDate(start, delivery time.Time) time.Time {
	switch i.UsageTiming {
	case AtDelivery:
		return delivery
	case DaysAfterStart:
		return start.AddDate(0, 0, i.DaysAfterStart)
	default:
		return start
	}
}

// BOM is a named, versioned list of items for a product.
type BOM struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	ProductName string          `json:"productName"`
	Version     string          `json:"version"`
	Items       []BOMItem       `json:"items"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewBOM creates a BOM with at least one item. TotalCost is left to the caller.
func NewBOM(name, productName, version string, items []BOMItem, now time.Time) (*BOM, error) {
	if name == "" {
		return nil, fmt.Errorf("bom name cannot be empty")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("bom must contain at least one item")
	}
	if version == "" {
		version = DefaultBOMVersion
	}
	return &BOM{
		Name:        name,
		ProductName: productName,
		Version:     version,
		Items:       items,
		TotalCost:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (b *BOM) SetID(id string) { b.ID = id }

// BOMUpdate is the store patch for an edited BOM.
type BOMUpdate struct {
	Name        string          `json:"name"`
	ProductName string          `json:"productName"`
	Version     string          `json:"version"`
	Items       []BOMItem       `json:"items"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (b *BOM) Patch() BOMUpdate {
	return BOMUpdate{
		Name:        b.Name,
		ProductName: b.ProductName,
		Version:     b.Version,
		Items:       b.Items,
		TotalCost:   b.TotalCost,
		UpdatedAt:   b.UpdatedAt,
	}
}
