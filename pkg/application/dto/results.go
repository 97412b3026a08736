package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

// BOMTree is the display model of one BOM
type BOMTree struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	ProductName string          `json:"productName"`
	Version     string          `json:"version"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	Items       []BOMTreeItem   `json:"items"`
}

// BOMTreeItem is one resolvable item of a BOM
type BOMTreeItem struct {
	PartID      string          `json:"partId"`
	PartNumber  string          `json:"partNumber"`
	PartName    string          `json:"partName"`
	Quantity    int             `json:"quantity"`
	TimingLabel string          `json:"timing"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// OrderPlan groups proposed purchase lines by supplier for confirmation
type OrderPlan struct {
	Suppliers  []SupplierProposal `json:"suppliers"`
	GrandTotal decimal.Decimal    `json:"grandTotal"`
}

// Empty reports whether nothing would be ordered.
func (p *OrderPlan) Empty() bool {
	return len(p.Suppliers) == 0
}

// SupplierProposal is the proposed order for one supplier
type SupplierProposal struct {
	Supplier    string          `json:"supplier"`
	Lines       []ProposalLine  `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	MaxLeadTime int             `json:"maxLeadTime"`
}

// ProposalLine is one part in a supplier proposal
type ProposalLine struct {
	PartID       string          `json:"partId"`
	PartNumber   string          `json:"partNumber"`
	PartName     string          `json:"partName"`
	CurrentStock int             `json:"currentStock"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	LeadTime     int             `json:"leadTime"`
}

// Shortage is a part whose stock does not cover a quote's requirement
type Shortage struct {
	PartID     string `json:"partId"`
	PartNumber string `json:"partNumber"`
	PartName   string `json:"partName"`
	Required   int    `json:"required"`
	Available  int    `json:"available"`
}

// Missing is the uncovered quantity.
func (s Shortage) Missing() int {
	return s.Required - s.Available
}

// ImportResult counts the outcome of a bulk import
type ImportResult struct {
	Kind     string `json:"kind"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Errored  int    `json:"errored"`
}

// DashboardSummary is the headline view of the system
type DashboardSummary struct {
	PartCount          int             `json:"partCount"`
	AlertCount         int             `json:"alertCount"`
	QuoteCount         int             `json:"quoteCount"`
	MonthlyOrderAmount decimal.Decimal `json:"monthlyOrderAmount"`
	RecentActivities   []Activity      `json:"recentActivities"`
}

// ActivityKind distinguishes dashboard activity rows
type ActivityKind string

const (
	ActivityOrder ActivityKind = "order"
	ActivityQuote ActivityKind = "quote"
)

// Activity is one recent order or quote
type Activity struct {
	Kind        ActivityKind    `json:"kind"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Time        time.Time       `json:"time"`
}

// ScheduleView is a production schedule with its materials resolved to parts
type ScheduleView struct {
	QuoteNumber string                       `json:"quoteNumber"`
	ProductName string                       `json:"productName"`
	Quantity    int                          `json:"quantity"`
	Schedule    *entities.ProductionSchedule `json:"schedule"`
	Materials   []MaterialRow                `json:"materials"`
}

// MaterialRow is one material requirement joined with its part
type MaterialRow struct {
	PartNumber   string    `json:"partNumber"`
	PartName     string    `json:"partName"`
	Quantity     int       `json:"quantity"`
	RequiredDate time.Time `json:"requiredDate"`
	OrderByDate  time.Time `json:"orderByDate"`
	Timing       string    `json:"timing"`
	OrderStatus  string    `json:"orderStatus"`
}

// SeedResult counts the documents written by a fixture load.
type SeedResult struct {
	Parts     int `json:"parts"`
	Inventory int `json:"inventory"`
	BOMs      int `json:"boms"`
	Quotes    int `json:"quotes"`
}
