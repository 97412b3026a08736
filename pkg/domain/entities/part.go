package entities

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxPartNumberLength = 50
	MaxNameLength       = 100
)

// Category classifies a part.
type Category int

const (
	Electronic Category = iota
	Mechanical
	Material
)

var categoryNames = []string{"electronic", "mechanical", "material"}

func (c Category) String() string { return enumName(categoryNames, int(c)) }

// Label returns the display label for the category.
func (c Category) Label() string {
	switch c {
	case Electronic:
		return "電子部品"
	case Mechanical:
		return "機械部品"
	case Material:
		return "材料"
	default:
		return "Unknown"
	}
}

// ParseCategory parses a wire name. The empty string yields Electronic.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return Electronic, nil
	}
	return parseEnum[Category]("category", categoryNames, s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Part is a purchasable component in the part master.
type Part struct {
	ID            string          `json:"id,omitempty"`
	PartNumber    string          `json:"partNumber"`
	Name          string          `json:"name"`
	Category      Category        `json:"category"`
	Manufacturer  string          `json:"manufacturer"`
	ListPrice     decimal.Decimal `json:"listPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Supplier      string          `json:"supplier"`
	LeadTime      int             `json:"leadTime"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// NewPart creates a validated part with zero prices and lead time.
func NewPart(partNumber, name string, category Category, now time.Time) (*Part, error) {
	p := &Part{
		PartNumber: strings.TrimSpace(partNumber),
		Name:       strings.TrimSpace(name),
		Category:   category,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Part) SetID(id string) { p.ID = id }

// Validate checks field rules. Part number uniqueness needs the full part list
// and is checked by the caller.
func (p *Part) Validate() error {
	v := &ValidationErrors{}
	switch {
	case p.PartNumber == "":
		v.Add("partNumber", RequiredMessage("品番"))
	case utf8.RuneCountInString(p.PartNumber) > MaxPartNumberLength:
		v.Add("partNumber", MaxLengthMessage("品番", MaxPartNumberLength))
	}
	switch {
	case p.Name == "":
		v.Add("name", RequiredMessage("部品名"))
	case utf8.RuneCountInString(p.Name) > MaxNameLength:
		v.Add("name", MaxLengthMessage("部品名", MaxNameLength))
	}
	if p.Category < Electronic || p.Category > Material {
		v.Add("category", fmt.Sprintf("invalid category %d", int(p.Category)))
	}
	if p.ListPrice.IsNegative() {
		v.Add("listPrice", MinMessage("定価", 0))
	}
	if p.PurchasePrice.IsNegative() {
		v.Add("purchasePrice", MinMessage("仕入れ値", 0))
	}
	if p.LeadTime < 0 {
		v.Add("leadTime", MinMessage("リードタイム", 0))
	}
	return v.Err()
}

// PartUpdate is the store patch for an edited part.
type PartUpdate struct {
	PartNumber    string          `json:"partNumber"`
	Name          string          `json:"name"`
	Category      Category        `json:"category"`
	Manufacturer  string          `json:"manufacturer"`
	ListPrice     decimal.Decimal `json:"listPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Supplier      string          `json:"supplier"`
	LeadTime      int             `json:"leadTime"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Patch returns the mutable fields of p as a store patch.
func (p *Part) Patch() PartUpdate {
	return PartUpdate{
		PartNumber:    p.PartNumber,
		Name:          p.Name,
		Category:      p.Category,
		Manufacturer:  p.Manufacturer,
		ListPrice:     p.ListPrice,
		PurchasePrice: p.PurchasePrice,
		Supplier:      p.Supplier,
		LeadTime:      p.LeadTime,
		UpdatedAt:     p.UpdatedAt,
	}
}
