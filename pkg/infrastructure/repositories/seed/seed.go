package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DateLayout is the date format used in fixture files.
const DateLayout = "2006-01-02"

// Fixture is a YAML document of master data. Parts are referenced by part
// number and BOMs by name.
type Fixture struct {
	Parts     []Part      `yaml:"parts"`
	Inventory []Inventory `yaml:"inventory"`
	BOMs      []BOM       `yaml:"boms"`
	Quotes    []Quote     `yaml:"quotes"`
}

type Part struct {
	PartNumber    string `yaml:"partNumber"`
	Name          string `yaml:"name"`
	Category      string `yaml:"category,omitempty"`
	Manufacturer  string `yaml:"manufacturer,omitempty"`
	ListPrice     string `yaml:"listPrice,omitempty"`
	PurchasePrice string `yaml:"purchasePrice,omitempty"`
	Supplier      string `yaml:"supplier,omitempty"`
	LeadTime      int    `yaml:"leadTime,omitempty"`
}

type Inventory struct {
	PartNumber   string `yaml:"partNumber"`
	CurrentStock int    `yaml:"currentStock"`
	MinStock     int    `yaml:"minStock"`
	ReorderPoint int    `yaml:"reorderPoint"`
}

type BOMItem struct {
	PartNumber     string `yaml:"partNumber"`
	Quantity       int    `yaml:"quantity"`
	UsageTiming    string `yaml:"usageTiming,omitempty"`
	DaysAfterStart int    `yaml:"daysAfterStart,omitempty"`
}

type BOM struct {
	Name        string    `yaml:"name"`
	ProductName string    `yaml:"productName,omitempty"`
	Version     string    `yaml:"version,omitempty"`
	Items       []BOMItem `yaml:"items"`
}

type Quote struct {
	CustomerName           string `yaml:"customerName"`
	ProductName            string `yaml:"productName"`
	Quantity               int    `yaml:"quantity"`
	ManufacturingStartDate string `yaml:"manufacturingStartDate,omitempty"`
	DeliveryDate           string `yaml:"deliveryDate"`
	BOM                    string `yaml:"bom,omitempty"`
	Notes                  string `yaml:"notes,omitempty"`
}

// Price parses a price cell. The empty string is zero.
func Price(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}

// Date parses a YYYY-MM-DD date in loc. The empty string is the zero time.
func Date(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	fixture, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fixture, nil
}

// Parse decodes and checks a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

// Validate checks that part numbers and BOM names are unique and that every
// reference resolves within the fixture.
func (f *Fixture) Validate() error {
	var problems []string
	parts := make(map[string]bool, len(f.Parts))
	for i, p := range f.Parts {
		switch {
		case strings.TrimSpace(p.PartNumber) == "":
			problems = append(problems, fmt.Sprintf("parts[%d]: partNumber is required", i))
		case parts[p.PartNumber]:
			problems = append(problems, fmt.Sprintf("parts[%d]: duplicate partNumber %s", i, p.PartNumber))
		}
		parts[p.PartNumber] = true
		if _, err := Price(p.ListPrice); err != nil {
			problems = append(problems, fmt.Sprintf("parts[%d]: %v", i, err))
		}
		if _, err := Price(p.PurchasePrice); err != nil {
			problems = append(problems, fmt.Sprintf("parts[%d]: %v", i, err))
		}
	}

	for i, inv := range f.Inventory {
		if !parts[inv.PartNumber] {
			problems = append(problems, fmt.Sprintf("inventory[%d]: unknown part %s", i, inv.PartNumber))
		}
	}

	boms := make(map[string]bool, len(f.BOMs))
	for i, b := range f.BOMs {
		if boms[b.Name] {
			problems = append(problems, fmt.Sprintf("boms[%d]: duplicate name %s", i, b.Name))
		}
		boms[b.Name] = true
		for j, item := range b.Items {
			if !parts[item.PartNumber] {
				problems = append(problems, fmt.Sprintf("boms[%d].items[%d]: unknown part %s", i, j, item.PartNumber))
			}
		}
	}

	for i, q := range f.Quotes {
		if q.BOM != "" && !boms[q.BOM] {
			problems = append(problems, fmt.Sprintf("quotes[%d]: unknown bom %s", i, q.BOM))
		}
		if _, err := Date(q.DeliveryDate, time.UTC); err != nil {
			problems = append(problems, fmt.Sprintf("quotes[%d]: %v", i, err))
		}
		if _, err := Date(q.ManufacturingStartDate, time.UTC); err != nil {
			problems = append(problems, fmt.Sprintf("quotes[%d]: %v", i, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid seed: %s", strings.Join(problems, "; "))
	}
	return nil
}
