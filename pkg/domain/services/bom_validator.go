package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vsinha/bomkit/pkg/domain/entities"
)

// ItemRow is one BOM item as entered, before parsing.
type ItemRow struct {
	PartID         string `json:"partId"`
	Quantity       string `json:"quantity"`
	UsageTiming    string `json:"usageTiming"`
	DaysAfterStart string `json:"daysAfterStart"`
}

// BOMValidator turns entered item rows into BOM items
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// ValidationResult contains the parsed items and any row problems
type ValidationResult struct {
	Items []entities.BOMItem
	// DuplicateRows are 1-indexed rows repeating an earlier row's part. They
	// are kept and only reported.
	DuplicateRows []int
	Errors        *entities.ValidationErrors
}

// Valid reports whether the rows may be saved.
func (r *ValidationResult) Valid() bool {
	return !r.Errors.HasErrors()
}

// ValidateItemRows parses rows in order. Rows with neither part nor quantity
// are ignored; every other problem is reported against its 1-indexed row.
func (v *BOMValidator) ValidateItemRows(rows []ItemRow) *ValidationResult {
	result := &ValidationResult{
		Items:  make([]entities.BOMItem, 0, len(rows)),
		Errors: &entities.ValidationErrors{},
	}
	seen := make(map[string]bool, len(rows))

	for i, row := range rows {
		line := i + 1
		field := fmt.Sprintf("items[%d]", i)
		partID := strings.TrimSpace(row.PartID)
		quantityText := strings.TrimSpace(row.Quantity)

		if partID == "" && quantityText == "" {
			continue
		}
		if partID == "" || quantityText == "" {
			result.Errors.Addf(field, "行%d: 部品と数量の両方を入力してください", line)
			continue
		}

		quantity, err := strconv.Atoi(quantityText)
		if err != nil || quantity <= 0 {
			result.Errors.Addf(field, "行%d: 数量は1以上である必要があります", line)
			continue
		}

		timing, err := entities.ParseUsageTiming(strings.TrimSpace(row.UsageTiming))
		if err != nil {
			result.Errors.Addf(field, "行%d: 使用タイミングが正しくありません", line)
			continue
		}

		days := 0
		if timing == entities.DaysAfterStart {
			daysText := strings.TrimSpace(row.DaysAfterStart)
			days, err = strconv.Atoi(daysText)
			if daysText == "" || err != nil || days < 0 {
				result.Errors.Addf(field, "行%d: 製造開始後の日数を正しく入力してください", line)
				continue
			}
		}

		item, err := entities.NewBOMItem(partID, quantity, timing, days)
		if err != nil {
			result.Errors.Addf(field, "行%d: %v", line, err)
			continue
		}
		if seen[partID] {
			result.DuplicateRows = append(result.DuplicateRows, line)
		}
		seen[partID] = true
		result.Items = append(result.Items, *item)
	}

	if !result.Errors.HasErrors() && len(result.Items) == 0 {
		result.Errors.Add("items", "BOMには少なくとも1つの部品が必要です")
	}
	return result
}

// RowsFromItems renders stored items back into editable rows.
func RowsFromItems(items []entities.BOMItem) []ItemRow {
	rows := make([]ItemRow, 0, len(items))
	for _, item := range items {
		row := ItemRow{
			PartID:      item.PartID,
			Quantity:    strconv.Itoa(item.Quantity),
			UsageTiming: item.UsageTiming.String(),
		}
		if item.UsageTiming == entities.DaysAfterStart {
			row.DaysAfterStart = strconv.Itoa(item.DaysAfterStart)
		}
		rows = append(rows, row)
	}
	return rows
}
