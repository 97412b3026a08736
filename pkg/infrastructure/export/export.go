package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/xuri/excelize/v2"
)

// DateLayout formats dates inside exported tables.
const DateLayout = "2006/01/02"

// Format is an export file format.
type Format int

const (
	CSV Format = iota
	XLSX
)

func (f Format) String() string {
	if f == XLSX {
		return "xlsx"
	}
	return "csv"
}

// Extension is the file extension without the dot.
func (f Format) Extension() string { return f.String() }

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	default:
		return CSV, fmt.Errorf("unknown export format %q", s)
	}
}

// Table is a sheet of string cells with a header row.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// FileName is "<name>_YYYYMMDD.<ext>".
func (t *Table) FileName(format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", t.Name, now.Format("20060102"), format.Extension())
}

// Write renders t in the given format.
func (t *Table) Write(w io.Writer, format Format) error {
	if format == XLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

// PartLookup resolves a part by id.
type PartLookup interface {
	Part(id string) (*entities.Part, bool)
}

// PartsTable lists the part master.
func PartsTable(parts []*entities.Part) *Table {
	t := &Table{
		Name:    "parts",
		Headers: []string{"品番", "部品名", "カテゴリ", "メーカー", "定価", "仕入れ値", "発注先", "リードタイム"},
		Rows:    make([][]string, 0, len(parts)),
	}
	for _, p := range parts {
		t.Rows = append(t.Rows, []string{
			p.PartNumber,
			p.Name,
			p.Category.String(),
			p.Manufacturer,
			p.ListPrice.String(),
			p.PurchasePrice.String(),
			p.Supplier,
			strconv.Itoa(p.LeadTime),
		})
	}
	return t
}

// InventoryTable lists inventory records. Records whose part is missing keep
// empty part columns.
func InventoryTable(records []*entities.InventoryRecord, parts PartLookup) *Table {
	t := &Table{
		Name:    "inventory",
		Headers: []string{"品番", "部品名", "現在庫数", "最小在庫数", "発注点", "ステータス", "最終更新日"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		var number, name string
		if p, ok := parts.Part(r.PartID); ok {
			number, name = p.PartNumber, p.Name
		}
		t.Rows = append(t.Rows, []string{
			number,
			name,
			strconv.Itoa(r.CurrentStock),
			strconv.Itoa(r.MinStock),
			strconv.Itoa(r.ReorderPoint),
			r.Status.Label(),
			r.LastUpdated.Format(DateLayout),
		})
	}
	return t
}

// OrdersTable lists purchase orders.
func OrdersTable(orders []*entities.Order) *Table {
	t := &Table{
		Name:    "orders",
		Headers: []string{"発注番号", "発注先", "品目数", "発注金額", "発注日", "納期予定", "ステータス"},
		Rows:    make([][]string, 0, len(orders)),
	}
	for _, o := range orders {
		t.Rows = append(t.Rows, []string{
			o.OrderNumber,
			o.Supplier,
			strconv.Itoa(len(o.Items)),
			o.TotalAmount.String(),
			o.OrderDate.Format(DateLayout),
			o.ExpectedDeliveryDate.Format(DateLayout),
			o.Status.Label(),
		})
	}
	return t
}

// WriteCSV writes the header row and every data row. Fields containing a
// comma, quote or newline are quoted.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes t as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header %s: %w", cell, err)
		}
	}
	for r, row := range t.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	if len(t.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(t.Headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 15); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
