package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/inventory"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

const dateLayout = "2006/01/02"

// Format selects how results are printed.
type Format int

const (
	Text Format = iota
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "text"
}

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("unsupported output format: %s", s)
	}
}

// Printer renders results as text tables or indented JSON.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

func (p *Printer) Format() Format { return p.format }

// JSON writes v as indented JSON regardless of the printer format.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func (p *Printer) render(v any, text func()) error {
	if p.format == JSON {
		return p.JSON(v)
	}
	text()
	return nil
}

type column struct {
	title string
	width int
}

func (p *Printer) table(columns []column, rows [][]string) {
	var head, rule strings.Builder
	for _, c := range columns {
		fmt.Fprintf(&head, "%-*s ", c.width, c.title)
		fmt.Fprintf(&rule, "%s ", strings.Repeat("-", c.width))
	}
	fmt.Fprintln(p.w, strings.TrimRight(head.String(), " "))
	fmt.Fprintln(p.w, strings.TrimRight(rule.String(), " "))
	for _, row := range rows {
		var line strings.Builder
		for i, c := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprintf(&line, "%-*s ", c.width, cell)
		}
		fmt.Fprintln(p.w, strings.TrimRight(line.String(), " "))
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) Parts(parts []*entities.Part) error {
	return p.render(parts, func() {
		fmt.Fprintf(p.w, "🔩 Parts (%d)\n", len(parts))
		rows := make([][]string, 0, len(parts))
		for _, part := range parts {
			rows = append(rows, []string{
				part.PartNumber, part.Name, part.Category.Label(),
				entities.FormatYen(part.PurchasePrice), part.Supplier, strconv.Itoa(part.LeadTime),
			})
		}
		p.table([]column{
			{"Part Number", 15}, {"Name", 24}, {"Category", 10},
			{"Price", 12}, {"Supplier", 15}, {"Lead", 5},
		}, rows)
	})
}

func (p *Printer) Inventory(rows []inventory.Row) error {
	return p.render(rows, func() {
		fmt.Fprintf(p.w, "📦 Inventory (%d)\n", len(rows))
		lines := make([][]string, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, []string{
				r.Part.PartNumber, r.Part.Name,
				strconv.Itoa(r.Record.CurrentStock), strconv.Itoa(r.Record.MinStock),
				strconv.Itoa(r.Record.ReorderPoint), r.Record.Status.Label(),
				r.Record.LastUpdated.Format(dateLayout),
			})
		}
		p.table([]column{
			{"Part Number", 15}, {"Name", 24}, {"Stock", 8}, {"Min", 8},
			{"Reorder", 8}, {"Status", 10}, {"Updated", 10},
		}, lines)
	})
}

func (p *Printer) BOMs(boms []dto.BOMTree) error {
	return p.render(boms, func() {
		fmt.Fprintf(p.w, "🧾 BOMs (%d)\n\n", len(boms))
		for _, b := range boms {
			fmt.Fprintf(p.w, "%s (%s) v%s  %s  %d items\n",
				b.Name, b.ProductName, b.Version, entities.FormatYen(b.TotalCost), b.ItemCount)
			for _, item := range b.Items {
				fmt.Fprintf(p.w, "  ├─ %-15s %-24s x%-5d %-16s %s\n",
					item.PartNumber, item.PartName, item.Quantity, item.TimingLabel, entities.FormatYen(item.Subtotal))
			}
			fmt.Fprintln(p.w)
		}
	})
}

func (p *Printer) Quotes(quotes []*entities.Quote) error {
	return p.render(quotes, func() {
		fmt.Fprintf(p.w, "💴 Quotes (%d)\n", len(quotes))
		rows := make([][]string, 0, len(quotes))
		for _, q := range quotes {
			start := ""
			if !q.ManufacturingStartDate.IsZero() {
				start = q.ManufacturingStartDate.Format(dateLayout)
			}
			rows = append(rows, []string{
				q.QuoteNumber, q.CustomerName, q.ProductName, strconv.Itoa(q.Quantity),
				start, q.DeliveryDate.Format(dateLayout), entities.FormatYen(q.TotalAmount), q.Status.Label(),
			})
		}
		p.table([]column{
			{"Quote", 20}, {"Customer", 18}, {"Product", 18}, {"Qty", 5},
			{"Start", 10}, {"Delivery", 10}, {"Total", 12}, {"Status", 8},
		}, rows)
	})
}

func (p *Printer) OrderPlan(plan *dto.OrderPlan) error {
	return p.render(plan, func() {
		fmt.Fprintf(p.w, "📋 Order Plan: %d suppliers, total %s\n\n", len(plan.Suppliers), entities.FormatYen(plan.GrandTotal))
		for _, s := range plan.Suppliers {
			fmt.Fprintf(p.w, "%s  %s  (max lead time %d days)\n", s.Supplier, entities.FormatYen(s.Subtotal), s.MaxLeadTime)
			rows := make([][]string, 0, len(s.Lines))
			for _, l := range s.Lines {
				rows = append(rows, []string{
					l.PartNumber, l.PartName, strconv.Itoa(l.CurrentStock), strconv.Itoa(l.Quantity),
					entities.FormatYen(l.UnitPrice), entities.FormatYen(l.LineTotal),
				})
			}
			p.table([]column{
				{"Part Number", 15}, {"Name", 24}, {"Stock", 6}, {"Order", 6}, {"Unit", 10}, {"Total", 12},
			}, rows)
		}
	})
}

func (p *Printer) Orders(orders []*entities.Order) error {
	return p.render(orders, func() {
		fmt.Fprintf(p.w, "🚚 Orders (%d)\n", len(orders))
		rows := make([][]string, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, []string{
				o.OrderNumber, o.Supplier, strconv.Itoa(len(o.Items)), entities.FormatYen(o.TotalAmount),
				o.OrderDate.Format(dateLayout), o.ExpectedDeliveryDate.Format(dateLayout), o.Status.Label(),
			})
		}
		p.table([]column{
			{"Order", 20}, {"Supplier", 15}, {"Lines", 5}, {"Total", 12},
			{"Ordered", 10}, {"Expected", 10}, {"Status", 8},
		}, rows)
	})
}

func (p *Printer) Schedule(view *dto.ScheduleView) error {
	return p.render(view, func() {
		fmt.Fprintf(p.w, "🏭 Production Schedule %s: %s x%d\n", view.QuoteNumber, view.ProductName, view.Quantity)
		fmt.Fprintf(p.w, "%s → %s (%d days)\n\n",
			view.Schedule.StartDate.Format(dateLayout), view.Schedule.EndDate.Format(dateLayout), view.Schedule.TotalDays())

		milestones := make([][]string, 0, len(view.Schedule.Milestones))
		for _, m := range view.Schedule.Milestones {
			milestones = append(milestones, []string{m.Date.Format(dateLayout), m.Name, m.Status.Label()})
		}
		p.table([]column{{"Date", 10}, {"Milestone", 20}, {"Status", 6}}, milestones)

		materials := make([][]string, 0, len(view.Materials))
		for _, m := range view.Materials {
			materials = append(materials, []string{
				m.PartNumber, m.PartName, strconv.Itoa(m.Quantity),
				m.OrderByDate.Format(dateLayout), m.RequiredDate.Format(dateLayout), m.Timing, m.OrderStatus,
			})
		}
		p.table([]column{
			{"Part Number", 15}, {"Name", 24}, {"Qty", 6}, {"Order By", 10},
			{"Required", 10}, {"Timing", 16}, {"Order", 8},
		}, materials)
	})
}

func (p *Printer) ImportResult(result *dto.ImportResult) error {
	return p.render(result, func() {
		fmt.Fprintf(p.w, "📥 Import %s: %d imported, %d skipped, %d errored\n",
			result.Kind, result.Imported, result.Skipped, result.Errored)
	})
}

func (p *Printer) Seed(result *dto.SeedResult) error {
	return p.render(result, func() {
		fmt.Fprintf(p.w, "🌱 Seeded %d parts, %d inventory records, %d BOMs, %d quotes\n",
			result.Parts, result.Inventory, result.BOMs, result.Quotes)
	})
}

func (p *Printer) Dashboard(summary *dto.DashboardSummary) error {
	return p.render(summary, func() {
		fmt.Fprintf(p.w, "📊 Dashboard\n")
		fmt.Fprintf(p.w, "==========\n\n")
		fmt.Fprintf(p.w, "Parts: %d\n", summary.PartCount)
		fmt.Fprintf(p.w, "Stock alerts: %d\n", summary.AlertCount)
		fmt.Fprintf(p.w, "Quotes: %d\n", summary.QuoteCount)
		fmt.Fprintf(p.w, "Orders this month: %s\n\n", entities.FormatYen(summary.MonthlyOrderAmount))
		for _, a := range summary.RecentActivities {
			fmt.Fprintf(p.w, "%s  %s  %s\n", a.Time.Format("2006/01/02 15:04"), a.Title, entities.FormatYen(a.Amount))
		}
	})
}

// Message prints a line in text mode and nothing in JSON mode.
func (p *Printer) Message(format string, args ...any) {
	if p.format == Text {
		fmt.Fprintf(p.w, format+"\n", args...)
	}
}
