package output

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/vsinha/bomkit/pkg/application/dto"
)

// GanttChart lays out a production schedule: one bar per material from its
// order-by date to its required date, plus milestone markers.
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartTime    time.Time
	EndTime      time.Time
}

// GanttBar is a single material bar.
type GanttBar struct {
	Label     string
	Quantity  int
	StartDate time.Time
	DueDate   time.Time
	X         int
	Width     int
	Color     string
}

const (
	colorOnTime  = "#2196F3"
	colorOverdue = "#F44336"
	colorMarker  = "#4CAF50"
)

// NewGanttChart sizes the chart for view. The time range covers the
// schedule and every order-by date, with 10% padding.
func NewGanttChart(view *dto.ScheduleView) *GanttChart {
	rowHeight := 30
	startTime := view.Schedule.StartDate
	endTime := view.Schedule.EndDate
	for _, m := range view.Materials {
		if m.OrderByDate.Before(startTime) {
			startTime = m.OrderByDate
		}
		if m.RequiredDate.After(endTime) {
			endTime = m.RequiredDate
		}
	}

	padding := time.Duration(float64(endTime.Sub(startTime)) * 0.1)
	if padding < 24*time.Hour {
		padding = 24 * time.Hour
	}

	return &GanttChart{
		Width:        1200,
		Height:       (len(view.Materials)+1)*rowHeight + 160,
		MarginLeft:   220,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		StartTime:    startTime.Add(-padding),
		EndTime:      endTime.Add(padding),
	}
}

// GenerateSVG renders view. Bars whose order-by date is before today are red.
func (gc *GanttChart) GenerateSVG(view *dto.ScheduleView, today time.Time) string {
	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height)
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.part-label { font-family: sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.order-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.order-text { font-family: sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style></defs>`)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">製造スケジュール %s - %s</text>`,
		gc.Width/2, html.EscapeString(view.QuoteNumber), html.EscapeString(view.ProductName))

	rows := len(view.Materials) + 1
	gc.drawTimeAxis(&svg)
	gc.drawTimeGrid(&svg, rows)
	gc.drawMilestones(&svg, view)
	for i, bar := range gc.createBars(view, today) {
		gc.drawRow(&svg, bar, gc.MarginTop+(i+1)*gc.RowHeight)
	}
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (gc *GanttChart) xFor(t time.Time) int {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	total := gc.EndTime.Sub(gc.StartTime)
	if total <= 0 {
		return gc.MarginLeft
	}
	return gc.MarginLeft + int(float64(t.Sub(gc.StartTime))/float64(total)*float64(chartWidth))
}

func (gc *GanttChart) createBars(view *dto.ScheduleView, today time.Time) []GanttBar {
	bars := make([]GanttBar, 0, len(view.Materials))
	for _, m := range view.Materials {
		x := gc.xFor(m.OrderByDate)
		width := gc.xFor(m.RequiredDate) - x
		if width < 2 {
			width = 2
		}
		color := colorOnTime
		if m.OrderByDate.Before(today) {
			color = colorOverdue
		}
		bars = append(bars, GanttBar{
			Label:     m.PartNumber,
			Quantity:  m.Quantity,
			StartDate: m.OrderByDate,
			DueDate:   m.RequiredDate,
			X:         x,
			Width:     width,
			Color:     color,
		})
	}
	return bars
}

// interval picks daily, weekly or monthly ticks for the range.
func (gc *GanttChart) interval() (time.Duration, string) {
	days := int(math.Ceil(gc.EndTime.Sub(gc.StartTime).Hours() / 24))
	switch {
	case days <= 30:
		return 24 * time.Hour, "1/2"
	case days <= 180:
		return 7 * 24 * time.Hour, "1/2"
	default:
		return 30 * 24 * time.Hour, "2006/1"
	}
}

func (gc *GanttChart) drawTimeAxis(svg *strings.Builder) {
	interval, layout := gc.interval()
	axisY := gc.Height - gc.MarginBottom
	for t := gc.StartTime.Truncate(interval); t.Before(gc.EndTime); t = t.Add(interval) {
		x := gc.xFor(t)
		if x >= gc.MarginLeft && x <= gc.Width-gc.MarginRight {
			fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
				x, axisY+15, t.Format(layout))
		}
	}
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, axisY, gc.Width-gc.MarginRight, axisY)
}

func (gc *GanttChart) drawTimeGrid(svg *strings.Builder, rows int) {
	interval, _ := gc.interval()
	bottom := gc.MarginTop + (rows+1)*gc.RowHeight
	for t := gc.StartTime.Truncate(interval); t.Before(gc.EndTime); t = t.Add(interval) {
		x := gc.xFor(t)
		if x >= gc.MarginLeft && x <= gc.Width-gc.MarginRight {
			fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
				x, gc.MarginTop, x, bottom)
		}
	}
}

// drawMilestones puts a diamond per milestone on the first row.
func (gc *GanttChart) drawMilestones(svg *strings.Builder, view *dto.ScheduleView) {
	y := gc.MarginTop + gc.RowHeight/2
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="part-label" text-anchor="end">マイルストーン</text>`,
		gc.MarginLeft-15, y+4)
	for _, m := range view.Schedule.Milestones {
		x := gc.xFor(m.Date)
		fmt.Fprintf(svg, `<polygon points="%d,%d %d,%d %d,%d %d,%d" fill="%s"><title>%s %s</title></polygon>`,
			x, y-7, x+7, y, x, y+7, x-7, y, colorMarker,
			m.Date.Format(dateLayout), html.EscapeString(m.Name))
	}
}

func (gc *GanttChart) drawRow(svg *strings.Builder, bar GanttBar, y int) {
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="part-label" text-anchor="end">%s</text>`,
		gc.MarginLeft-15, y+gc.RowHeight/2+4, html.EscapeString(bar.Label))
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, y+gc.RowHeight, gc.Width-gc.MarginRight, y+gc.RowHeight)

	barHeight := gc.RowHeight - 4
	barY := y + 2
	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="order-bar">`,
		bar.X, barY, bar.Width, barHeight, bar.Color)
	fmt.Fprintf(svg, `<title>%s x%d 発注期限 %s 必要日 %s</title></rect>`,
		html.EscapeString(bar.Label), bar.Quantity, bar.StartDate.Format(dateLayout), bar.DueDate.Format(dateLayout))
	if bar.Width > 40 {
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="order-text" text-anchor="middle">%d個</text>`,
			bar.X+bar.Width/2, barY+barHeight/2+3, bar.Quantity)
	}
}

func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 200
	legendY := 40
	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="180" height="48" fill="white" stroke="#ccc" stroke-width="1"/>`,
		legendX, legendY)
	items := []struct {
		color string
		label string
	}{
		{colorOnTime, "発注期間"},
		{colorOverdue, "発注期限超過"},
		{colorMarker, "マイルストーン"},
	}
	for i, item := range items {
		itemY := legendY + 8 + i*12
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, legendX+10, itemY, item.color)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, legendX+30, itemY+7, item.label)
	}
}
