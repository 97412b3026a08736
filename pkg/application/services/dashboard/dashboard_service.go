package dashboard

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

const (
	recentOrders     = 5
	recentQuotes     = 3
	recentActivities = 10
)

// Service summarises the current state for the dashboard.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Summary counts alerts and quotes, totals this month's orders and lists
// recent activity.
func (s *Service) Summary() *dto.DashboardSummary {
	st := s.deps.State
	summary := &dto.DashboardSummary{
		PartCount:          len(st.Parts),
		QuoteCount:         len(st.Quotes),
		MonthlyOrderAmount: decimal.Zero,
		RecentActivities:   s.RecentActivities(),
	}
	for _, record := range st.Inventory {
		if record.Status.NeedsReorder() {
			summary.AlertCount++
		}
	}

	now := s.deps.Now()
	for _, order := range st.Orders {
		date := order.OrderDate.In(now.Location())
		if date.Year() == now.Year() && date.Month() == now.Month() {
			summary.MonthlyOrderAmount = summary.MonthlyOrderAmount.Add(order.TotalAmount)
		}
	}
	return summary
}

// RecentActivities takes the last five stored orders and last three stored
// quotes and returns them newest first.
func (s *Service) RecentActivities() []dto.Activity {
	st := s.deps.State
	activities := make([]dto.Activity, 0, recentOrders+recentQuotes)
	for _, order := range tail(st.Orders, recentOrders) {
		activities = append(activities, orderActivity(order))
	}
	for _, quote := range tail(st.Quotes, recentQuotes) {
		activities = append(activities, quoteActivity(quote))
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Time.After(activities[j].Time)
	})
	if len(activities) > recentActivities {
		activities = activities[:recentActivities]
	}
	return activities
}

func orderActivity(o *entities.Order) dto.Activity {
	return dto.Activity{
		Kind:        dto.ActivityOrder,
		ID:          o.ID,
		Title:       fmt.Sprintf("発注 %s を作成しました", o.OrderNumber),
		Description: o.Supplier,
		Amount:      o.TotalAmount,
		Time:        o.CreatedAt,
	}
}

func quoteActivity(q *entities.Quote) dto.Activity {
	return dto.Activity{
		Kind:        dto.ActivityQuote,
		ID:          q.ID,
		Title:       fmt.Sprintf("見積もり %s を作成しました", q.QuoteNumber),
		Description: q.CustomerName,
		Amount:      q.TotalAmount,
		Time:        q.CreatedAt,
	}
}

func tail[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
