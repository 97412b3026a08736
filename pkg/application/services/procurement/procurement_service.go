package procurement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// Service turns stock alerts into supplier purchase orders.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Plan proposes one order per supplier for every low or out record. Records
// whose part is missing or has no supplier are skipped, as are lines whose
// reorder quantity is not positive. Suppliers keep first-seen order.
func (s *Service) Plan() (*dto.OrderPlan, error) {
	plan := &dto.OrderPlan{GrandTotal: decimal.Zero}
	bySupplier := make(map[string]int)

	for _, record := range s.deps.State.Inventory {
		if !record.Status.NeedsReorder() {
			continue
		}
		part, ok := s.deps.State.Part(record.PartID)
		if !ok || part.Supplier == "" {
			continue
		}
		quantity := record.ReorderQuantity()
		if quantity < 1 {
			s.deps.Logger.Debug("skipping non-positive reorder quantity",
				zap.String("part", part.PartNumber), zap.Int("quantity", quantity))
			continue
		}

		i, ok := bySupplier[part.Supplier]
		if !ok {
			i = len(plan.Suppliers)
			bySupplier[part.Supplier] = i
			plan.Suppliers = append(plan.Suppliers, dto.SupplierProposal{
				Supplier: part.Supplier,
				Subtotal: decimal.Zero,
			})
		}
		line := dto.ProposalLine{
			PartID:       part.ID,
			PartNumber:   part.PartNumber,
			PartName:     part.Name,
			CurrentStock: record.CurrentStock,
			Quantity:     quantity,
			UnitPrice:    part.PurchasePrice,
			LineTotal:    part.PurchasePrice.Mul(decimal.NewFromInt(int64(quantity))),
			LeadTime:     part.LeadTime,
		}
		proposal := &plan.Suppliers[i]
		proposal.Lines = append(proposal.Lines, line)
		proposal.Subtotal = proposal.Subtotal.Add(line.LineTotal)
		proposal.MaxLeadTime = max(proposal.MaxLeadTime, part.LeadTime)
		plan.GrandTotal = plan.GrandTotal.Add(line.LineTotal)
	}

	if plan.Empty() {
		s.deps.Notifier.Notify("発注が必要な部品がありません", notify.Info)
		return plan, entities.ErrNothingToOrder
	}
	return plan, nil
}

// Confirm creates and stores one pending order per supplier proposal. The
// expected delivery is today plus the longest lead time among the supplier's
// parts, with missing parts counting as zero. A store failure stops the batch;
// orders already written are kept and returned with the error.
func (s *Service) Confirm(ctx context.Context, plan *dto.OrderPlan) ([]*entities.Order, error) {
	if plan == nil || plan.Empty() {
		s.deps.Notifier.Notify("発注が必要な部品がありません", notify.Info)
		return nil, entities.ErrNothingToOrder
	}

	now := s.deps.Now()
	created := make([]*entities.Order, 0, len(plan.Suppliers))
	for _, proposal := range plan.Suppliers {
		lines := make([]entities.OrderLine, 0, len(proposal.Lines))
		maxLeadTime := 0
		for _, l := range proposal.Lines {
			lines = append(lines, entities.OrderLine{PartID: l.PartID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
			if part, ok := s.deps.State.Part(l.PartID); ok {
				maxLeadTime = max(maxLeadTime, part.LeadTime)
			}
		}

		order, err := entities.NewOrder(proposal.Supplier, lines, maxLeadTime, now, s.deps.Rand)
		if err != nil {
			return created, fmt.Errorf("build order for %s: %w", proposal.Supplier, err)
		}
		id, err := s.deps.Store.Create(ctx, repositories.Orders, order)
		if err != nil {
			return created, s.deps.StoreFailure("発注の作成に失敗しました", "create order", err)
		}
		order.ID = id
		s.deps.State.PutOrder(order)
		created = append(created, order)
	}

	total := decimal.Zero
	snapshot := make([]entities.Order, 0, len(created))
	for _, o := range created {
		total = total.Add(o.TotalAmount)
		snapshot = append(snapshot, o.Snapshot())
	}
	s.deps.Logger.Info("orders confirmed", zap.Int("orders", len(created)), zap.String("total", total.String()))
	s.deps.Notifier.Notify(fmt.Sprintf("%d件の発注を作成しました", len(created)), notify.Success)
	s.deps.Publish(events.OrdersStream, events.OrdersConfirmedEvent, events.OrdersConfirmed{
		Orders: snapshot, TotalAmount: total,
	})
	return created, nil
}

// CreateFromAlerts plans, asks for confirmation and confirms.
func (s *Service) CreateFromAlerts(ctx context.Context) ([]*entities.Order, error) {
	plan, err := s.Plan()
	if err != nil {
		return nil, err
	}
	question := fmt.Sprintf("%d社に合計%sの発注を作成しますか？", len(plan.Suppliers), entities.FormatYen(plan.GrandTotal))
	if err := s.deps.Confirm(question); err != nil {
		return nil, err
	}
	return s.Confirm(ctx, plan)
}

// UpdateStatus changes an order's status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status entities.OrderStatus) (*entities.Order, error) {
	order, ok := s.deps.State.Order(id)
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, entities.ErrNotFound)
	}
	patch := entities.OrderStatusUpdate{Status: status, UpdatedAt: s.deps.Now()}
	if err := s.deps.Store.Update(ctx, repositories.Orders, id, patch); err != nil {
		return nil, s.deps.StoreFailure("ステータスの更新に失敗しました", "update order status", err)
	}
	order.Status = patch.Status
	order.UpdatedAt = patch.UpdatedAt
	s.deps.Notifier.Notify("ステータスを更新しました", notify.Success)
	s.deps.Publish(events.OrdersStream, events.OrderStatusChangedEvent, events.StatusChanged{ID: id, Status: status.String()})
	return order, nil
}

// DeleteOrder removes an order after confirmation.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if _, ok := s.deps.State.Order(id); !ok {
		return fmt.Errorf("order %s: %w", id, entities.ErrNotFound)
	}
	if err := s.deps.Confirm("この発注を削除しますか？"); err != nil {
		return err
	}
	if err := s.deps.Store.Delete(ctx, repositories.Orders, id); err != nil {
		return s.deps.StoreFailure("発注の削除に失敗しました", "delete order", err)
	}
	s.deps.State.RemoveOrder(id)
	s.deps.Notifier.Notify("発注を削除しました", notify.Success)
	s.deps.Publish(events.OrdersStream, events.OrderDeletedEvent, events.Deleted{ID: id})
	return nil
}

// List returns every order in state order.
func (s *Service) List() []*entities.Order {
	return s.deps.State.Orders
}
