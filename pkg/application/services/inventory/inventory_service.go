package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// Service applies stock movements and keeps derived statuses in sync.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Row pairs a record with its part for listing.
type Row struct {
	Record *entities.InventoryRecord `json:"record"`
	Part   *entities.Part            `json:"part"`
}

// Filter lists records whose part name or number contains search
// (case-insensitive), optionally restricted to one status. Records whose part
// is missing are skipped.
func (s *Service) Filter(search string, status *entities.StockStatus) []Row {
	search = strings.ToLower(strings.TrimSpace(search))
	rows := make([]Row, 0, len(s.deps.State.Inventory))
	for _, record := range s.deps.State.Inventory {
		part, ok := s.deps.State.Part(record.PartID)
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(part.Name), search) &&
			!strings.Contains(strings.ToLower(part.PartNumber), search) {
			continue
		}
		if status != nil && record.Status != *status {
			continue
		}
		rows = append(rows, Row{Record: record, Part: part})
	}
	return rows
}

// ReconcileStatuses recomputes every record's status and writes back only the
// records whose status changed. It returns how many were written. A failed
// write leaves that record untouched and the rest are still attempted.
func (s *Service) ReconcileStatuses(ctx context.Context) (int, error) {
	written := 0
	var errs []error
	for _, record := range s.deps.State.Inventory {
		status := entities.CalculateStatus(record.CurrentStock, record.ReorderPoint)
		if status == record.Status {
			continue
		}
		patch := entities.InventoryStatusUpdate{Status: status}
		if err := s.deps.Store.Update(ctx, repositories.Inventory, record.ID, patch); err != nil {
			s.deps.Logger.Error("inventory status update failed",
				zap.String("inventory_id", record.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("update status of %s: %w", record.ID, err))
			continue
		}
		record.Status = status
		written++
	}

	s.deps.Logger.Debug("inventory statuses reconciled",
		zap.Int("checked", len(s.deps.State.Inventory)), zap.Int("written", written))
	if written > 0 {
		s.deps.Publish(events.InventoryStream, events.InventoryReconciledEvent,
			events.InventoryReconciled{Checked: len(s.deps.State.Inventory), Written: written})
	}
	return written, errors.Join(errs...)
}

// Consume removes quantity from a part's stock, clamping at zero, and warns
// when the result is low or out.
func (s *Service) Consume(ctx context.Context, partID string, quantity int) (*entities.InventoryRecord, error) {
	if quantity < 1 {
		return nil, s.deps.Invalid(quantityError())
	}
	record, ok := s.deps.State.InventoryFor(partID)
	if !ok {
		s.deps.Notifier.Notify("在庫データが見つかりません", notify.Warning)
		return nil, fmt.Errorf("inventory for part %s: %w", partID, entities.ErrNotFound)
	}

	next := *record
	next.UpdateStock(max(0, record.CurrentStock-quantity), s.deps.Now())
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}

	if next.Status.NeedsReorder() {
		if part, ok := s.deps.State.Part(partID); ok {
			s.deps.Notifier.Notify(
				fmt.Sprintf("%sの在庫が不足しています（現在庫：%d）", part.PartNumber, next.CurrentStock),
				notify.Warning)
		}
	}
	s.deps.Publish(events.InventoryStream, events.InventoryConsumedEvent, events.StockChanged{
		PartID: partID, Quantity: quantity, CurrentStock: next.CurrentStock, Status: next.Status,
	})

	if _, err := s.ReconcileStatuses(ctx); err != nil {
		s.deps.Logger.Warn("reconcile after consume failed", zap.Error(err))
	}
	return record, nil
}

// Replenish adds quantity to a part's stock.
func (s *Service) Replenish(ctx context.Context, partID string, quantity int) (*entities.InventoryRecord, error) {
	if quantity < 1 {
		return nil, s.deps.Invalid(quantityError())
	}
	record, ok := s.deps.State.InventoryFor(partID)
	if !ok {
		s.deps.Notifier.Notify("在庫データが見つかりません", notify.Warning)
		return nil, fmt.Errorf("inventory for part %s: %w", partID, entities.ErrNotFound)
	}

	next := *record
	next.UpdateStock(record.CurrentStock+quantity, s.deps.Now())
	if err := s.save(ctx, &next); err != nil {
		return nil, err
	}

	if _, err := s.ReconcileStatuses(ctx); err != nil {
		s.deps.Logger.Warn("reconcile after replenish failed", zap.Error(err))
	}
	if part, ok := s.deps.State.Part(partID); ok {
		s.deps.Notifier.Notify(fmt.Sprintf("%sの在庫を%d個補充しました", part.PartNumber, quantity), notify.Success)
	}
	s.deps.Publish(events.InventoryStream, events.InventoryReplenishedEvent, events.StockChanged{
		PartID: partID, Quantity: quantity, CurrentStock: next.CurrentStock, Status: next.Status,
	})
	return record, nil
}

// SaveRecord upserts the record for partID. An existing record gets its stock
// and settings replaced; otherwise a new record is created.
func (s *Service) SaveRecord(ctx context.Context, partID string, currentStock, minStock, reorderPoint int) (*entities.InventoryRecord, error) {
	v := &entities.ValidationErrors{}
	if partID == "" {
		v.Add("partId", entities.RequiredMessage("部品"))
	} else if _, ok := s.deps.State.Part(partID); !ok {
		v.Add("partId", "部品が見つかりません")
	}
	if currentStock < 0 {
		v.Add("currentStock", entities.MinMessage("現在庫数", 0))
	}
	if minStock < 0 {
		v.Add("minStock", entities.MinMessage("最小在庫数", 0))
	}
	if reorderPoint < 0 {
		v.Add("reorderPoint", entities.MinMessage("発注点", 0))
	}
	if v.HasErrors() {
		return nil, s.deps.Invalid(v)
	}

	now := s.deps.Now()
	existing, ok := s.deps.State.InventoryFor(partID)
	if ok {
		next := *existing
		next.UpdateStock(currentStock, now)
		next.UpdateSettings(minStock, reorderPoint, now)
		if err := s.save(ctx, &next); err != nil {
			return nil, err
		}
		s.savedNotice(existing)
		return existing, nil
	}

	record, err := entities.NewInventoryRecord(partID, currentStock, minStock, reorderPoint, now)
	if err != nil {
		return nil, err
	}
	id, err := s.deps.Store.Create(ctx, repositories.Inventory, record)
	if err != nil {
		return nil, s.deps.StoreFailure("在庫の保存に失敗しました", "create inventory", err)
	}
	record.ID = id
	s.deps.State.PutInventory(record)
	s.savedNotice(record)
	return record, nil
}

func (s *Service) savedNotice(record *entities.InventoryRecord) {
	s.deps.Notifier.Notify("在庫を更新しました", notify.Success)
	s.deps.Publish(events.InventoryStream, events.InventorySavedEvent, events.StockChanged{
		PartID: record.PartID, CurrentStock: record.CurrentStock, Status: record.Status,
	})
}

// save writes next and, on success, copies it over the state record with the
// same id.
func (s *Service) save(ctx context.Context, next *entities.InventoryRecord) error {
	if err := s.deps.Store.Update(ctx, repositories.Inventory, next.ID, next.Patch()); err != nil {
		return s.deps.StoreFailure("在庫の保存に失敗しました", "update inventory", err)
	}
	if current, ok := s.deps.State.InventoryRecord(next.ID); ok {
		*current = *next
	}
	return nil
}

func quantityError() *entities.ValidationErrors {
	v := &entities.ValidationErrors{}
	v.Add("quantity", entities.MinMessage("数量", 1))
	return v
}

// LowStock returns records that need reordering.
func (s *Service) LowStock() []*entities.InventoryRecord {
	var out []*entities.InventoryRecord
	for _, record := range s.deps.State.Inventory {
		if record.Status.NeedsReorder() {
			out = append(out, record)
		}
	}
	return out
}
