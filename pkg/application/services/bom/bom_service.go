package bom

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/domain/services"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// PartLookup resolves a part by id.
type PartLookup interface {
	Part(id string) (*entities.Part, bool)
}

// CalculateBOMCost sums purchasePrice × quantity over items whose part
// resolves. Missing parts contribute nothing.
func CalculateBOMCost(items []entities.BOMItem, parts PartLookup) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		part, ok := parts.Part(item.PartID)
		if !ok {
			continue
		}
		total = total.Add(part.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Draft is a BOM as entered.
type Draft struct {
	Name        string             `json:"name"`
	ProductName string             `json:"productName"`
	Version     string             `json:"version"`
	Rows        []services.ItemRow `json:"items"`
}

// Service maintains BOMs and their cost rollup.
type Service struct {
	deps      shared.Dependencies
	validator *services.BOMValidator
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps, validator: services.NewBOMValidator()}
}

// List returns every BOM in state order.
func (s *Service) List() []*entities.BOM {
	return s.deps.State.BOMs
}

// SaveBOM validates draft, recomputes the total cost and creates the BOM, or
// replaces the BOM with the given id.
func (s *Service) SaveBOM(ctx context.Context, id string, draft Draft) (*entities.BOM, error) {
	result := s.validator.ValidateItemRows(draft.Rows)
	if strings.TrimSpace(draft.Name) == "" {
		result.Errors.Add("name", entities.RequiredMessage("BOM名"))
	}
	if !result.Valid() {
		for _, msg := range result.Errors.Messages() {
			s.deps.Notifier.Notify(msg, notify.Error)
		}
		return nil, result.Errors
	}
	for _, line := range result.DuplicateRows {
		s.deps.Notifier.Notify(fmt.Sprintf("行%d: 同じ部品が複数行にあります", line), notify.Warning)
	}

	var existing *entities.BOM
	if id != "" {
		var ok bool
		if existing, ok = s.deps.State.BOM(id); !ok {
			return nil, fmt.Errorf("bom %s: %w", id, entities.ErrNotFound)
		}
	}

	now := s.deps.Now()
	bom, err := entities.NewBOM(strings.TrimSpace(draft.Name), strings.TrimSpace(draft.ProductName),
		strings.TrimSpace(draft.Version), result.Items, now)
	if err != nil {
		return nil, err
	}
	bom.TotalCost = CalculateBOMCost(bom.Items, s.deps.State)

	if existing != nil {
		bom.ID = existing.ID
		bom.CreatedAt = existing.CreatedAt
		if err := s.deps.Store.Update(ctx, repositories.BOMs, bom.ID, bom.Patch()); err != nil {
			return nil, s.deps.StoreFailure("BOMの保存に失敗しました", "update bom", err)
		}
	} else {
		newID, err := s.deps.Store.Create(ctx, repositories.BOMs, bom)
		if err != nil {
			return nil, s.deps.StoreFailure("BOMの保存に失敗しました", "create bom", err)
		}
		bom.ID = newID
	}
	s.deps.State.PutBOM(bom)

	s.deps.Logger.Info("bom saved", zap.String("bom_id", bom.ID), zap.String("total_cost", bom.TotalCost.String()))
	if existing != nil {
		s.deps.Notifier.Notify("BOMを更新しました", notify.Success)
	} else {
		s.deps.Notifier.Notify("BOMを作成しました", notify.Success)
	}
	s.deps.Publish(events.BOMsStream, events.BOMSavedEvent, events.BOMSaved{
		BOMID: bom.ID, Name: bom.Name, TotalCost: bom.TotalCost, Created: existing == nil,
	})
	return bom, nil
}

// DeleteBOM removes a BOM after confirmation.
func (s *Service) DeleteBOM(ctx context.Context, id string) error {
	if _, ok := s.deps.State.BOM(id); !ok {
		return fmt.Errorf("bom %s: %w", id, entities.ErrNotFound)
	}
	if err := s.deps.Confirm("このBOMを削除しますか？"); err != nil {
		return err
	}
	if err := s.deps.Store.Delete(ctx, repositories.BOMs, id); err != nil {
		return s.deps.StoreFailure("BOMの削除に失敗しました", "delete bom", err)
	}
	s.deps.State.RemoveBOM(id)
	s.deps.Notifier.Notify("BOMを削除しました", notify.Success)
	s.deps.Publish(events.BOMsStream, events.BOMDeletedEvent, events.Deleted{ID: id})
	return nil
}

// CurrentCost recomputes a BOM's cost from today's part prices.
func (s *Service) CurrentCost(id string) (decimal.Decimal, error) {
	bom, ok := s.deps.State.BOM(id)
	if !ok {
		return decimal.Zero, fmt.Errorf("bom %s: %w", id, entities.ErrNotFound)
	}
	return CalculateBOMCost(bom.Items, s.deps.State), nil
}

// Tree builds the display model of every BOM. Items whose part is missing
// are left out.
func (s *Service) Tree() []dto.BOMTree {
	trees := make([]dto.BOMTree, 0, len(s.deps.State.BOMs))
	for _, bom := range s.deps.State.BOMs {
		trees = append(trees, s.tree(bom))
	}
	return trees
}

func (s *Service) tree(bom *entities.BOM) dto.BOMTree {
	tree := dto.BOMTree{
		ID:          bom.ID,
		Name:        bom.Name,
		ProductName: bom.ProductName,
		Version:     bom.Version,
		TotalCost:   bom.TotalCost,
		ItemCount:   len(bom.Items),
		CreatedAt:   bom.CreatedAt,
		Items:       make([]dto.BOMTreeItem, 0, len(bom.Items)),
	}
	for _, item := range bom.Items {
		part, ok := s.deps.State.Part(item.PartID)
		if !ok {
			continue
		}
		tree.Items = append(tree.Items, dto.BOMTreeItem{
			PartID:      part.ID,
			PartNumber:  part.PartNumber,
			PartName:    part.Name,
			Quantity:    item.Quantity,
			TimingLabel: item.TimingLabel(),
			UnitPrice:   part.PurchasePrice,
			Subtotal:    part.PurchasePrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return tree
}
