package parts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// Draft is a part as entered. An empty category means electronic.
type Draft struct {
	PartNumber    string          `json:"partNumber"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Manufacturer  string          `json:"manufacturer"`
	ListPrice     decimal.Decimal `json:"listPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	Supplier      string          `json:"supplier"`
	LeadTime      int             `json:"leadTime"`
}

// Service maintains the part master.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Filter lists parts whose name or number contains search (case-insensitive),
// optionally restricted to one category.
func (s *Service) Filter(search string, category *entities.Category) []*entities.Part {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]*entities.Part, 0, len(s.deps.State.Parts))
	for _, part := range s.deps.State.Parts {
		if search != "" &&
			!strings.Contains(strings.ToLower(part.Name), search) &&
			!strings.Contains(strings.ToLower(part.PartNumber), search) {
			continue
		}
		if category != nil && part.Category != *category {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SavePart validates draft and creates a part, or replaces the part with id.
func (s *Service) SavePart(ctx context.Context, id string, draft Draft) (*entities.Part, error) {
	var existing *entities.Part
	if id != "" {
		var ok bool
		if existing, ok = s.deps.State.Part(id); !ok {
			return nil, fmt.Errorf("part %s: %w", id, entities.ErrNotFound)
		}
	}

	part, err := s.build(id, draft)
	if err != nil {
		return nil, err
	}

	now := s.deps.Now()
	part.UpdatedAt = now
	if existing != nil {
		part.ID = existing.ID
		part.CreatedAt = existing.CreatedAt
		if err := s.deps.Store.Update(ctx, repositories.Parts, part.ID, part.Patch()); err != nil {
			return nil, s.deps.StoreFailure("部品の保存に失敗しました", "update part", err)
		}
	} else {
		part.CreatedAt = now
		newID, err := s.deps.Store.Create(ctx, repositories.Parts, part)
		if err != nil {
			return nil, s.deps.StoreFailure("部品の保存に失敗しました", "create part", err)
		}
		part.ID = newID
	}
	s.deps.State.PutPart(part)

	s.deps.Logger.Info("part saved", zap.String("part_id", part.ID), zap.String("part_number", part.PartNumber))
	if existing != nil {
		s.deps.Notifier.Notify("部品を更新しました", notify.Success)
	} else {
		s.deps.Notifier.Notify("部品を登録しました", notify.Success)
	}
	s.deps.Publish(events.PartsStream, events.PartSavedEvent, events.PartSaved{
		PartID: part.ID, PartNumber: part.PartNumber, Created: existing == nil,
	})
	return part, nil
}

// build turns draft into a validated part. Part numbers must be unique among
// parts other than id.
func (s *Service) build(id string, draft Draft) (*entities.Part, error) {
	verrs := &entities.ValidationErrors{}

	category, err := entities.ParseCategory(strings.TrimSpace(draft.Category))
	if err != nil {
		verrs.Add("category", "カテゴリが正しくありません")
	}
	part := &entities.Part{
		PartNumber:    strings.TrimSpace(draft.PartNumber),
		Name:          strings.TrimSpace(draft.Name),
		Category:      category,
		Manufacturer:  strings.TrimSpace(draft.Manufacturer),
		ListPrice:     draft.ListPrice,
		PurchasePrice: draft.PurchasePrice,
		Supplier:      strings.TrimSpace(draft.Supplier),
		LeadTime:      draft.LeadTime,
	}
	var fieldErrs *entities.ValidationErrors
	if err := part.Validate(); errors.As(err, &fieldErrs) {
		verrs.Errors = append(verrs.Errors, fieldErrs.Errors...)
	}
	if other, ok := s.deps.State.PartByNumber(part.PartNumber); ok && part.PartNumber != "" && other.ID != id {
		verrs.Add("partNumber", entities.UniqueMessage("品番"))
	}
	if verrs.HasErrors() {
		return nil, s.deps.Invalid(verrs)
	}
	return part, nil
}

// DeletePart removes a part after confirmation. BOM items and inventory
// records that still reference it are left in place and skipped on read.
func (s *Service) DeletePart(ctx context.Context, id string) error {
	if _, ok := s.deps.State.Part(id); !ok {
		return fmt.Errorf("part %s: %w", id, entities.ErrNotFound)
	}
	if err := s.deps.Confirm("この部品を削除しますか？"); err != nil {
		return err
	}
	if err := s.deps.Store.Delete(ctx, repositories.Parts, id); err != nil {
		return s.deps.StoreFailure("部品の削除に失敗しました", "delete part", err)
	}
	s.deps.State.RemovePart(id)
	s.deps.Notifier.Notify("部品を削除しました", notify.Success)
	s.deps.Publish(events.PartsStream, events.PartDeletedEvent, events.Deleted{ID: id})
	return nil
}
