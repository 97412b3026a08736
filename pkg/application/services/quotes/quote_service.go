package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

const maxTextLength = 100

// Draft is a quote as entered. A zero ManufacturingStartDate means none.
type Draft struct {
	CustomerName           string    `json:"customerName"`
	ProductName            string    `json:"productName"`
	Quantity               int       `json:"quantity"`
	ManufacturingStartDate time.Time `json:"manufacturingStartDate,omitzero"`
	DeliveryDate           time.Time `json:"deliveryDate"`
	BOMID                  string    `json:"bomId"`
	Notes                  string    `json:"notes"`
}

// Service maintains quotes and their BOM-based pricing.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

func (s *Service) List() []*entities.Quote {
	return s.deps.State.Quotes
}

// EstimateCost is the BOM's stored total cost times quantity. A quantity
// below one counts as one.
func (s *Service) EstimateCost(bomID string, quantity int) (decimal.Decimal, error) {
	bom, ok := s.deps.State.BOM(bomID)
	if !ok {
		return decimal.Zero, fmt.Errorf("bom %s: %w", bomID, entities.ErrNotFound)
	}
	return bom.TotalCost.Mul(decimal.NewFromInt(int64(max(quantity, 1)))), nil
}

// SaveQuote validates draft and creates a quote, or edits the quote with id.
// Editing keeps the quote number and status. After saving, stock shortages
// for the BOM are reported as a warning.
func (s *Service) SaveQuote(ctx context.Context, id string, draft Draft) (*entities.Quote, error) {
	var existing *entities.Quote
	if id != "" {
		var ok bool
		if existing, ok = s.deps.State.Quote(id); !ok {
			return nil, fmt.Errorf("quote %s: %w", id, entities.ErrNotFound)
		}
	}
	if verrs := s.validate(draft); verrs.HasErrors() {
		return nil, s.deps.Invalid(verrs)
	}

	now := s.deps.Now()
	var quote *entities.Quote
	if existing != nil {
		copied := *existing
		quote = &copied
		quote.CustomerName = strings.TrimSpace(draft.CustomerName)
		quote.ProductName = strings.TrimSpace(draft.ProductName)
		quote.Quantity = draft.Quantity
		quote.DeliveryDate = draft.DeliveryDate
		quote.UpdatedAt = now
	} else {
		var err error
		quote, err = entities.NewQuote(strings.TrimSpace(draft.CustomerName), strings.TrimSpace(draft.ProductName),
			draft.Quantity, draft.DeliveryDate, now, s.deps.Rand)
		if err != nil {
			return nil, err
		}
	}
	quote.ManufacturingStartDate = draft.ManufacturingStartDate
	quote.BOMID = draft.BOMID
	quote.Notes = strings.TrimSpace(draft.Notes)
	quote.TotalAmount = decimal.Zero
	if bom, ok := s.deps.State.BOM(quote.BOMID); ok && quote.BOMID != "" {
		quote.TotalAmount = bom.TotalCost.Mul(decimal.NewFromInt(int64(quote.Quantity)))
	}

	if existing != nil {
		if err := s.deps.Store.Update(ctx, repositories.Quotes, quote.ID, quote.Patch()); err != nil {
			return nil, s.deps.StoreFailure("見積もりの保存に失敗しました", "update quote", err)
		}
	} else {
		newID, err := s.deps.Store.Create(ctx, repositories.Quotes, quote)
		if err != nil {
			return nil, s.deps.StoreFailure("見積もりの保存に失敗しました", "create quote", err)
		}
		quote.ID = newID
	}
	s.deps.State.PutQuote(quote)

	s.deps.Logger.Info("quote saved", zap.String("quote", quote.QuoteNumber), zap.String("total", quote.TotalAmount.String()))
	if existing != nil {
		s.deps.Notifier.Notify("見積もりを更新しました", notify.Success)
	} else {
		s.deps.Notifier.Notify("見積もりを作成しました", notify.Success)
	}
	s.deps.Publish(events.QuotesStream, events.QuoteSavedEvent, events.QuoteSaved{
		QuoteID: quote.ID, QuoteNumber: quote.QuoteNumber, TotalAmount: quote.TotalAmount, Created: existing == nil,
	})

	if quote.BOMID != "" {
		if shortages := s.CheckShortages(quote); len(shortages) > 0 {
			s.deps.Notifier.Notify(ShortageMessage(quote, shortages), notify.Warning)
		}
	}
	if quote.BOMID != "" && !quote.ManufacturingStartDate.IsZero() {
		s.deps.Notifier.Notify("見積もりが作成されました。製造スケジュールを確認できます。", notify.Info)
	}
	return quote, nil
}

func (s *Service) validate(draft Draft) *entities.ValidationErrors {
	verrs := &entities.ValidationErrors{}
	text := func(field, label, value string) {
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			verrs.Add(field, entities.RequiredMessage(label))
		case utf8.RuneCountInString(value) > maxTextLength:
			verrs.Add(field, entities.MaxLengthMessage(label, maxTextLength))
		}
	}
	text("customerName", "顧客名", draft.CustomerName)
	text("productName", "製品名", draft.ProductName)
	if draft.Quantity < 1 {
		verrs.Add("quantity", entities.MinMessage("数量", 1))
	}

	today := s.deps.Today()
	switch {
	case draft.DeliveryDate.IsZero():
		verrs.Add("deliveryDate", entities.RequiredMessage("納期"))
	case s.beforeToday(draft.DeliveryDate, today):
		verrs.Add("deliveryDate", entities.FutureDateMessage("納期"))
	}
	if !draft.ManufacturingStartDate.IsZero() && s.beforeToday(draft.ManufacturingStartDate, today) {
		verrs.Add("manufacturingStartDate", entities.FutureDateMessage("製造開始日"))
	}
	return verrs
}

func (s *Service) beforeToday(t, today time.Time) bool {
	return entities.StartOfDay(t.In(today.Location())).Before(today)
}

// CheckShortages totals each part's requirement (item quantity × quote
// quantity) over the quote's BOM and returns the parts whose current stock
// does not cover it, in BOM order. A part without an inventory record has
// zero stock. Parts missing from the master are left out.
func (s *Service) CheckShortages(quote *entities.Quote) []dto.Shortage {
	bom, ok := s.deps.State.BOM(quote.BOMID)
	if !ok {
		return nil
	}

	required := make(map[string]int)
	order := make([]string, 0, len(bom.Items))
	for _, item := range bom.Items {
		if _, seen := required[item.PartID]; !seen {
			order = append(order, item.PartID)
		}
		required[item.PartID] += item.Quantity * quote.Quantity
	}

	var shortages []dto.Shortage
	for _, partID := range order {
		available := 0
		if record, ok := s.deps.State.InventoryFor(partID); ok {
			available = record.CurrentStock
		}
		if available >= required[partID] {
			continue
		}
		part, ok := s.deps.State.Part(partID)
		if !ok {
			continue
		}
		shortages = append(shortages, dto.Shortage{
			PartID:     partID,
			PartNumber: part.PartNumber,
			PartName:   part.Name,
			Required:   required[partID],
			Available:  available,
		})
	}
	return shortages
}

// ShortageMessage renders the warning shown for a quote's shortages.
func ShortageMessage(quote *entities.Quote, shortages []dto.Shortage) string {
	items := make([]string, 0, len(shortages))
	for _, sh := range shortages {
		items = append(items, fmt.Sprintf("%s: %d個不足", sh.PartNumber, sh.Missing()))
	}
	return fmt.Sprintf("見積もり %s の部品が不足しています: %s", quote.QuoteNumber, strings.Join(items, ", "))
}

// UpdateStatus changes a quote's status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status entities.QuoteStatus) (*entities.Quote, error) {
	quote, ok := s.deps.State.Quote(id)
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", id, entities.ErrNotFound)
	}
	patch := entities.QuoteStatusUpdate{Status: status, UpdatedAt: s.deps.Now()}
	if err := s.deps.Store.Update(ctx, repositories.Quotes, id, patch); err != nil {
		return nil, s.deps.StoreFailure("ステータスの更新に失敗しました", "update quote status", err)
	}
	quote.Status = patch.Status
	quote.UpdatedAt = patch.UpdatedAt
	s.deps.Notifier.Notify("ステータスを更新しました", notify.Success)
	s.deps.Publish(events.QuotesStream, events.QuoteStatusChangedEvent, events.StatusChanged{ID: id, Status: status.String()})
	return quote, nil
}

// DeleteQuote removes a quote after confirmation.
func (s *Service) DeleteQuote(ctx context.Context, id string) error {
	if _, ok := s.deps.State.Quote(id); !ok {
		return fmt.Errorf("quote %s: %w", id, entities.ErrNotFound)
	}
	if err := s.deps.Confirm("この見積もりを削除しますか？"); err != nil {
		return err
	}
	if err := s.deps.Store.Delete(ctx, repositories.Quotes, id); err != nil {
		return s.deps.StoreFailure("見積もりの削除に失敗しました", "delete quote", err)
	}
	s.deps.State.RemoveQuote(id)
	s.deps.Notifier.Notify("見積もりを削除しました", notify.Success)
	s.deps.Publish(events.QuotesStream, events.QuoteDeletedEvent, events.Deleted{ID: id})
	return nil
}
