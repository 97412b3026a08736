package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/domain/repositories"
	"github.com/vsinha/bomkit/pkg/infrastructure/events"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// Kind selects what the rows describe.
type Kind int

const (
	Parts Kind = iota
	Inventory
	BOMs
)

var kindNames = []string{"parts", "inventory", "boms"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Kind(i), nil
		}
	}
	return Parts, fmt.Errorf("unknown import kind %q", s)
}

// Service bulk-loads parsed rows into the store.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Import writes rows of the given kind one by one. Rows that cannot be used
// are skipped and rows whose write fails count as errored; neither stops the
// batch. State is refreshed from the store afterwards.
func (s *Service) Import(ctx context.Context, kind Kind, rows [][]string) (*dto.ImportResult, error) {
	result := &dto.ImportResult{Kind: kind.String()}
	switch kind {
	case Parts:
		s.importParts(ctx, rows, result)
	case Inventory:
		s.importInventory(ctx, rows, result)
	case BOMs:
		s.deps.Notifier.Notify("BOMインポートは今後のバージョンで対応予定です", notify.Info)
		return result, nil
	default:
		return nil, fmt.Errorf("unknown import kind %d", int(kind))
	}

	s.deps.Logger.Info("import finished",
		zap.String("kind", result.Kind),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("errored", result.Errored))

	if err := s.deps.State.Sync(ctx, s.deps.Store); err != nil {
		s.deps.Notifier.Notify("データの同期に失敗しました", notify.Error)
		return result, fmt.Errorf("refresh state after import: %w", err)
	}

	s.deps.Notifier.Notify(fmt.Sprintf("%d件のデータをインポートしました", result.Imported), notify.Success)
	if result.Skipped > 0 || result.Errored > 0 {
		severity := notify.Info
		if result.Errored > 0 {
			severity = notify.Warning
		}
		s.deps.Notifier.Notify(fmt.Sprintf("インポート完了\n成功: %d件\nスキップ: %d件\nエラー: %d件",
			result.Imported, result.Skipped, result.Errored), severity)
	}
	s.deps.Publish(events.ImportStream, events.ImportCompletedEvent, events.ImportCompleted{
		Kind: result.Kind, Imported: result.Imported, Skipped: result.Skipped, Errored: result.Errored,
	})
	return result, nil
}

// Parts columns: partNumber, name, category, manufacturer, listPrice,
// purchasePrice, supplier, leadTime.
func (s *Service) importParts(ctx context.Context, rows [][]string, result *dto.ImportResult) {
	now := s.deps.Now()
	for i, row := range rows {
		line := i + 2
		if len(row) < 2 || (cell(row, 0) == "" && cell(row, 1) == "") {
			result.Skipped++
			continue
		}
		partNumber, name := cell(row, 0), cell(row, 1)
		if partNumber == "" || name == "" {
			s.deps.Logger.Warn("part row without number or name", zap.Int("row", line))
			result.Skipped++
			continue
		}

		category, err := entities.ParseCategory(cell(row, 2))
		if err != nil {
			s.deps.Logger.Warn("part row with unknown category", zap.Int("row", line), zap.Error(err))
			result.Errored++
			continue
		}
		part := &entities.Part{
			PartNumber:    partNumber,
			Name:          name,
			Category:      category,
			Manufacturer:  cell(row, 3),
			ListPrice:     CleanPrice(cell(row, 4)),
			PurchasePrice: CleanPrice(cell(row, 5)),
			Supplier:      cell(row, 6),
			LeadTime:      parseInt(cell(row, 7)),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := part.Validate(); err != nil {
			s.deps.Logger.Warn("invalid part row", zap.Int("row", line), zap.Error(err))
			result.Errored++
			continue
		}

		if existing, ok := s.deps.State.PartByNumber(partNumber); ok {
			err = s.deps.Store.Update(ctx, repositories.Parts, existing.ID, part.Patch())
		} else {
			var id string
			if id, err = s.deps.Store.Create(ctx, repositories.Parts, part); err == nil {
				part.ID = id
				s.deps.State.PutPart(part)
			}
		}
		if err != nil {
			s.deps.Logger.Error("part row import failed", zap.Int("row", line), zap.Error(err))
			result.Errored++
			continue
		}
		result.Imported++
	}
}

// Inventory columns: partNumber, currentStock, minStock, reorderPoint.
func (s *Service) importInventory(ctx context.Context, rows [][]string, result *dto.ImportResult) {
	now := s.deps.Now()
	for i, row := range rows {
		line := i + 2
		if len(row) < 2 {
			result.Skipped++
			continue
		}
		part, ok := s.deps.State.PartByNumber(cell(row, 0))
		if !ok {
			s.deps.Logger.Warn("inventory row for unknown part", zap.Int("row", line), zap.String("part_number", cell(row, 0)))
			result.Skipped++
			continue
		}
		current, minStock, reorder := parseInt(cell(row, 1)), parseInt(cell(row, 2)), parseInt(cell(row, 3))

		if current < 0 || minStock < 0 || reorder < 0 {
			s.deps.Logger.Warn("inventory row with negative quantity", zap.Int("row", line))
			result.Errored++
			continue
		}

		var err error
		if existing, ok := s.deps.State.InventoryFor(part.ID); ok {
			next := *existing
			next.UpdateStock(current, now)
			next.UpdateSettings(minStock, reorder, now)
			err = s.deps.Store.Update(ctx, repositories.Inventory, existing.ID, next.Patch())
		} else {
			var record *entities.InventoryRecord
			if record, err = entities.NewInventoryRecord(part.ID, current, minStock, reorder, now); err == nil {
				var id string
				if id, err = s.deps.Store.Create(ctx, repositories.Inventory, record); err == nil {
					record.ID = id
					s.deps.State.PutInventory(record)
				}
			}
		}
		if err != nil {
			s.deps.Logger.Error("inventory row import failed", zap.Int("row", line), zap.Error(err))
			result.Errored++
			continue
		}
		result.Imported++
	}
}

// CleanPrice strips ¥, commas and 円 and parses the rest. Anything that is not
// a number is zero.
func CleanPrice(value string) decimal.Decimal {
	cleaned := strings.NewReplacer("¥", "", "￥", "", ",", "", "円", "").Replace(value)
	d, err := decimal.NewFromString(strings.TrimSpace(cleaned))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
