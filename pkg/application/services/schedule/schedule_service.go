package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/vsinha/bomkit/pkg/application/dto"
	"github.com/vsinha/bomkit/pkg/application/services/shared"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
	"go.uber.org/zap"
)

// DateLayout is how dates appear on production documents.
const DateLayout = "2006/01/02"

type milestoneTemplate struct {
	name        string
	percentage  int
	description string
}

var milestoneTemplates = []milestoneTemplate{
	{"製造開始", 0, "製造工程の開始"},
	{"材料準備完了", 10, "必要な材料の準備完了"},
	{"初期組立完了", 30, "基本的な組立作業の完了"},
	{"中間検査", 50, "中間工程での品質検査"},
	{"最終組立完了", 80, "最終的な組立作業の完了"},
	{"最終検査", 95, "出荷前の最終品質検査"},
	{"出荷準備完了", 100, "納品準備の完了"},
}

// Service derives production schedules from quotes. Schedules are never stored.
type Service struct {
	deps shared.Dependencies
}

func NewService(deps shared.Dependencies) *Service {
	return &Service{deps: deps}
}

// Generate derives the schedule for a stored quote.
func (s *Service) Generate(quoteID string) (*entities.ProductionSchedule, error) {
	quote, ok := s.deps.State.Quote(quoteID)
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", quoteID, entities.ErrNotFound)
	}
	return s.GenerateFor(quote)
}

// GenerateFor derives the schedule for quote. The quote needs a BOM, a
// manufacturing start date and a delivery date, and the BOM must resolve.
func (s *Service) GenerateFor(quote *entities.Quote) (*entities.ProductionSchedule, error) {
	if !quote.Schedulable() {
		s.deps.Notifier.Notify("製造スケジュール生成には、BOM、製造開始日、納期が必要です", notify.Warning)
		return nil, fmt.Errorf("quote %s needs bom, start and delivery dates: %w", quote.QuoteNumber, entities.ErrPrecondition)
	}
	bom, ok := s.deps.State.BOM(quote.BOMID)
	if !ok {
		s.deps.Notifier.Notify("対応するBOMが見つかりません", notify.Warning)
		return nil, fmt.Errorf("bom %s for quote %s: %w", quote.BOMID, quote.QuoteNumber, entities.ErrPrecondition)
	}

	schedule := &entities.ProductionSchedule{
		QuoteID:   quote.ID,
		StartDate: quote.ManufacturingStartDate,
		EndDate:   quote.DeliveryDate,
		Status:    entities.SchedulePlanned,
	}
	schedule.Milestones = GenerateMilestones(schedule.StartDate, schedule.EndDate)
	schedule.MaterialRequirements = s.materialRequirements(bom, quote)

	s.deps.Logger.Debug("schedule generated",
		zap.String("quote", quote.QuoteNumber),
		zap.Int("total_days", schedule.TotalDays()),
		zap.Int("materials", len(schedule.MaterialRequirements)))
	return schedule, nil
}

// GenerateMilestones places the fixed milestone templates between start and
// end at floor(totalDays × percentage / 100) days after start.
func GenerateMilestones(start, end time.Time) []entities.Milestone {
	totalDays := entities.DaysBetween(start, end)
	milestones := make([]entities.Milestone, 0, len(milestoneTemplates))
	for _, tmpl := range milestoneTemplates {
		milestones = append(milestones, entities.Milestone{
			Name:        tmpl.name,
			Date:        start.AddDate(0, 0, floorDiv(totalDays*tmpl.percentage, 100)),
			Description: tmpl.description,
			Status:      entities.MilestonePending,
		})
	}
	return milestones
}

func (s *Service) materialRequirements(bom *entities.BOM, quote *entities.Quote) []entities.MaterialRequirement {
	reqs := make([]entities.MaterialRequirement, 0, len(bom.Items))
	for _, item := range bom.Items {
		part, ok := s.deps.State.Part(item.PartID)
		if !ok {
			continue
		}
		required := item.RequiredDate(quote.ManufacturingStartDate, quote.DeliveryDate)
		reqs = append(reqs, entities.MaterialRequirement{
			PartID:         item.PartID,
			Quantity:       item.Quantity * quote.Quantity,
			RequiredDate:   required,
			UsageTiming:    item.UsageTiming,
			DaysAfterStart: item.DaysAfterStart,
			OrderStatus:    entities.MaterialNotOrdered,
			OrderByDate:    required.AddDate(0, 0, -part.LeadTime),
		})
	}
	return reqs
}

// View resolves a quote's schedule into display rows.
func (s *Service) View(quoteID string) (*dto.ScheduleView, error) {
	quote, ok := s.deps.State.Quote(quoteID)
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", quoteID, entities.ErrNotFound)
	}
	schedule, err := s.GenerateFor(quote)
	if err != nil {
		return nil, err
	}
	view := &dto.ScheduleView{
		QuoteNumber: quote.QuoteNumber,
		ProductName: quote.ProductName,
		Quantity:    quote.Quantity,
		Schedule:    schedule,
		Materials:   make([]dto.MaterialRow, 0, len(schedule.MaterialRequirements)),
	}
	for _, req := range schedule.MaterialRequirements {
		part, ok := s.deps.State.Part(req.PartID)
		if !ok {
			continue
		}
		view.Materials = append(view.Materials, dto.MaterialRow{
			PartNumber:   part.PartNumber,
			PartName:     part.Name,
			Quantity:     req.Quantity,
			RequiredDate: req.RequiredDate,
			OrderByDate:  req.OrderByDate,
			Timing:       req.TimingLabel(),
			OrderStatus:  req.OrderStatus.Label(),
		})
	}
	return view, nil
}

// ProductionOrder is a rendered production instruction sheet.
type ProductionOrder struct {
	FileName string
	Content  string
}

// ProductionOrderDocument renders the plain-text instruction sheet for a quote.
func (s *Service) ProductionOrderDocument(quoteID string) (*ProductionOrder, error) {
	quote, ok := s.deps.State.Quote(quoteID)
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", quoteID, entities.ErrNotFound)
	}
	schedule, err := s.GenerateFor(quote)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("製造指示書\n\n")
	fmt.Fprintf(&b, "製品名: %s\n", quote.ProductName)
	fmt.Fprintf(&b, "数量: %d\n", quote.Quantity)
	fmt.Fprintf(&b, "顧客: %s\n", quote.CustomerName)
	fmt.Fprintf(&b, "納期: %s\n\n", quote.DeliveryDate.Format(DateLayout))
	b.WriteString("製造スケジュール:\n")
	for _, m := range schedule.Milestones {
		fmt.Fprintf(&b, "・%s: %s\n", m.Date.Format(DateLayout), m.Name)
	}
	b.WriteString("\n必要資材:\n")
	for _, req := range schedule.MaterialRequirements {
		part, ok := s.deps.State.Part(req.PartID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "・%s %s: %d個\n", part.PartNumber, part.Name, req.Quantity)
	}

	s.deps.Notifier.Notify("製造指示書を作成しました", notify.Success)
	return &ProductionOrder{
		FileName: fmt.Sprintf("製造指示書_%s.txt", quote.QuoteNumber),
		Content:  b.String(),
	}, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
