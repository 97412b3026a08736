package entities

import "time"

// ScheduleStatus is the overall state of a production schedule.
type ScheduleStatus int

const (
	SchedulePlanned ScheduleStatus = iota
	ScheduleInProgress
	ScheduleCompleted
	ScheduleDelayed
)

var scheduleStatusNames = []string{"planned", "in_progress", "completed", "delayed"}

func (s ScheduleStatus) String() string { return enumName(scheduleStatusNames, int(s)) }

func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	return parseEnum[ScheduleStatus]("schedule status", scheduleStatusNames, s)
}

func (s ScheduleStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ScheduleStatus) UnmarshalText(b []byte) error {
	v, err := ParseScheduleStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MilestoneStatus is the state of a single milestone.
type MilestoneStatus int

const (
	MilestonePending MilestoneStatus = iota
	MilestoneCompleted
	MilestoneDelayed
)

var milestoneStatusNames = []string{"pending", "completed", "delayed"}

func (s MilestoneStatus) String() string { return enumName(milestoneStatusNames, int(s)) }

func (s MilestoneStatus) Label() string {
	switch s {
	case MilestonePending:
		return "予定"
	case MilestoneCompleted:
		return "完了"
	case MilestoneDelayed:
		return "遅延"
	default:
		return s.String()
	}
}

func ParseMilestoneStatus(s string) (MilestoneStatus, error) {
	return parseEnum[MilestoneStatus]("milestone status", milestoneStatusNames, s)
}

func (s MilestoneStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *MilestoneStatus) UnmarshalText(b []byte) error {
	v, err := ParseMilestoneStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MaterialOrderStatus tracks procurement of a material requirement.
type MaterialOrderStatus int

const (
	MaterialNotOrdered MaterialOrderStatus = iota
	MaterialOrdered
	MaterialDelivered
)

var materialOrderStatusNames = []string{"not_ordered", "ordered", "delivered"}

func (s MaterialOrderStatus) String() string { return enumName(materialOrderStatusNames, int(s)) }

func (s MaterialOrderStatus) Label() string {
	switch s {
	case MaterialNotOrdered:
		return "未発注"
	case MaterialOrdered:
		return "発注済み"
	case MaterialDelivered:
		return "納品済み"
	default:
		return s.String()
	}
}

func ParseMaterialOrderStatus(s string) (MaterialOrderStatus, error) {
	return parseEnum[MaterialOrderStatus]("material order status", materialOrderStatusNames, s)
}

func (s MaterialOrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *MaterialOrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseMaterialOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Milestone is a dated checkpoint between start and delivery.
type Milestone struct {
	Name        string          `json:"name"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Status      MilestoneStatus `json:"status"`
}

// MaterialRequirement is the quantity of a part needed by a date.
type MaterialRequirement struct {
	PartID         string              `json:"partId"`
	Quantity       int                 `json:"quantity"`
	RequiredDate   time.Time           `json:"requiredDate"`
	UsageTiming    UsageTiming         `json:"usageTiming"`
	DaysAfterStart int                 `json:"daysAfterStart,omitempty"`
	OrderStatus    MaterialOrderStatus `json:"orderStatus"`
	OrderByDate    time.Time           `json:"orderByDate"`
}

// TimingLabel is the display text of the usage timing.
func (r MaterialRequirement) TimingLabel() string {
	return BOMItem{UsageTiming: r.UsageTiming, DaysAfterStart: r.DaysAfterStart}.TimingLabel()
}

// ProductionSchedule is derived from a quote and its BOM and never stored.
type ProductionSchedule struct {
	QuoteID              string                `json:"quoteId"`
	StartDate            time.Time             `json:"startDate"`
	EndDate              time.Time             `json:"endDate"`
	Status               ScheduleStatus        `json:"status"`
	Milestones           []Milestone           `json:"milestones"`
	MaterialRequirements []MaterialRequirement `json:"materialRequirements"`
}

// TotalDays is the whole number of days between start and end.
func (s *ProductionSchedule) TotalDays() int {
	return DaysBetween(s.StartDate, s.EndDate)
}

// DaysBetween returns floor((to - from) / 24h).
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
