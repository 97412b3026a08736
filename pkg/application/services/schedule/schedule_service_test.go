package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svctesting "github.com/vsinha/bomkit/pkg/application/services/testing"
	"github.com/vsinha/bomkit/pkg/domain/entities"
	"github.com/vsinha/bomkit/pkg/infrastructure/notify"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scheduledQuote(t *testing.T) (*svctesting.Env, *entities.Quote) {
	t.Helper()
	env := svctesting.NewEnv(t)
	shop := svctesting.BuildWorkshop(t, env)
	bom := env.AddBOM(t, "Controller", 0,
		svctesting.Item(t, shop.Resistor.ID, 2, entities.AtManufacturing, 0),
		svctesting.Item(t, shop.Capacitor.ID, 3, entities.DaysAfterStart, 5),
		svctesting.Item(t, "deleted-part", 1, entities.AtManufacturing, 0),
		svctesting.Item(t, shop.Bracket.ID, 1, entities.AtDelivery, 0),
	)
	quote := env.AddQuote(t, bom.ID, 4, date(2025, 4, 1), date(2025, 5, 1))
	return env, quote
}

func TestGenerateMilestones(t *testing.T) {
	milestones := GenerateMilestones(date(2025, 4, 1), date(2025, 5, 1))
	require.Len(t, milestones, 7)

	expectedOffsets := []int{0, 3, 9, 15, 24, 28, 30}
	for i, m := range milestones {
		expected := date(2025, 4, 1).AddDate(0, 0, expectedOffsets[i])
		if !m.Date.Equal(expected) {
			t.Errorf("Expected milestone %s on %s, got %s", m.Name, expected.Format(DateLayout), m.Date.Format(DateLayout))
		}
		assert.Equal(t, entities.MilestonePending, m.Status)
		if i > 0 {
			assert.False(t, m.Date.Before(milestones[i-1].Date), "milestones are monotonic")
		}
	}
	assert.Equal(t, "製造開始", milestones[0].Name)
	assert.Equal(t, "出荷準備完了", milestones[6].Name)
}

func TestGenerateMilestones_PartialDayIsFloored(t *testing.T) {
	start := date(2025, 4, 1)
	end := start.Add(9*24*time.Hour + 20*time.Hour)

	milestones := GenerateMilestones(start, end)
	assert.Equal(t, start.AddDate(0, 0, 9), milestones[6].Date, "9.8 days floors to 9")
	assert.Equal(t, start.AddDate(0, 0, 4), milestones[3].Date)
}

func TestGenerate(t *testing.T) {
	env, quote := scheduledQuote(t)

	schedule, err := NewService(env.Deps).Generate(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, schedule.QuoteID)
	assert.Equal(t, entities.SchedulePlanned, schedule.Status)
	assert.Equal(t, 30, schedule.TotalDays())

	reqs := schedule.MaterialRequirements
	require.Len(t, reqs, 3, "missing part excluded")

	testCases := []struct {
		quantity int
		required time.Time
		orderBy  time.Time
	}{
		{8, date(2025, 4, 1), date(2025, 3, 25)},
		{12, date(2025, 4, 6), date(2025, 3, 23)},
		{4, date(2025, 5, 1), date(2025, 4, 28)},
	}
	for i, tc := range testCases {
		assert.Equal(t, tc.quantity, reqs[i].Quantity, "requirement %d", i)
		assert.Equal(t, tc.required, reqs[i].RequiredDate, "requirement %d", i)
		assert.Equal(t, tc.orderBy, reqs[i].OrderByDate, "requirement %d", i)
		assert.Equal(t, entities.MaterialNotOrdered, reqs[i].OrderStatus)
	}
	assert.Equal(t, "製造開始5日後", reqs[1].TimingLabel())
}

func TestGenerate_Deterministic(t *testing.T) {
	env, quote := scheduledQuote(t)
	service := NewService(env.Deps)

	first, err := service.Generate(quote.ID)
	require.NoError(t, err)
	second, err := service.Generate(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_Preconditions(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(q *entities.Quote)
		message string
	}{
		{"no bom", func(q *entities.Quote) { q.BOMID = "" }, "製造スケジュール生成には"},
		{"no start date", func(q *entities.Quote) { q.ManufacturingStartDate = time.Time{} }, "製造スケジュール生成には"},
		{"bom gone", func(q *entities.Quote) { q.BOMID = "deleted-bom" }, "対応するBOMが見つかりません"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, quote := scheduledQuote(t)
			tc.mutate(quote)

			schedule, err := NewService(env.Deps).Generate(quote.ID)
			assert.ErrorIs(t, err, entities.ErrPrecondition)
			assert.Nil(t, schedule)
			assert.True(t, env.Notices.Contains(notify.Warning, tc.message))
		})
	}

	env := svctesting.NewEnv(t)
	_, err := NewService(env.Deps).Generate("missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestView(t *testing.T) {
	env, quote := scheduledQuote(t)

	view, err := NewService(env.Deps).View(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.QuoteNumber, view.QuoteNumber)
	require.Len(t, view.Materials, 3)
	assert.Equal(t, "C-200", view.Materials[1].PartNumber)
	assert.Equal(t, "未発注", view.Materials[1].OrderStatus)
	assert.Equal(t, "納品時", view.Materials[2].Timing)
}

func TestProductionOrderDocument(t *testing.T) {
	env, quote := scheduledQuote(t)

	doc, err := NewService(env.Deps).ProductionOrderDocument(quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "製造指示書_"+quote.QuoteNumber+".txt", doc.FileName)
	assert.True(t, strings.HasPrefix(doc.Content, "製造指示書\n"))
	assert.Contains(t, doc.Content, "納期: 2025/05/01")
	assert.Contains(t, doc.Content, "・2025/04/16: 中間検査")
	assert.Contains(t, doc.Content, "・R-100 Resistor 10k: 8個")
	assert.NotContains(t, doc.Content, "deleted-part")
	assert.True(t, env.Notices.Contains(notify.Success, "製造指示書を作成しました"))
}
