package projection

import (
	"io"
	"log/slog"
	"teamvest/entity"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	investments map[entity.Plan][]*entity.Investment
	lots        map[entity.Plan][]*entity.InvestmentLot
	edges       []entity.Subteam
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		investments: map[entity.Plan][]*entity.Investment{},
		lots:        map[entity.Plan][]*entity.InvestmentLot{},
	}
}

func (f *fakeStore) AllOpenInvestments(plan entity.Plan) ([]*entity.Investment, error) {
	return f.investments[plan], nil
}

func (f *fakeStore) AllOpenLots(plan entity.Plan) ([]*entity.InvestmentLot, error) {
	return f.lots[plan], nil
}

func (f *fakeStore) AllSubteams() ([]entity.Subteam, error) {
	return f.edges, nil
}

func (f *fakeStore) seed(email string, plan entity.Plan, total string, incomeDate, lotDate time.Time) {
	f.investments[plan] = append(f.investments[plan], &entity.Investment{
		Email:       email,
		Plan:        plan,
		TotalAmount: total,
		InvestDate:  lotDate,
		IncomeDate:  &incomeDate,
	})
	f.lots[plan] = append(f.lots[plan], &entity.InvestmentLot{
		Email:      email,
		LotIndex:   1,
		Plan:       plan,
		Amount:     total,
		InvestDate: lotDate,
		CreatedAt:  lotDate,
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func params(start, end string) entity.ProjectionParams {
	return entity.ProjectionParams{
		StartDate: date(start),
		EndDate:   date(end),
		Page:      1,
		PerPage:   500,
	}
}

func TestTeamRateTable(t *testing.T) {
	assert.Equal(t, "1", teamRate(1).String())
	assert.Equal(t, "0.375", teamRate(2).String())
	assert.Equal(t, "0.03", teamRate(11).String())
	assert.True(t, teamRate(0).IsZero())
	assert.True(t, teamRate(12).IsZero())
}

func TestSelfRateSteps(t *testing.T) {
	old := date("2025-06-01")
	recent := date("2026-01-01")

	assert.Equal(t, "3.5", selfRate(entity.PlanNormal, decimal.NewFromInt(500), old).String())
	assert.Equal(t, "2.75", selfRate(entity.PlanNormal, decimal.NewFromInt(500), recent).String())
	assert.Equal(t, "4", selfRate(entity.PlanNormal, decimal.NewFromInt(5000), old).String())
	assert.Equal(t, "3.25", selfRate(entity.PlanNormal, decimal.NewFromInt(5000), recent).String())
	// bounds of the small-ticket band are inclusive
	assert.Equal(t, "2.75", selfRate(entity.PlanNormal, decimal.NewFromInt(50), recent).String())
	assert.Equal(t, "2.75", selfRate(entity.PlanNormal, decimal.NewFromInt(2000), recent).String())
	assert.Equal(t, "3.25", selfRate(entity.PlanNormal, decimal.NewFromInt(49), recent).String())
	// platinum is flat regardless of size or age
	assert.Equal(t, "6", selfRate(entity.PlanPlatinum, decimal.NewFromInt(49), old).String())
}

func TestStepsCadence(t *testing.T) {
	anchor := date("2026-01-01")

	got := steps(anchor, date("2026-01-01"), date("2026-03-01"))

	// first event one cadence after the anchor, then every 16 days
	require.Len(t, got, 3)
	assert.Equal(t, date("2026-01-17"), got[0])
	assert.Equal(t, date("2026-02-02"), got[1])
	assert.Equal(t, date("2026-02-18"), got[2])
}

func TestStepsRespectsRangeStart(t *testing.T) {
	anchor := date("2026-01-01")

	got := steps(anchor, date("2026-02-10"), date("2026-03-01"))

	require.Len(t, got, 1)
	assert.Equal(t, date("2026-02-18"), got[0])
}

func TestProjectSelfIncome(t *testing.T) {
	store := newFakeStore()
	// lot well outside the eligibility window, old normal rate band
	store.seed("u@example.com", entity.PlanNormal, "1000", date("2026-01-20"), date("2025-06-01"))
	engine := New(store, testLogger())

	page, err := engine.Project(params("2026-01-20", "2026-02-28"))
	require.NoError(t, err)

	// steps: 02-05 and 02-21; 1000 at 4% per step
	require.Len(t, page.Points, 2)
	for _, p := range page.Points {
		assert.Equal(t, entity.ProjectionSelf, p.Source)
		assert.Equal(t, "40", p.Amount)
	}
	assert.Equal(t, "80", page.Summary.Total)
	assert.Equal(t, "80", page.Summary.Self)
	assert.Equal(t, "0", page.Summary.Team)
	assert.Equal(t, 1, page.Summary.Users)
}

func TestProjectSkipsRecentPrincipal(t *testing.T) {
	store := newFakeStore()
	// lot created inside the trailing window of its income anchor
	store.seed("u@example.com", entity.PlanNormal, "1000", date("2026-01-20"), date("2026-01-18"))
	engine := New(store, testLogger())

	page, err := engine.Project(params("2026-01-20", "2026-02-28"))
	require.NoError(t, err)

	assert.Empty(t, page.Points)
}

func TestProjectTeamIncome(t *testing.T) {
	store := newFakeStore()
	store.seed("member@example.com", entity.PlanNormal, "10000", date("2026-01-01"), date("2025-06-01"))
	store.edges = []entity.Subteam{
		{Owner: "owner@example.com", Member: "member@example.com", Level: 2},
	}
	engine := New(store, testLogger())

	p := params("2026-01-01", "2026-01-31")
	p.Email = "owner@example.com"
	page, err := engine.Project(p)
	require.NoError(t, err)

	// one step on 01-17; 10000 at the level-2 rate of 0.375%
	require.Len(t, page.Points, 1)
	point := page.Points[0]
	assert.Equal(t, entity.ProjectionTeam, point.Source)
	assert.Equal(t, 2, point.Level)
	assert.Equal(t, "member@example.com", point.Member)
	assert.Equal(t, date("2026-01-17"), point.Date)
	assert.Equal(t, "37.5", point.Amount)
}

func TestProjectLevelBeyondElevenIgnored(t *testing.T) {
	store := newFakeStore()
	store.seed("member@example.com", entity.PlanNormal, "10000", date("2026-01-01"), date("2025-06-01"))
	store.edges = []entity.Subteam{
		{Owner: "owner@example.com", Member: "member@example.com", Level: 12},
	}
	engine := New(store, testLogger())

	p := params("2026-01-01", "2026-01-31")
	p.Email = "owner@example.com"
	page, err := engine.Project(p)
	require.NoError(t, err)

	assert.Empty(t, page.Points)
}

func TestProjectPlanFilter(t *testing.T) {
	store := newFakeStore()
	store.seed("u@example.com", entity.PlanNormal, "1000", date("2026-01-01"), date("2025-06-01"))
	store.seed("u@example.com", entity.PlanPlatinum, "2000", date("2026-01-01"), date("2025-06-01"))
	engine := New(store, testLogger())

	p := params("2026-01-01", "2026-01-31")
	p.PlanType = entity.PlanPlatinum
	page, err := engine.Project(p)
	require.NoError(t, err)

	require.Len(t, page.Points, 1)
	assert.Equal(t, entity.PlanPlatinum, page.Points[0].Plan)
	// 2000 at the flat platinum 6%
	assert.Equal(t, "120", page.Points[0].Amount)
	assert.Equal(t, "120", page.Summary.Platinum)
	assert.Equal(t, "0", page.Summary.Normal)
}

func TestProjectMissingIncomeDateSkipped(t *testing.T) {
	store := newFakeStore()
	store.investments[entity.PlanNormal] = []*entity.Investment{{
		Email:       "u@example.com",
		Plan:        entity.PlanNormal,
		TotalAmount: "1000",
		InvestDate:  date("2025-06-01"),
	}}
	engine := New(store, testLogger())

	page, err := engine.Project(params("2026-01-01", "2026-12-31"))
	require.NoError(t, err)

	assert.Empty(t, page.Points)
}

func TestProjectPaginationKeepsFullSummary(t *testing.T) {
	store := newFakeStore()
	store.seed("u@example.com", entity.PlanNormal, "1000", date("2026-01-01"), date("2025-06-01"))
	engine := New(store, testLogger())

	p := params("2026-01-01", "2026-06-30")
	p.PerPage = 2
	page, err := engine.Project(p)
	require.NoError(t, err)

	assert.Len(t, page.Points, 2)
	assert.Greater(t, page.Total, 2)
	// summary covers all points, not just the page
	total := decimal.RequireFromString(page.Summary.Total)
	perStep := decimal.NewFromInt(40)
	assert.True(t, total.Equal(perStep.Mul(decimal.NewFromInt(int64(page.Total)))))
}

func TestProjectDeterministicOrder(t *testing.T) {
	store := newFakeStore()
	store.seed("b@example.com", entity.PlanNormal, "1000", date("2026-01-01"), date("2025-06-01"))
	store.seed("a@example.com", entity.PlanNormal, "1000", date("2026-01-01"), date("2025-06-01"))
	engine := New(store, testLogger())

	page, err := engine.Project(params("2026-01-01", "2026-01-31"))
	require.NoError(t, err)

	require.Len(t, page.Points, 2)
	assert.Equal(t, "a@example.com", page.Points[0].Email)
	assert.Equal(t, "b@example.com", page.Points[1].Email)
}
