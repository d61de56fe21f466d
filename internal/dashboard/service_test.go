package dashboard

import (
	"io"
	"log/slog"
	"teamvest/entity"
	"teamvest/internal/database"
	"teamvest/lib/money"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	investments map[string]*entity.Investment
	lots        map[string][]*entity.InvestmentLot
	withdrawals map[string]*entity.WithdrawalRequest
	claims      []*entity.RewardClaimed
	progress    []*entity.UserProgress

	credits   []credit
	closed    []string
	debitErr  error
	newTotal  string
	mutations []entity.LotMutation
}

type credit struct {
	email  string
	amount string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		investments: map[string]*entity.Investment{},
		lots:        map[string][]*entity.InvestmentLot{},
		withdrawals: map[string]*entity.WithdrawalRequest{},
	}
}

func key(email string, plan entity.Plan) string { return email + "/" + string(plan) }

func (f *fakeStore) GetInvestment(email string, plan entity.Plan) (*entity.Investment, error) {
	inv, ok := f.investments[key(email, plan)]
	if !ok || inv.IsClosed {
		return nil, database.ErrNotFound
	}
	return inv, nil
}

func (f *fakeStore) OpenLots(email string, plan entity.Plan) ([]*entity.InvestmentLot, error) {
	var open []*entity.InvestmentLot
	for _, lot := range f.lots[key(email, plan)] {
		if !lot.Closed {
			open = append(open, lot)
		}
	}
	return open, nil
}

func (f *fakeStore) ApplyDebit(email string, plan entity.Plan, mutations []entity.LotMutation, newTotal string) error {
	if f.debitErr != nil {
		return f.debitErr
	}
	byIndex := map[int]entity.LotMutation{}
	for _, m := range mutations {
		byIndex[m.LotIndex] = m
	}
	for _, lot := range f.lots[key(email, plan)] {
		if m, ok := byIndex[lot.LotIndex]; ok {
			lot.Amount = m.NewAmount
			lot.Closed = m.Closed
		}
	}
	f.investments[key(email, plan)].TotalAmount = newTotal
	f.mutations = mutations
	f.newTotal = newTotal
	return nil
}

func (f *fakeStore) CloseInvestment(email string, plan entity.Plan) error {
	inv, ok := f.investments[key(email, plan)]
	if !ok {
		return database.ErrNotFound
	}
	inv.IsClosed = true
	f.closed = append(f.closed, key(email, plan))
	return nil
}

func (f *fakeStore) CreditWallet(email string, amount decimal.Decimal, _ string) error {
	f.credits = append(f.credits, credit{email: email, amount: money.Format(amount)})
	return nil
}

func (f *fakeStore) GetWithdrawal(id string) (*entity.WithdrawalRequest, error) {
	req, ok := f.withdrawals[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeStore) SetWithdrawalStatus(id string, from, to entity.WithdrawalStatus) error {
	req, ok := f.withdrawals[id]
	if !ok || req.Status != from {
		return database.ErrConflict
	}
	req.Status = to
	return nil
}

func (f *fakeStore) AllRewardClaimed() ([]*entity.RewardClaimed, error) { return f.claims, nil }
func (f *fakeStore) AllUserProgress() ([]*entity.UserProgress, error)   { return f.progress, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

func seedInvestment(f *fakeStore, email string, plan entity.Plan, total string, investDate time.Time) {
	f.investments[key(email, plan)] = &entity.Investment{
		Email:       email,
		Plan:        plan,
		TotalAmount: total,
		InvestDate:  investDate,
	}
}

func seedLot(f *fakeStore, email string, plan entity.Plan, index int, amount string, investDate time.Time) {
	f.lots[key(email, plan)] = append(f.lots[key(email, plan)], &entity.InvestmentLot{
		Email:      email,
		LotIndex:   index,
		Plan:       plan,
		Amount:     amount,
		InvestDate: investDate,
		CreatedAt:  investDate,
	})
}

func TestClosureDeductionTiers(t *testing.T) {
	cases := []struct {
		plan   entity.Plan
		months int
		want   string
	}{
		{entity.PlanNormal, 0, "20"},
		{entity.PlanNormal, 5, "20"},
		{entity.PlanNormal, 6, "10"},
		{entity.PlanNormal, 11, "10"},
		{entity.PlanNormal, 12, "0"},
		{entity.PlanPlatinum, 5, "20"},
		{entity.PlanPlatinum, 6, "15"},
		{entity.PlanPlatinum, 11, "15"},
		{entity.PlanPlatinum, 12, "0"},
	}
	for _, tc := range cases {
		got := closureDeduction(tc.plan, tc.months)
		assert.Equal(t, tc.want, got.String(), "plan %s months %d", tc.plan, tc.months)
	}
}

func TestCloseInvestmentAppliesDeduction(t *testing.T) {
	store := newFakeStore()
	// 200 days is six full 30-day months, the milder tier
	seedInvestment(store, "u@example.com", entity.PlanNormal, "1000", daysAgo(200))
	svc := New(store, testLogger())

	result, err := svc.CloseInvestment("u@example.com", entity.PlanNormal)
	require.NoError(t, err)

	assert.Equal(t, 6, result.MonthsHeld)
	assert.Equal(t, "10", result.Deduction)
	assert.Equal(t, "900", result.Credited)
	require.Len(t, store.credits, 1)
	assert.Equal(t, "900", store.credits[0].amount)
	assert.Contains(t, store.closed, "u@example.com/NORMAL")
}

func TestCloseInvestmentExactBoundary(t *testing.T) {
	store := newFakeStore()
	// exactly 180 days already counts as six months
	seedInvestment(store, "u@example.com", entity.PlanNormal, "1000", daysAgo(180))
	svc := New(store, testLogger())

	result, err := svc.CloseInvestment("u@example.com", entity.PlanNormal)
	require.NoError(t, err)

	assert.Equal(t, 6, result.MonthsHeld)
	assert.Equal(t, "10", result.Deduction)
}

func TestCloseInvestmentNoneOpen(t *testing.T) {
	svc := New(newFakeStore(), testLogger())

	_, err := svc.CloseInvestment("ghost@example.com", entity.PlanNormal)
	assert.ErrorIs(t, err, ErrNoActiveInvestment)
}

func TestWithdrawalDeductionTiers(t *testing.T) {
	assert.Equal(t, "20", withdrawalDeduction(0).String())
	assert.Equal(t, "20", withdrawalDeduction(179).String())
	assert.Equal(t, "10", withdrawalDeduction(180).String())
	assert.Equal(t, "10", withdrawalDeduction(364).String())
	assert.Equal(t, "0", withdrawalDeduction(365).String())
}

func TestApproveWithdrawalDebitsAndCredits(t *testing.T) {
	store := newFakeStore()
	seedInvestment(store, "u@example.com", entity.PlanNormal, "350", daysAgo(200))
	seedLot(store, "u@example.com", entity.PlanNormal, 1, "100", daysAgo(400))
	seedLot(store, "u@example.com", entity.PlanNormal, 2, "50", daysAgo(300))
	seedLot(store, "u@example.com", entity.PlanNormal, 3, "200", daysAgo(200))
	store.withdrawals["w1"] = &entity.WithdrawalRequest{
		ID:      "w1",
		Email:   "u@example.com",
		Product: entity.ProductBasic,
		Amount:  "120",
		Status:  entity.WithdrawalPending,
	}
	svc := New(store, testLogger())

	req, err := svc.UpdateWithdrawalStatus("w1", entity.WithdrawalApproved)
	require.NoError(t, err)

	assert.Equal(t, entity.WithdrawalApproved, req.Status)
	assert.Equal(t, "230", store.newTotal)
	require.Len(t, store.mutations, 2)
	assert.True(t, store.mutations[0].Closed)
	assert.Equal(t, "30", store.mutations[1].NewAmount)

	// Basic product held 200 days: 10 percent deduction on the payout
	require.Len(t, store.credits, 1)
	assert.Equal(t, "108", store.credits[0].amount)
}

func TestApproveWithdrawalNoDeductionForPlatinum(t *testing.T) {
	store := newFakeStore()
	seedInvestment(store, "u@example.com", entity.PlanPlatinum, "500", daysAgo(10))
	seedLot(store, "u@example.com", entity.PlanPlatinum, 1, "500", daysAgo(10))
	store.withdrawals["w2"] = &entity.WithdrawalRequest{
		ID:      "w2",
		Email:   "u@example.com",
		Product: entity.ProductPlatinum,
		Amount:  "200",
		Status:  entity.WithdrawalPending,
	}
	svc := New(store, testLogger())

	_, err := svc.UpdateWithdrawalStatus("w2", entity.WithdrawalApproved)
	require.NoError(t, err)

	require.Len(t, store.credits, 1)
	assert.Equal(t, "200", store.credits[0].amount)
}

func TestApproveWithdrawalInsufficientLots(t *testing.T) {
	store := newFakeStore()
	seedInvestment(store, "u@example.com", entity.PlanNormal, "100", daysAgo(10))
	seedLot(store, "u@example.com", entity.PlanNormal, 1, "100", daysAgo(10))
	store.withdrawals["w3"] = &entity.WithdrawalRequest{
		ID:      "w3",
		Email:   "u@example.com",
		Product: entity.ProductBasic,
		Amount:  "500",
		Status:  entity.WithdrawalPending,
	}
	svc := New(store, testLogger())

	_, err := svc.UpdateWithdrawalStatus("w3", entity.WithdrawalApproved)
	require.Error(t, err)

	// nothing was claimed, debited or credited
	assert.Equal(t, entity.WithdrawalPending, store.withdrawals["w3"].Status)
	assert.Empty(t, store.credits)
}

func TestApproveWithdrawalRevertsOnDebitFailure(t *testing.T) {
	store := newFakeStore()
	seedInvestment(store, "u@example.com", entity.PlanNormal, "300", daysAgo(10))
	seedLot(store, "u@example.com", entity.PlanNormal, 1, "300", daysAgo(10))
	store.withdrawals["w4"] = &entity.WithdrawalRequest{
		ID:      "w4",
		Email:   "u@example.com",
		Product: entity.ProductBasic,
		Amount:  "100",
		Status:  entity.WithdrawalPending,
	}
	store.debitErr = assert.AnError
	svc := New(store, testLogger())

	_, err := svc.UpdateWithdrawalStatus("w4", entity.WithdrawalApproved)
	require.Error(t, err)

	assert.Equal(t, entity.WithdrawalPending, store.withdrawals["w4"].Status)
	assert.Empty(t, store.credits)
}

func TestWithdrawalStatusRepeatRejected(t *testing.T) {
	store := newFakeStore()
	store.withdrawals["w5"] = &entity.WithdrawalRequest{
		ID:     "w5",
		Email:  "u@example.com",
		Status: entity.WithdrawalRejected,
	}
	svc := New(store, testLogger())

	_, err := svc.UpdateWithdrawalStatus("w5", entity.WithdrawalRejected)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestWithdrawalRejectSkipsLedger(t *testing.T) {
	store := newFakeStore()
	store.withdrawals["w6"] = &entity.WithdrawalRequest{
		ID:     "w6",
		Email:  "u@example.com",
		Status: entity.WithdrawalPending,
	}
	svc := New(store, testLogger())

	req, err := svc.UpdateWithdrawalStatus("w6", entity.WithdrawalRejected)
	require.NoError(t, err)

	assert.Equal(t, entity.WithdrawalRejected, req.Status)
	assert.Empty(t, store.credits)
	assert.Empty(t, store.mutations)
}

func seedClaim(f *fakeStore, email string, t entity.RewardType, status entity.RewardStatus, when time.Time) {
	doc := &entity.RewardClaimed{Email: email}
	state := doc.State(t)
	state.IsEligible = true
	state.IsClaimed = status != entity.RewardRejected
	state.Status = status
	state.RewardAmount = "500"
	state.ClaimedDate = &when
	if status == entity.RewardApproved || status == entity.RewardRejected {
		state.ApprovedDate = &when
	}
	f.claims = append(f.claims, doc)
}

func TestDashboardProgressTab(t *testing.T) {
	store := newFakeStore()
	store.progress = []*entity.UserProgress{
		{Email: "b@example.com", CurrentRank: entity.RankSilver, TotalVolume: "4000"},
		{Email: "a@example.com", CurrentRank: entity.RankBronze, TotalVolume: "100"},
	}
	svc := New(store, testLogger())

	page, err := svc.Dashboard(TabProgress, &Filter{Page: 1, PerPage: 50})
	require.NoError(t, err)

	require.Len(t, page.Rows, 2)
	assert.Equal(t, "a@example.com", page.Rows[0].Email)
	assert.Equal(t, "b@example.com", page.Rows[1].Email)
}

func TestDashboardProgressRankFilter(t *testing.T) {
	store := newFakeStore()
	store.progress = []*entity.UserProgress{
		{Email: "a@example.com", CurrentRank: entity.RankBronze},
		{Email: "b@example.com", CurrentRank: entity.RankSilver},
	}
	svc := New(store, testLogger())

	page, err := svc.Dashboard(TabProgress, &Filter{Rank: entity.RankSilver, Page: 1, PerPage: 50})
	require.NoError(t, err)

	require.Len(t, page.Rows, 1)
	assert.Equal(t, "b@example.com", page.Rows[0].Email)
}

func TestDashboardApprovedTabDateRange(t *testing.T) {
	store := newFakeStore()
	seedClaim(store, "old@example.com", entity.RewardSilver, entity.RewardApproved, date("2026-01-10"))
	seedClaim(store, "new@example.com", entity.RewardSilver, entity.RewardApproved, date("2026-03-10"))
	svc := New(store, testLogger())

	page, err := svc.Dashboard(TabApproved, &Filter{
		From:    date("2026-03-01"),
		To:      date("2026-03-31"),
		Page:    1,
		PerPage: 50,
	})
	require.NoError(t, err)

	require.Len(t, page.Rows, 1)
	assert.Equal(t, "new@example.com", page.Rows[0].Email)
	assert.Equal(t, entity.RewardApproved, page.Rows[0].Status)
}

func TestDashboardClaimedTab(t *testing.T) {
	store := newFakeStore()
	seedClaim(store, "c@example.com", entity.RewardGold, entity.RewardProcessing, date("2026-02-01"))
	seedClaim(store, "done@example.com", entity.RewardGold, entity.RewardApproved, date("2026-02-01"))
	store.progress = []*entity.UserProgress{
		{Email: "c@example.com", CurrentRank: entity.RankGold, TotalVolume: "12000"},
	}
	svc := New(store, testLogger())

	page, err := svc.Dashboard(TabClaimed, &Filter{Page: 1, PerPage: 50})
	require.NoError(t, err)

	require.Len(t, page.Rows, 1)
	row := page.Rows[0]
	assert.Equal(t, "c@example.com", row.Email)
	assert.Equal(t, entity.RewardGold, row.CurrentRank)
	assert.Equal(t, "12000", row.TotalVolume)
}

func TestDashboardPagination(t *testing.T) {
	store := newFakeStore()
	store.progress = []*entity.UserProgress{
		{Email: "a@example.com"}, {Email: "b@example.com"}, {Email: "c@example.com"},
	}
	svc := New(store, testLogger())

	page, err := svc.Dashboard(TabProgress, &Filter{Page: 2, PerPage: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "c@example.com", page.Rows[0].Email)
}

func TestDashboardUnknownTab(t *testing.T) {
	svc := New(newFakeStore(), testLogger())

	_, err := svc.Dashboard(Tab("bogus"), &Filter{Page: 1, PerPage: 50})
	assert.Error(t, err)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
