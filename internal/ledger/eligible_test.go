package ledger

import (
	"teamvest/entity"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func lot(index int, amount string, created string) *entity.InvestmentLot {
	return &entity.InvestmentLot{
		Email:      "user@example.com",
		LotIndex:   index,
		Plan:       entity.PlanNormal,
		Amount:     amount,
		InvestDate: date(created),
		CreatedAt:  date(created),
		Source:     entity.LotSourceNew,
	}
}

func TestEligibleSplitsRecentPrincipal(t *testing.T) {
	anchor := date("2026-01-20")
	inv := &entity.Investment{
		Email:       "user@example.com",
		Plan:        entity.PlanNormal,
		TotalAmount: "1000",
		IncomeDate:  &anchor,
	}
	lots := []*entity.InvestmentLot{
		lot(1, "800", "2026-01-05"),
		lot(2, "200", "2026-01-18"),
	}

	res, err := Eligible(inv, lots)
	require.NoError(t, err)
	assert.Equal(t, "800", res.Principal.String())
	assert.Equal(t, "200", res.RecentSum.String())
	require.Len(t, res.EligibleLots, 1)
	assert.Equal(t, 1, res.EligibleLots[0].LotIndex)
}

func TestEligibleWindowBoundsInclusive(t *testing.T) {
	anchor := date("2026-01-20")
	inv := &entity.Investment{
		TotalAmount: "300",
		IncomeDate:  &anchor,
	}
	lots := []*entity.InvestmentLot{
		lot(1, "100", "2026-01-13"), // window start, recent
		lot(2, "100", "2026-01-20"), // window end, recent
		lot(3, "100", "2026-01-12"), // one day before the window
	}

	res, err := Eligible(inv, lots)
	require.NoError(t, err)
	assert.Equal(t, "200", res.RecentSum.String())
	assert.Equal(t, "100", res.Principal.String())
}

func TestEligibleMissingIncomeDate(t *testing.T) {
	inv := &entity.Investment{TotalAmount: "500"}

	_, err := Eligible(inv, nil)
	assert.ErrorIs(t, err, ErrMissingIncomeDate)
}

func TestEligibleSkipsClosedLots(t *testing.T) {
	anchor := date("2026-01-20")
	inv := &entity.Investment{
		TotalAmount: "100",
		IncomeDate:  &anchor,
	}
	closed := lot(1, "400", "2026-01-19")
	closed.Closed = true
	lots := []*entity.InvestmentLot{
		closed,
		lot(2, "100", "2026-01-01"),
	}

	res, err := Eligible(inv, lots)
	require.NoError(t, err)
	assert.Equal(t, "0", res.RecentSum.String())
	assert.Equal(t, "100", res.Principal.String())
}

func TestEligiblePrincipalNeverNegative(t *testing.T) {
	anchor := date("2026-01-20")
	// aggregate lags behind the lots: recent sum exceeds the stored total
	inv := &entity.Investment{
		TotalAmount: "100",
		IncomeDate:  &anchor,
	}
	lots := []*entity.InvestmentLot{
		lot(1, "250", "2026-01-19"),
	}

	res, err := Eligible(inv, lots)
	require.NoError(t, err)
	assert.True(t, res.Principal.IsZero())
}

func TestEligibleTimestampFallback(t *testing.T) {
	anchor := date("2026-01-20")
	inv := &entity.Investment{
		TotalAmount: "100",
		IncomeDate:  &anchor,
	}
	// no createdAt, investDate inside the window
	l := &entity.InvestmentLot{
		LotIndex:   1,
		Amount:     "100",
		InvestDate: date("2026-01-19"),
	}

	res, err := Eligible(inv, []*entity.InvestmentLot{l})
	require.NoError(t, err)
	assert.Equal(t, "100", res.RecentSum.String())
	assert.True(t, res.Principal.IsZero())
}
