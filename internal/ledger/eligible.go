// Package ledger holds the lot-accounting primitives: the eligible-principal
// window calculation and the FIFO debit planner. Both are pure functions over
// already-loaded records; the store applies the results.
package ledger

import (
	"errors"
	"teamvest/entity"
	"teamvest/lib/clock"

	"github.com/shopspring/decimal"
)

// eligibilityWindowDays is the trailing window before the income anchor date
// during which fresh principal does not yet generate income.
const eligibilityWindowDays = 7

var (
	ErrMissingIncomeDate = errors.New("missing incomeDate")
	ErrInsufficientLots  = errors.New("insufficient investment amount")
)

// EligibleResult splits an investment's principal at the income anchor date.
type EligibleResult struct {
	// Principal old enough to generate income: max(total - recent, 0).
	Principal decimal.Decimal
	// RecentSum is the principal added inside the trailing window.
	RecentSum decimal.Decimal
	// EligibleLots are the open lots outside the window, used for
	// rate-weighted income projection.
	EligibleLots []*entity.InvestmentLot
}

// Eligible computes how much of the investment's principal currently counts
// toward income. The window is [incomeDate-7d, incomeDate], both ends
// inclusive; a lot's timestamp is createdAt, falling back to investDate then
// updatedAt. An investment without an income anchor date is non-processable.
func Eligible(inv *entity.Investment, lots []*entity.InvestmentLot) (*EligibleResult, error) {
	if inv.IncomeDate == nil || inv.IncomeDate.IsZero() {
		return nil, ErrMissingIncomeDate
	}
	anchor := *inv.IncomeDate

	res := &EligibleResult{
		RecentSum: decimal.Zero,
	}
	for _, lot := range lots {
		if lot.Closed {
			continue
		}
		if clock.InWindow(lot.Timestamp(), anchor, eligibilityWindowDays) {
			res.RecentSum = res.RecentSum.Add(lot.Value())
		} else {
			res.EligibleLots = append(res.EligibleLots, lot)
		}
	}

	principal := inv.Total().Sub(res.RecentSum)
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	res.Principal = principal
	return res, nil
}

// OpenLotsSum totals the open lots; the audit guard compares it against the
// parent investment's aggregate after each debit.
func OpenLotsSum(lots []*entity.InvestmentLot) decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range lots {
		if lot.Closed {
			continue
		}
		sum = sum.Add(lot.Value())
	}
	return sum
}
