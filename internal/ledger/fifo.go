package ledger

import (
	"sort"
	"teamvest/entity"
	"teamvest/lib/money"

	"github.com/shopspring/decimal"
)

// DebitPlan is the outcome of planning a FIFO debit over open lots.
type DebitPlan struct {
	// Mutations lists only the lots that change. A fully consumed lot is
	// zeroed and closed; a partially consumed lot keeps the remainder.
	Mutations []entity.LotMutation
	// Remaining is the open-lot total left after the debit.
	Remaining decimal.Decimal
}

// PlanDebit walks open lots oldest first and consumes the requested amount.
// Oldest principal leaves the ledger first: lots are ordered by
// (investDate, createdAt) ascending. If the open lots cannot cover the
// amount the debit is a data-integrity violation and the caller must reject
// the withdrawal instead of over-debiting.
func PlanDebit(lots []*entity.InvestmentLot, amount decimal.Decimal) (*DebitPlan, error) {
	open := make([]*entity.InvestmentLot, 0, len(lots))
	for _, lot := range lots {
		if !lot.Closed {
			open = append(open, lot)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].InvestDate.Equal(open[j].InvestDate) {
			return open[i].InvestDate.Before(open[j].InvestDate)
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	if OpenLotsSum(open).LessThan(amount) {
		return nil, ErrInsufficientLots
	}

	plan := &DebitPlan{}
	left := amount
	remaining := decimal.Zero
	for _, lot := range open {
		value := lot.Value()
		if left.IsPositive() {
			if value.LessThanOrEqual(left) {
				left = left.Sub(value)
				plan.Mutations = append(plan.Mutations, entity.LotMutation{
					LotIndex:  lot.LotIndex,
					NewAmount: "0",
					Closed:    true,
				})
				continue
			}
			value = value.Sub(left)
			left = decimal.Zero
			plan.Mutations = append(plan.Mutations, entity.LotMutation{
				LotIndex:  lot.LotIndex,
				NewAmount: money.Format(value),
				Closed:    false,
			})
		}
		remaining = remaining.Add(value)
	}
	plan.Remaining = remaining
	return plan, nil
}
