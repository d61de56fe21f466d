package entity

import (
	"teamvest/lib/money"
	"time"

	"github.com/shopspring/decimal"
)

// LotSource records how a lot came into existence.
type LotSource string

const (
	LotSourceNew       LotSource = "new"
	LotSourceReinvest  LotSource = "reinvest"
	LotSourceMigration LotSource = "migration"
)

// InvestmentLot is one discrete principal addition. Lots are debited oldest
// first and a closed lot is never reopened. (Email, LotIndex) is unique.
type InvestmentLot struct {
	Email      string     `json:"email" bson:"email"`
	LotIndex   int        `json:"lot_index" bson:"lot_index"`
	Plan       Plan       `json:"plan" bson:"plan"`
	Amount     string     `json:"amount" bson:"amount"`
	InvestDate time.Time  `json:"invest_date" bson:"invest_date"`
	IncomeDate *time.Time `json:"income_date,omitempty" bson:"income_date,omitempty"`
	Closed     bool       `json:"closed" bson:"closed"`
	Source     LotSource  `json:"source" bson:"source"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

func (l *InvestmentLot) Value() decimal.Decimal {
	return money.ParseOrZero(l.Amount)
}

// LotMutation is one pending change to a lot produced by a FIFO debit plan.
// The store applies all mutations of a plan plus the parent total update in
// a single transaction.
type LotMutation struct {
	LotIndex  int
	NewAmount string
	Closed    bool
}

// Timestamp is the moment the lot's principal entered the ledger:
// createdAt, falling back to investDate, then updatedAt.
func (l *InvestmentLot) Timestamp() time.Time {
	if !l.CreatedAt.IsZero() {
		return l.CreatedAt
	}
	if !l.InvestDate.IsZero() {
		return l.InvestDate
	}
	return l.UpdatedAt
}
