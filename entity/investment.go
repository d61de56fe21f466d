package entity

import (
	"net/http"
	"teamvest/lib/money"
	"teamvest/lib/validate"
	"time"

	"github.com/shopspring/decimal"
)

// Plan distinguishes the two investment ledgers. Records live in separate
// collections but share one shape.
type Plan string

const (
	PlanNormal   Plan = "NORMAL"
	PlanPlatinum Plan = "PLATINUM"
)

// Product names of the normal plan tiers, carried on withdrawal requests.
// Both are NORMAL-plan products; platinum requests carry "Platinum".
const (
	ProductBasic    = "Basic"
	ProductClassic  = "Classic"
	ProductPlatinum = "Platinum"
)

// Investment is the aggregate open principal for one (email, plan).
// TotalAmount must equal the sum of open lots for the pair; the audit guard
// checks this after every debit but cannot enforce it retroactively.
type Investment struct {
	Email       string     `json:"email" bson:"email"`
	Plan        Plan       `json:"plan" bson:"plan"`
	TotalAmount string     `json:"total_amount" bson:"total_amount"`
	InvestDate  time.Time  `json:"invest_date" bson:"invest_date"`
	IncomeDate  *time.Time `json:"income_date,omitempty" bson:"income_date,omitempty"`
	IsClosed    bool       `json:"is_closed" bson:"is_closed"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

func (i *Investment) Total() decimal.Decimal {
	return money.ParseOrZero(i.TotalAmount)
}

// CloseRequest asks to close a user's open investment and credit the wallet.
type CloseRequest struct {
	Email string `json:"email" validate:"required,email"`
	Plan  Plan   `json:"plan" validate:"required,oneof=NORMAL PLATINUM"`
}

func (c *CloseRequest) Bind(_ *http.Request) error {
	return validate.Struct(c)
}

// CloseResult reports what a closure credited back to the wallet.
type CloseResult struct {
	Email      string `json:"email"`
	Credited   string `json:"credited"`
	MonthsHeld int    `json:"months_held"`
	Deduction  string `json:"deduction_pct"`
}
