package entity

import (
	"net/http"
	"teamvest/lib/validate"
	"time"
)

// WithdrawalStatus lifecycle: pending -> approved | rejected | verified.
// Approval debits principal and credits the wallet; verified marks staff
// reconciliation of the payout.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalVerified WithdrawalStatus = "verified"
)

// WithdrawalRequest is a user's ask to pull principal out of an investment.
type WithdrawalRequest struct {
	ID          string           `json:"id" bson:"id"`
	Email       string           `json:"email" bson:"email"`
	Product     string           `json:"product" bson:"product"`
	Amount      string           `json:"amount" bson:"amount"`
	Status      WithdrawalStatus `json:"status" bson:"status"`
	RequestDate time.Time        `json:"request_date" bson:"request_date"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}

// PlanKind resolves the lot ledger a request draws from.
func (w *WithdrawalRequest) PlanKind() Plan {
	if w.Product == ProductPlatinum {
		return PlanPlatinum
	}
	return PlanNormal
}

// DeductionApplies is true for products subject to the early-withdrawal
// time-based deduction.
func (w *WithdrawalRequest) DeductionApplies() bool {
	return w.Product == ProductBasic || w.Product == ProductClassic
}

// WithdrawalAction is the operator's status-change request body.
type WithdrawalAction struct {
	Status WithdrawalStatus `json:"status" validate:"required,oneof=approved rejected verified"`
}

func (a *WithdrawalAction) Bind(_ *http.Request) error {
	return validate.Struct(a)
}
