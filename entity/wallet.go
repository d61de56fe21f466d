package entity

import (
	"fmt"
	"teamvest/lib/money"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the spendable balance per email, kept as a decimal string.
type Wallet struct {
	Email     string    `json:"email" bson:"email"`
	Balance   string    `json:"balance" bson:"balance"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (w *Wallet) Value() decimal.Decimal {
	return money.ParseOrZero(w.Balance)
}

// Apply moves the balance by amount in the direction of kind. The balance
// string is reparsed and reformatted through the money package, so the stored
// value stays numerically exact whatever formatting it arrived with. A debit
// past zero is refused.
func (w *Wallet) Apply(kind WalletEntryKind, amount decimal.Decimal) error {
	balance, err := money.Parse(w.Balance)
	if err != nil {
		return err
	}
	if kind == WalletDebit {
		amount = amount.Neg()
	}
	balance = balance.Add(amount)
	if balance.IsNegative() {
		return fmt.Errorf("wallet %s: balance would go negative", w.Email)
	}
	w.Balance = money.Format(balance)
	return nil
}

// WalletEntryKind distinguishes ledger directions in the history.
type WalletEntryKind string

const (
	WalletCredit WalletEntryKind = "credit"
	WalletDebit  WalletEntryKind = "debit"
)

// WalletEntry is one append-only wallet-history row.
type WalletEntry struct {
	ID        string          `json:"id" bson:"id"`
	Email     string          `json:"email" bson:"email"`
	Kind      WalletEntryKind `json:"kind" bson:"kind"`
	Amount    string          `json:"amount" bson:"amount"`
	Note      string          `json:"note" bson:"note"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
}
