package model

import (
	"github.com/shopspring/decimal"
)

// Account is one T-account box on the board. The entry lists and totals are
// derived state: they are regenerated from the active transaction set on
// every recomputation and must never be edited directly.
type Account struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	X            float64         `json:"x"`
	Y            float64         `json:"y"`
	Debits       []Entry         `json:"debits"`
	Credits      []Entry         `json:"credits"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
}

// Entry is a single amount materialized on one side of an account.
// Entries are a transient projection: every recomputation discards them and
// mints replacements with fresh ids, so an entry id is only meaningful
// within one broadcast cycle.
type Entry struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

// ResetDerived clears the entry lists and zeroes both totals, leaving the
// account ready for recomputation.
func (a *Account) ResetDerived() {
	a.Debits = []Entry{}
	a.Credits = []Entry{}
	a.TotalDebits = decimal.Zero
	a.TotalCredits = decimal.Zero
}
