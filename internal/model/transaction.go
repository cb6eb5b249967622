package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EntryType is the side of an account an entry line posts to.
type EntryType string

const (
	Debit  EntryType = "debit"
	Credit EntryType = "credit"
)

// Valid reports whether the type is one of the two known sides.
func (t EntryType) Valid() bool {
	return t == Debit || t == Credit
}

// EntryLine is one line of a transaction: an amount posted to one side of
// one account.
type EntryLine struct {
	AccountID string          `json:"accountId"`
	Type      EntryType       `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
}

// Transaction is a named group of entry lines across accounts. An inactive
// transaction stays in the list but contributes nothing to any balance.
type Transaction struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Entries     []EntryLine `json:"entries"`
	IsActive    bool        `json:"isActive"`
}

// UnmarshalJSON decodes a transaction, defaulting a missing isActive
// field to true. Only an explicit false deactivates; older export
// documents omit the field entirely.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		IsActive *bool `json:"isActive"`
		*alias
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.IsActive = aux.IsActive == nil || *aux.IsActive
	return nil
}

// References reports whether any entry line posts to the given account.
func (t *Transaction) References(accountID string) bool {
	for _, line := range t.Entries {
		if line.AccountID == accountID {
			return true
		}
	}
	return false
}

// Totals returns the transaction's debit and credit sums.
func (t *Transaction) Totals() (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, line := range t.Entries {
		switch line.Type {
		case Debit:
			debits = debits.Add(line.Amount)
		case Credit:
			credits = credits.Add(line.Amount)
		}
	}
	return debits, credits
}
