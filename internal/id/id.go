package id

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes distinguish the three id families on the wire. Clients mint
// account and transaction ids too, so the prefix is a convention, not a
// guarantee: the server accepts any opaque non-empty string.
const (
	accountPrefix     = "tAcc-"
	transactionPrefix = "txn-"
	entryPrefix       = "entry-"
)

// NewAccountID mints an id like "tAcc-4f9d...".
func NewAccountID() string {
	return accountPrefix + uuid.NewString()
}

// NewTransactionID mints an id like "txn-4f9d...".
func NewTransactionID() string {
	return transactionPrefix + uuid.NewString()
}

// NewEntryID mints an id for a materialized entry. Entry ids are ephemeral:
// every recomputation mints fresh ones.
func NewEntryID() string {
	return entryPrefix + uuid.NewString()
}

// IsAccountID reports whether an id carries the account prefix.
func IsAccountID(id string) bool {
	return strings.HasPrefix(id, accountPrefix)
}

// IsTransactionID reports whether an id carries the transaction prefix.
func IsTransactionID(id string) bool {
	return strings.HasPrefix(id, transactionPrefix)
}
