// Package snapshot reads and writes the whole-state export document:
// {"sessionTitle": ..., "accounts": [...], "transactions": [...]}.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tcollab-dev/tcollab/internal/model"
)

// Read decodes a snapshot document and checks its gross shape: both the
// accounts and transactions sequences must be present. The contents are
// not validated further; imported transactions are trusted as-is and
// balances are recomputed from them on import.
func Read(r io.Reader) (*model.Snapshot, error) {
	// Decode through an intermediate so absent sequences are
	// distinguishable from empty ones.
	var raw struct {
		SessionTitle string           `json:"sessionTitle"`
		Accounts     *json.RawMessage `json:"accounts"`
		Transactions *json.RawMessage `json:"transactions"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if raw.Accounts == nil {
		return nil, fmt.Errorf("invalid snapshot: missing accounts")
	}
	if raw.Transactions == nil {
		return nil, fmt.Errorf("invalid snapshot: missing transactions")
	}

	snap := &model.Snapshot{SessionTitle: raw.SessionTitle}
	if err := json.Unmarshal(*raw.Accounts, &snap.Accounts); err != nil {
		return nil, fmt.Errorf("decoding snapshot accounts: %w", err)
	}
	if err := json.Unmarshal(*raw.Transactions, &snap.Transactions); err != nil {
		return nil, fmt.Errorf("decoding snapshot transactions: %w", err)
	}
	if snap.Accounts == nil {
		snap.Accounts = []*model.Account{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []*model.Transaction{}
	}
	return snap, nil
}

// Write encodes a snapshot as indented JSON, matching the document the
// board UI exports.
func Write(w io.Writer, snap *model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}
