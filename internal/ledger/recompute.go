package ledger

import (
	"github.com/tcollab-dev/tcollab/internal/id"
	"github.com/tcollab-dev/tcollab/internal/model"
)

// Recompute derives every account's entry lists and totals from the active
// transaction set. It resets all derived state, then replays transactions
// in stored order, skipping inactive ones. Entry lines referencing a
// missing account are skipped silently: a transaction may hold stale
// references briefly while a cascading account delete is in flight.
//
// Recompute is deterministic and idempotent for amounts and ordering, but
// entry ids are minted fresh on every call.
func Recompute(accounts []*model.Account, transactions []*model.Transaction) {
	byID := make(map[string]*model.Account, len(accounts))
	for _, account := range accounts {
		account.ResetDerived()
		byID[account.ID] = account
	}

	for _, txn := range transactions {
		if !txn.IsActive {
			continue
		}
		for _, line := range txn.Entries {
			account, ok := byID[line.AccountID]
			if !ok {
				continue
			}
			entry := model.Entry{
				ID:            id.NewEntryID(),
				TransactionID: txn.ID,
				Amount:        line.Amount,
				Description:   txn.Description,
			}
			switch line.Type {
			case model.Debit:
				account.Debits = append(account.Debits, entry)
				account.TotalDebits = account.TotalDebits.Add(line.Amount)
			case model.Credit:
				account.Credits = append(account.Credits, entry)
				account.TotalCredits = account.TotalCredits.Add(line.Amount)
			}
		}
	}
}
