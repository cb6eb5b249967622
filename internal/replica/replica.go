// Package replica maintains a client-side mirror of one session. It is
// the consuming end of the relay protocol: every applied event
// overwrites the corresponding local state wholesale, so the mirror
// always converges on what the server last broadcast.
package replica

import (
	"encoding/json"
	"fmt"

	"github.com/tcollab-dev/tcollab/internal/board"
	"github.com/tcollab-dev/tcollab/internal/model"
	"github.com/tcollab-dev/tcollab/internal/relay"
)

// Replica mirrors a session's accounts, transactions and metadata. It
// performs no validation and no recomputation of its own; derived
// totals arrive precomputed inside the account payloads.
type Replica struct {
	SessionTitle string
	Accounts     []*model.Account
	Transactions []*model.Transaction
	UserCount    int
	Sessions     []board.SessionInfo

	// Deleted is set when the mirrored session is removed server-side.
	Deleted bool

	seenTitle        bool
	seenAccounts     bool
	seenTransactions bool
}

// New returns an empty replica awaiting its initial state replay.
func New() *Replica {
	return &Replica{}
}

// Synced reports whether the initial state replay has completed, that
// is, all three initial events have been applied at least once.
func (r *Replica) Synced() bool {
	return r.seenTitle && r.seenAccounts && r.seenTransactions
}

// Snapshot captures the mirrored state as an export document.
func (r *Replica) Snapshot() *model.Snapshot {
	snap := &model.Snapshot{
		SessionTitle: r.SessionTitle,
		Accounts:     r.Accounts,
		Transactions: r.Transactions,
	}
	if snap.Accounts == nil {
		snap.Accounts = []*model.Account{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []*model.Transaction{}
	}
	return snap
}

// Apply folds one server event into the mirror. Unknown events are
// ignored so older clients keep working against newer servers; a
// malformed payload for a known event is an error.
func (r *Replica) Apply(env relay.Envelope) error {
	switch env.Event {
	case relay.EventInitialSessionTitle:
		if err := unmarshal(env, &r.SessionTitle); err != nil {
			return err
		}
		r.seenTitle = true

	case relay.EventInitialAccounts:
		if err := unmarshal(env, &r.Accounts); err != nil {
			return err
		}
		r.seenAccounts = true

	case relay.EventInitialTransactions:
		if err := unmarshal(env, &r.Transactions); err != nil {
			return err
		}
		r.seenTransactions = true

	case relay.EventSessionTitleUpdated:
		return unmarshal(env, &r.SessionTitle)

	case relay.EventActiveSessionsList:
		return unmarshal(env, &r.Sessions)

	case relay.EventUserCountUpdate:
		return unmarshal(env, &r.UserCount)

	case relay.EventNewAccountAdded:
		var account model.Account
		if err := unmarshal(env, &account); err != nil {
			return err
		}
		r.upsertAccount(&account)

	case relay.EventBoxPositionUpdate:
		var move relay.MovePayload
		if err := unmarshal(env, &move); err != nil {
			return err
		}
		if acc := r.account(move.ID); acc != nil {
			acc.X = move.X
			acc.Y = move.Y
		}

	case relay.EventAccountTitleUpdate:
		var rename relay.RenamePayload
		if err := unmarshal(env, &rename); err != nil {
			return err
		}
		if acc := r.account(rename.ID); acc != nil {
			acc.Title = rename.Title
		}

	case relay.EventAccountDeleted:
		var accountID string
		if err := unmarshal(env, &accountID); err != nil {
			return err
		}
		r.removeAccount(accountID)

	case relay.EventAllAccountsCleared:
		r.Accounts = []*model.Account{}
		r.Transactions = []*model.Transaction{}

	case relay.EventAccountsUpdate, relay.EventAccountsArrangedUpdate:
		return unmarshal(env, &r.Accounts)

	case relay.EventTransactionAdded:
		var txn model.Transaction
		if err := unmarshal(env, &txn); err != nil {
			return err
		}
		r.upsertTransaction(&txn)

	case relay.EventTransactionDeleted:
		var txnID string
		if err := unmarshal(env, &txnID); err != nil {
			return err
		}
		r.removeTransaction(txnID)

	case relay.EventTransactionActivityUpdated:
		var toggle relay.TogglePayload
		if err := unmarshal(env, &toggle); err != nil {
			return err
		}
		if txn := r.transaction(toggle.TransactionID); txn != nil {
			txn.IsActive = toggle.IsActive
		}

	case relay.EventTransactionDescriptionUpdated:
		var edit relay.DescriptionPayload
		if err := unmarshal(env, &edit); err != nil {
			return err
		}
		if txn := r.transaction(edit.TransactionID); txn != nil {
			txn.Description = edit.NewDescription
		}

	case relay.EventSessionDeleted:
		r.Deleted = true
	}

	return nil
}

func unmarshal(env relay.Envelope, v any) error {
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("applying %s: %w", env.Event, err)
	}
	return nil
}

func (r *Replica) account(id string) *model.Account {
	for _, acc := range r.Accounts {
		if acc.ID == id {
			return acc
		}
	}
	return nil
}

func (r *Replica) upsertAccount(account *model.Account) {
	for i, acc := range r.Accounts {
		if acc.ID == account.ID {
			r.Accounts[i] = account
			return
		}
	}
	r.Accounts = append(r.Accounts, account)
}

func (r *Replica) removeAccount(id string) {
	for i, acc := range r.Accounts {
		if acc.ID == id {
			r.Accounts = append(r.Accounts[:i], r.Accounts[i+1:]...)
			return
		}
	}
}

func (r *Replica) transaction(id string) *model.Transaction {
	for _, txn := range r.Transactions {
		if txn.ID == id {
			return txn
		}
	}
	return nil
}

func (r *Replica) upsertTransaction(txn *model.Transaction) {
	for i, t := range r.Transactions {
		if t.ID == txn.ID {
			r.Transactions[i] = txn
			return
		}
	}
	r.Transactions = append(r.Transactions, txn)
}

func (r *Replica) removeTransaction(id string) {
	for i, txn := range r.Transactions {
		if txn.ID == id {
			r.Transactions = append(r.Transactions[:i], r.Transactions[i+1:]...)
			return
		}
	}
}
