// Package board holds the authoritative collaborative state: one Session
// aggregate per board, owned by the relay and never mutated elsewhere.
// Sessions assume single-threaded access; the relay serializes every
// mutation through one goroutine.
package board

import (
	"github.com/tcollab-dev/tcollab/internal/ledger"
	"github.com/tcollab-dev/tcollab/internal/model"
)

// Session is one isolated collaborative workspace: a set of accounts, an
// ordered transaction list, and a connection count. The transaction order
// is user-controlled and significant, it drives display numbering and the
// vertical stacking of entries inside each account.
type Session struct {
	ID             string
	Title          string
	ConnectedUsers int

	accounts []*model.Account
	byID     map[string]*model.Account

	transactions []*model.Transaction
}

// NewSession creates an empty session.
func NewSession(id, title string) *Session {
	return &Session{
		ID:           id,
		Title:        title,
		accounts:     []*model.Account{},
		byID:         make(map[string]*model.Account),
		transactions: []*model.Transaction{},
	}
}

// Exists reports whether an account id exists in this session. It
// implements ledger.AccountChecker.
func (s *Session) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Account returns an account by id.
func (s *Session) Account(id string) (*model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Accounts returns the session's accounts in insertion order.
func (s *Session) Accounts() []*model.Account {
	return s.accounts
}

// Transactions returns the session's transactions in stored order.
func (s *Session) Transactions() []*model.Transaction {
	return s.transactions
}

// Transaction returns a transaction by id.
func (s *Session) Transaction(id string) (*model.Transaction, bool) {
	for _, t := range s.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Recompute rebuilds all derived account state from the active
// transaction set.
func (s *Session) Recompute() {
	ledger.Recompute(s.accounts, s.transactions)
}

// AddAccount adds an account, or overwrites the stored copy when the id is
// already present (last writer wins).
func (s *Session) AddAccount(account *model.Account) {
	if existing, ok := s.byID[account.ID]; ok {
		*existing = *account
		return
	}
	s.accounts = append(s.accounts, account)
	s.byID[account.ID] = account
}

// RenameAccount updates an account title. Returns false when the id is
// unknown.
func (s *Session) RenameAccount(id, title string) bool {
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.Title = title
	return true
}

// MoveAccount updates an account position. Returns false when the id is
// unknown.
func (s *Session) MoveAccount(id string, x, y float64) bool {
	a, ok := s.byID[id]
	if !ok {
		return false
	}
	a.X = x
	a.Y = y
	return true
}

// DeleteAccount removes an account and cascades: every transaction that
// references the account in any entry line is hard-deleted too, then
// balances are recomputed. Returns the ids of the removed transactions and
// whether the account existed.
func (s *Session) DeleteAccount(id string) (removedTxns []string, ok bool) {
	if _, ok := s.byID[id]; !ok {
		return nil, false
	}
	delete(s.byID, id)
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts = append(s.accounts[:i], s.accounts[i+1:]...)
			break
		}
	}

	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if t.References(id) {
			removedTxns = append(removedTxns, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	s.transactions = kept

	s.Recompute()
	return removedTxns, true
}

// Rearrange replaces the account set wholesale from the supplied list.
// Accounts omitted from the list are dropped, so a recompute follows to
// drop entries that now reference nothing.
func (s *Session) Rearrange(accounts []*model.Account) {
	if accounts == nil {
		accounts = []*model.Account{}
	}
	s.accounts = accounts
	s.byID = make(map[string]*model.Account, len(accounts))
	for _, a := range accounts {
		s.byID[a.ID] = a
	}
	s.Recompute()
}

// Clear empties both accounts and transactions.
func (s *Session) Clear() {
	s.accounts = []*model.Account{}
	s.byID = make(map[string]*model.Account)
	s.transactions = []*model.Transaction{}
}

// AddTransaction validates a candidate transaction and, when admitted,
// appends it (active) and recomputes balances. A non-empty result means
// the transaction was rejected with no state change.
func (s *Session) AddTransaction(txn *model.Transaction, allowUnbalanced bool) []ledger.ValidationError {
	if errs := ledger.ValidateTransaction(txn, s, allowUnbalanced); len(errs) > 0 {
		return errs
	}
	txn.IsActive = true
	s.transactions = append(s.transactions, txn)
	s.Recompute()
	return nil
}

// DeleteTransaction hard-deletes a transaction by id and recomputes.
// Returns false when the id is unknown.
func (s *Session) DeleteTransaction(id string) bool {
	for i, t := range s.transactions {
		if t.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			s.Recompute()
			return true
		}
	}
	return false
}

// SetTransactionActive flips a transaction's activity flag and recomputes.
// Returns false when the id is unknown.
func (s *Session) SetTransactionActive(id string, active bool) bool {
	t, ok := s.Transaction(id)
	if !ok {
		return false
	}
	t.IsActive = active
	s.Recompute()
	return true
}

// SetTransactionDescription updates a transaction description and
// recomputes so the materialized entry descriptions never go stale.
// Returns false when the id is unknown.
func (s *Session) SetTransactionDescription(id, description string) bool {
	t, ok := s.Transaction(id)
	if !ok {
		return false
	}
	t.Description = description
	s.Recompute()
	return true
}

// ReorderTransactions replaces the stored order to match the supplied id
// list. Unknown ids in the list are ignored; transactions missing from the
// list keep their relative order after the listed ones. Membership,
// activity and balances are unchanged, so no recompute is needed.
func (s *Session) ReorderTransactions(ids []string) {
	listed := make(map[string]bool, len(ids))
	var reordered []*model.Transaction
	for _, id := range ids {
		if t, ok := s.Transaction(id); ok && !listed[id] {
			reordered = append(reordered, t)
			listed[id] = true
		}
	}
	for _, t := range s.transactions {
		if !listed[t.ID] {
			reordered = append(reordered, t)
		}
	}
	s.transactions = reordered
}

// Import replaces the session's accounts and transactions wholesale from a
// snapshot, optionally retitling the session, then recomputes. The
// imported transactions are trusted as-is; no per-transaction admission
// checks are re-run.
func (s *Session) Import(snap *model.Snapshot) {
	if snap.SessionTitle != "" {
		s.Title = snap.SessionTitle
	}
	if snap.Accounts == nil {
		snap.Accounts = []*model.Account{}
	}
	if snap.Transactions == nil {
		snap.Transactions = []*model.Transaction{}
	}
	s.accounts = snap.Accounts
	s.byID = make(map[string]*model.Account, len(snap.Accounts))
	for _, a := range snap.Accounts {
		s.byID[a.ID] = a
	}
	s.transactions = snap.Transactions
	s.Recompute()
}

// Snapshot captures the session's exportable state.
func (s *Session) Snapshot() *model.Snapshot {
	return &model.Snapshot{
		SessionTitle: s.Title,
		Accounts:     s.accounts,
		Transactions: s.transactions,
	}
}
