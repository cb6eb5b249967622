package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tcollab-dev/tcollab/internal/board"
	"github.com/tcollab-dev/tcollab/internal/id"
	"github.com/tcollab-dev/tcollab/internal/ledger"
	"github.com/tcollab-dev/tcollab/internal/model"
	"github.com/tcollab-dev/tcollab/internal/snapshot"
)

// handle applies one inbound mutation: validate, mutate, recompute,
// broadcast. It runs to completion before the next command is processed,
// so concurrent clients are serialized by arrival order and every
// rejection leaves the session untouched.
func (h *Hub) handle(c conn, env Envelope) {
	sessionID := c.SessionID()

	// deleteSession may target any session, so it resolves its own.
	if env.Event == EventDeleteSession {
		h.handleDeleteSession(c, env)
		return
	}

	sess, ok := h.registry.Get(sessionID)
	if !ok {
		h.reject(c, env.Event, fmt.Sprintf("session %q no longer exists", sessionID))
		return
	}

	switch env.Event {
	case EventAddAccount:
		h.handleAddAccount(c, sess, env)
	case EventBoxMoved:
		h.handleBoxMoved(c, sess, env)
	case EventRenameAccount:
		h.handleRenameAccount(c, sess, env)
	case EventDeleteAccount:
		h.handleDeleteAccount(c, sess, env)
	case EventClearAllAccounts:
		h.handleClearAll(c, sess)
	case EventAccountsArranged:
		h.handleAccountsArranged(c, sess, env)
	case EventAddTransaction:
		h.handleAddTransaction(c, sess, env)
	case EventDeleteTransaction:
		h.handleDeleteTransaction(c, sess, env)
	case EventToggleTransactionActivity:
		h.handleToggleActive(c, sess, env)
	case EventReorderTransactions:
		h.handleReorder(c, sess, env)
	case EventEditTransactionDescription:
		h.handleEditDescription(c, sess, env)
	case EventStartHighlightTransaction, EventEndHighlightTransaction:
		h.handleHighlight(c, sess, env)
	case EventUpdateSessionTitle:
		h.handleUpdateTitle(c, sess, env)
	case EventStateImported:
		h.handleStateImported(c, sess, env)
	default:
		h.logger.Warn("unknown event", "event", env.Event, "session", sessionID)
	}
}

// reject drops a mutation: a diagnostic log plus an operationRejected
// event to the requester only. Nothing is broadcast and no state changed.
func (h *Hub) reject(c conn, event, reason string) {
	h.logger.Warn("mutation rejected", "event", event, "session", c.SessionID(), "reason", reason)
	h.toClient(c, EventOperationRejected, RejectionPayload{Event: event, Reason: reason})
}

func (h *Hub) handleAddAccount(c conn, sess *board.Session, env Envelope) {
	var account model.Account
	if err := json.Unmarshal(env.Data, &account); err != nil {
		h.reject(c, env.Event, "malformed account payload")
		return
	}
	if account.ID == "" {
		account.ID = id.NewAccountID()
	}
	// Entry lists and totals are derived; a fresh account starts clean no
	// matter what the client claims.
	account.ResetDerived()

	sess.AddAccount(&account)
	// Re-adding an id that live transactions reference picks its entries
	// back up immediately.
	sess.Recompute()
	h.recordAudit(sess.ID, env.Event, account.ID, account.Title)

	// Broadcast the stored copy, not the local one: on an id reuse the
	// session keeps its original pointer and the recompute lands there.
	stored, _ := sess.Account(account.ID)
	h.toRoom(sess.ID, EventNewAccountAdded, stored)
}

func (h *Hub) handleBoxMoved(c conn, sess *board.Session, env Envelope) {
	var move MovePayload
	if err := json.Unmarshal(env.Data, &move); err != nil {
		h.reject(c, env.Event, "malformed position payload")
		return
	}
	if !sess.MoveAccount(move.ID, move.X, move.Y) {
		h.reject(c, env.Event, fmt.Sprintf("unknown account %q", move.ID))
		return
	}
	// The sender already holds the authoritative local position.
	h.toRoomExcept(sess.ID, c, EventBoxPositionUpdate, move)
}

func (h *Hub) handleRenameAccount(c conn, sess *board.Session, env Envelope) {
	var rename RenamePayload
	if err := json.Unmarshal(env.Data, &rename); err != nil {
		h.reject(c, env.Event, "malformed rename payload")
		return
	}
	if !sess.RenameAccount(rename.ID, rename.Title) {
		h.reject(c, env.Event, fmt.Sprintf("unknown account %q", rename.ID))
		return
	}
	h.recordAudit(sess.ID, env.Event, rename.ID, rename.Title)
	h.toRoom(sess.ID, EventAccountTitleUpdate, rename)
}

func (h *Hub) handleDeleteAccount(c conn, sess *board.Session, env Envelope) {
	var accountID string
	if err := json.Unmarshal(env.Data, &accountID); err != nil {
		h.reject(c, env.Event, "malformed account id")
		return
	}
	removedTxns, ok := sess.DeleteAccount(accountID)
	if !ok {
		h.reject(c, env.Event, fmt.Sprintf("unknown account %q", accountID))
		return
	}
	h.recordAudit(sess.ID, env.Event, accountID, fmt.Sprintf("cascaded %d transactions", len(removedTxns)))

	h.toRoom(sess.ID, EventAccountDeleted, accountID)
	for _, txnID := range removedTxns {
		h.toRoom(sess.ID, EventTransactionDeleted, txnID)
	}
	h.toRoom(sess.ID, EventAccountsUpdate, sess.Accounts())
}

func (h *Hub) handleClearAll(c conn, sess *board.Session) {
	sess.Clear()
	h.recordAudit(sess.ID, EventClearAllAccounts, "", "")
	h.toRoom(sess.ID, EventAllAccountsCleared, nil)
}

func (h *Hub) handleAccountsArranged(c conn, sess *board.Session, env Envelope) {
	var accounts []*model.Account
	if err := json.Unmarshal(env.Data, &accounts); err != nil {
		h.reject(c, env.Event, "malformed account list")
		return
	}
	sess.Rearrange(accounts)
	h.recordAudit(sess.ID, env.Event, "", fmt.Sprintf("%d accounts", len(accounts)))
	h.toRoom(sess.ID, EventAccountsArrangedUpdate, sess.Accounts())
}

func (h *Hub) handleAddTransaction(c conn, sess *board.Session, env Envelope) {
	var payload AddTransactionPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.reject(c, env.Event, "malformed transaction payload")
		return
	}
	txn := payload.Transaction
	if txn.ID == "" {
		txn.ID = id.NewTransactionID()
	}

	if errs := sess.AddTransaction(&txn, payload.AllowUnbalanced); len(errs) > 0 {
		h.reject(c, env.Event, joinValidationErrors(errs))
		return
	}
	debits, _ := txn.Totals()
	h.recordAudit(sess.ID, env.Event, txn.ID,
		fmt.Sprintf("%d entries, sum %s", len(txn.Entries), debits.StringFixed(2)))

	h.toRoom(sess.ID, EventTransactionAdded, &txn)
	h.toRoom(sess.ID, EventAccountsUpdate, sess.Accounts())
}

func (h *Hub) handleDeleteTransaction(c conn, sess *board.Session, env Envelope) {
	var txnID string
	if err := json.Unmarshal(env.Data, &txnID); err != nil {
		h.reject(c, env.Event, "malformed transaction id")
		return
	}
	if !sess.DeleteTransaction(txnID) {
		h.reject(c, env.Event, fmt.Sprintf("unknown transaction %q", txnID))
		return
	}
	h.recordAudit(sess.ID, env.Event, txnID, "")
	h.toRoom(sess.ID, EventTransactionDeleted, txnID)
	h.toRoom(sess.ID, EventAccountsUpdate, sess.Accounts())
}

func (h *Hub) handleToggleActive(c conn, sess *board.Session, env Envelope) {
	var toggle TogglePayload
	if err := json.Unmarshal(env.Data, &toggle); err != nil {
		h.reject(c, env.Event, "malformed toggle payload")
		return
	}
	if !sess.SetTransactionActive(toggle.TransactionID, toggle.IsActive) {
		h.reject(c, env.Event, fmt.Sprintf("unknown transaction %q", toggle.TransactionID))
		return
	}
	h.recordAudit(sess.ID, env.Event, toggle.TransactionID, fmt.Sprintf("isActive=%t", toggle.IsActive))
	h.toRoom(sess.ID, EventTransactionActivityUpdated, toggle)
	h.toRoom(sess.ID, EventAccountsUpdate, sess.Accounts())
}

func (h *Hub) handleReorder(c conn, sess *board.Session, env Envelope) {
	var ids []string
	if err := json.Unmarshal(env.Data, &ids); err != nil {
		h.reject(c, env.Event, "malformed id list")
		return
	}
	sess.ReorderTransactions(ids)
	// Order changed but membership and balances did not; replicas replace
	// their list wholesale.
	h.toRoom(sess.ID, EventInitialTransactions, sess.Transactions())
}

func (h *Hub) handleEditDescription(c conn, sess *board.Session, env Envelope) {
	var edit DescriptionPayload
	if err := json.Unmarshal(env.Data, &edit); err != nil {
		h.reject(c, env.Event, "malformed description payload")
		return
	}
	if !sess.SetTransactionDescription(edit.TransactionID, edit.NewDescription) {
		h.reject(c, env.Event, fmt.Sprintf("unknown transaction %q", edit.TransactionID))
		return
	}
	h.recordAudit(sess.ID, env.Event, edit.TransactionID, edit.NewDescription)
	h.toRoom(sess.ID, EventTransactionDescriptionUpdated, edit)
	// The edit recomputed, refreshing entry descriptions.
	h.toRoom(sess.ID, EventAccountsUpdate, sess.Accounts())
}

// handleHighlight relays a transient hover signal. No state is stored or
// validated; this shares the room fan-out with the durable mutations but
// must never be confused with one.
func (h *Hub) handleHighlight(c conn, sess *board.Session, env Envelope) {
	var hl HighlightPayload
	if err := json.Unmarshal(env.Data, &hl); err != nil {
		h.reject(c, env.Event, "malformed highlight payload")
		return
	}
	if env.Event == EventStartHighlightTransaction {
		hl.ShouldHighlight = true
		h.toRoomExcept(sess.ID, c, EventHighlightTransaction, hl)
		return
	}
	hl.ShouldHighlight = false
	h.toRoomExcept(sess.ID, c, EventUnhighlightTransaction, hl)
}

func (h *Hub) handleUpdateTitle(c conn, sess *board.Session, env Envelope) {
	var title string
	if err := json.Unmarshal(env.Data, &title); err != nil {
		h.reject(c, env.Event, "malformed title")
		return
	}
	sess.Title = title
	h.recordAudit(sess.ID, env.Event, sess.ID, title)
	h.toRoom(sess.ID, EventSessionTitleUpdated, title)
	// The directory is a global cross-session listing.
	h.toAll(EventActiveSessionsList, h.registry.Directory())
}

func (h *Hub) handleDeleteSession(c conn, env Envelope) {
	var sessionID string
	if err := json.Unmarshal(env.Data, &sessionID); err != nil {
		h.reject(c, env.Event, "malformed session id")
		return
	}
	if err := h.registry.Delete(sessionID); err != nil {
		h.logger.Warn("session delete rejected", "session", sessionID, "error", err)
		h.toClient(c, EventSessionDeleteError, SessionDeleteErrorPayload{
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return
	}
	h.recordAudit(sessionID, env.Event, sessionID, "")
	// Members are notified and expected to redirect; the hub does not
	// force-disconnect them.
	h.toRoom(sessionID, EventSessionDeleted, sessionID)
	h.toAll(EventActiveSessionsList, h.registry.Directory())
}

func (h *Hub) handleStateImported(c conn, sess *board.Session, env Envelope) {
	snap, err := snapshot.Read(bytes.NewReader(env.Data))
	if err != nil {
		h.reject(c, env.Event, err.Error())
		return
	}
	sess.Import(snap)
	h.recordAudit(sess.ID, env.Event, sess.ID,
		fmt.Sprintf("%d accounts, %d transactions", len(snap.Accounts), len(snap.Transactions)))

	h.toRoom(sess.ID, EventInitialSessionTitle, sess.Title)
	h.toRoom(sess.ID, EventInitialAccounts, sess.Accounts())
	h.toRoom(sess.ID, EventInitialTransactions, sess.Transactions())
	// An imported title changes the global directory.
	h.toAll(EventActiveSessionsList, h.registry.Directory())
}

func joinValidationErrors(errs []ledger.ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
