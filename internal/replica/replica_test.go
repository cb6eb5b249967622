package replica

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcollab-dev/tcollab/internal/model"
	"github.com/tcollab-dev/tcollab/internal/relay"
)

func apply(t *testing.T, r *Replica, event string, data any) {
	t.Helper()
	env, err := relay.NewEnvelope(event, data)
	require.NoError(t, err)
	require.NoError(t, r.Apply(env))
}

func synced(t *testing.T) *Replica {
	t.Helper()
	r := New()
	apply(t, r, relay.EventInitialSessionTitle, "Main Board")
	apply(t, r, relay.EventInitialAccounts, []*model.Account{
		{ID: "acc1", Title: "Cash"},
		{ID: "acc2", Title: "Revenue"},
	})
	apply(t, r, relay.EventInitialTransactions, []*model.Transaction{})
	return r
}

func TestSynced_RequiresFullInitialReplay(t *testing.T) {
	r := New()
	assert.False(t, r.Synced())

	apply(t, r, relay.EventInitialSessionTitle, "Main Board")
	apply(t, r, relay.EventInitialAccounts, []*model.Account{})
	assert.False(t, r.Synced())

	apply(t, r, relay.EventInitialTransactions, []*model.Transaction{})
	assert.True(t, r.Synced())
}

func TestApply_AccountLifecycle(t *testing.T) {
	r := synced(t)

	apply(t, r, relay.EventNewAccountAdded, &model.Account{ID: "acc3", Title: "Expenses"})
	require.Len(t, r.Accounts, 3)

	apply(t, r, relay.EventBoxPositionUpdate, relay.MovePayload{ID: "acc3", X: 40, Y: 80})
	assert.Equal(t, 40.0, r.Accounts[2].X)

	apply(t, r, relay.EventAccountTitleUpdate, relay.RenamePayload{ID: "acc3", Title: "Operating Expenses"})
	assert.Equal(t, "Operating Expenses", r.Accounts[2].Title)

	apply(t, r, relay.EventAccountDeleted, "acc3")
	require.Len(t, r.Accounts, 2)
	assert.Equal(t, "acc1", r.Accounts[0].ID)
}

func TestApply_AccountsUpdateReplacesWholesale(t *testing.T) {
	r := synced(t)

	hundred := decimal.RequireFromString("100.00")
	apply(t, r, relay.EventAccountsUpdate, []*model.Account{
		{ID: "acc1", Title: "Cash", TotalDebits: hundred},
	})

	require.Len(t, r.Accounts, 1)
	assert.True(t, r.Accounts[0].TotalDebits.Equal(hundred))
}

func TestApply_TransactionLifecycle(t *testing.T) {
	r := synced(t)

	apply(t, r, relay.EventTransactionAdded, &model.Transaction{ID: "txn-1", Description: "sale", IsActive: true})
	require.Len(t, r.Transactions, 1)

	apply(t, r, relay.EventTransactionActivityUpdated, relay.TogglePayload{TransactionID: "txn-1", IsActive: false})
	assert.False(t, r.Transactions[0].IsActive)

	apply(t, r, relay.EventTransactionDescriptionUpdated, relay.DescriptionPayload{
		TransactionID:  "txn-1",
		NewDescription: "cash sale",
	})
	assert.Equal(t, "cash sale", r.Transactions[0].Description)

	apply(t, r, relay.EventTransactionDeleted, "txn-1")
	assert.Empty(t, r.Transactions)
}

func TestApply_ClearResetsBothCollections(t *testing.T) {
	r := synced(t)
	apply(t, r, relay.EventTransactionAdded, &model.Transaction{ID: "txn-1"})

	apply(t, r, relay.EventAllAccountsCleared, nil)

	assert.Empty(t, r.Accounts)
	assert.Empty(t, r.Transactions)
}

func TestApply_UpdatesForUnknownEntitiesIgnored(t *testing.T) {
	r := synced(t)

	apply(t, r, relay.EventBoxPositionUpdate, relay.MovePayload{ID: "acc-gone", X: 1, Y: 1})
	apply(t, r, relay.EventTransactionActivityUpdated, relay.TogglePayload{TransactionID: "txn-gone"})

	assert.Len(t, r.Accounts, 2)
	assert.Empty(t, r.Transactions)
}

func TestApply_SessionDeleted(t *testing.T) {
	r := synced(t)
	apply(t, r, relay.EventSessionDeleted, "default")
	assert.True(t, r.Deleted)
}

func TestApply_UnknownEventIgnored(t *testing.T) {
	r := synced(t)
	err := r.Apply(relay.Envelope{Event: "someFutureEvent", Data: json.RawMessage(`{}`)})
	assert.NoError(t, err)
}

func TestApply_MalformedKnownPayloadErrors(t *testing.T) {
	r := synced(t)
	err := r.Apply(relay.Envelope{Event: relay.EventUserCountUpdate, Data: json.RawMessage(`"three"`)})
	assert.Error(t, err)
}

func TestSnapshot_NeverNilSequences(t *testing.T) {
	r := New()
	snap := r.Snapshot()
	assert.NotNil(t, snap.Accounts)
	assert.NotNil(t, snap.Transactions)
}
