package model

// Snapshot is the whole-state export/import document. Import trusts the
// contained transactions as-is; balances are recomputed from them after the
// session is replaced.
type Snapshot struct {
	SessionTitle string         `json:"sessionTitle,omitempty"`
	Accounts     []*Account     `json:"accounts"`
	Transactions []*Transaction `json:"transactions"`
}
