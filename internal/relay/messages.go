package relay

import (
	"encoding/json"
	"fmt"

	"github.com/tcollab-dev/tcollab/internal/model"
)

// Envelope is the wire frame for every message in both directions:
// an event name plus a typed JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope builds an envelope around a marshaled payload.
func NewEnvelope(event string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: raw}, nil
}

// Inbound mutation requests (client to server).
const (
	EventAddAccount                 = "addAccount"
	EventBoxMoved                   = "boxMoved"
	EventRenameAccount              = "renameAccount"
	EventDeleteAccount              = "deleteAccount"
	EventClearAllAccounts           = "clearAllAccounts"
	EventAccountsArranged           = "accountsArranged"
	EventAddTransaction             = "addTransaction"
	EventDeleteTransaction          = "deleteTransaction"
	EventToggleTransactionActivity  = "toggleTransactionActivity"
	EventReorderTransactions        = "reorderTransactions"
	EventEditTransactionDescription = "editTransactionDescription"
	EventStartHighlightTransaction  = "startHighlightTransaction"
	EventEndHighlightTransaction    = "endHighlightTransaction"
	EventUpdateSessionTitle         = "updateSessionTitle"
	EventDeleteSession              = "deleteSession"
	EventStateImported              = "stateImported"
)

// Outbound events (server to clients).
const (
	EventInitialSessionTitle           = "initialSessionTitle"
	EventInitialAccounts               = "initialAccounts"
	EventInitialTransactions           = "initialTransactions"
	EventActiveSessionsList            = "activeSessionsList"
	EventNewAccountAdded               = "newAccountAdded"
	EventBoxPositionUpdate             = "boxPositionUpdate"
	EventAccountTitleUpdate            = "accountTitleUpdate"
	EventAccountDeleted                = "accountDeleted"
	EventAllAccountsCleared            = "allAccountsCleared"
	EventAccountsArrangedUpdate        = "accountsArrangedUpdate"
	EventAccountsUpdate                = "accountsUpdate"
	EventTransactionAdded              = "transactionAdded"
	EventTransactionDeleted            = "transactionDeleted"
	EventTransactionDescriptionUpdated = "transactionDescriptionUpdated"
	EventTransactionActivityUpdated    = "transactionActivityUpdated"
	EventHighlightTransaction          = "highlightTransaction"
	EventUnhighlightTransaction        = "unhighlightTransaction"
	EventUserCountUpdate               = "userCountUpdate"
	EventSessionTitleUpdated           = "sessionTitleUpdated"
	EventSessionDeleted                = "sessionDeleted"
	EventSessionDeleteError            = "sessionDeleteError"
	EventOperationRejected             = "operationRejected"
)

// MovePayload carries a boxMoved request and its boxPositionUpdate echo.
type MovePayload struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// RenamePayload carries renameAccount and accountTitleUpdate.
type RenamePayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AddTransactionPayload is a candidate transaction plus the optional
// unbalanced-override flag.
type AddTransactionPayload struct {
	model.Transaction
	AllowUnbalanced bool `json:"allowUnbalanced,omitempty"`
}

// UnmarshalJSON decodes the transaction and the override flag from the
// same object. The flag must be read separately: the embedded
// Transaction's unmarshaler would otherwise be promoted and swallow it.
func (p *AddTransactionPayload) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Transaction); err != nil {
		return err
	}
	var flag struct {
		AllowUnbalanced bool `json:"allowUnbalanced"`
	}
	if err := json.Unmarshal(data, &flag); err != nil {
		return err
	}
	p.AllowUnbalanced = flag.AllowUnbalanced
	return nil
}

// TogglePayload carries toggleTransactionActivity and
// transactionActivityUpdated.
type TogglePayload struct {
	TransactionID string `json:"transactionId"`
	IsActive      bool   `json:"isActive"`
}

// DescriptionPayload carries editTransactionDescription and
// transactionDescriptionUpdated.
type DescriptionPayload struct {
	TransactionID  string `json:"transactionId"`
	NewDescription string `json:"newDescription"`
}

// HighlightPayload carries the transient hover relay events.
type HighlightPayload struct {
	TransactionID   string `json:"transactionId"`
	ShouldHighlight bool   `json:"shouldHighlight"`
}

// RejectionPayload tells the requester, and only the requester, that a
// mutation was dropped.
type RejectionPayload struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// SessionDeleteErrorPayload is returned to the requester when a session
// delete is rejected.
type SessionDeleteErrorPayload struct {
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}
