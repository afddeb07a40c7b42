package amqp

import (
	"encoding/json"
	"time"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent is a lightweight notification that a ledger row
// changed. Consumers fetch the current state from the database, so the
// event carries identity only.
type TransactionEvent struct {
	AccountID string    `json:"account_id"`
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(accountID, id, kind, action string) *TransactionEvent {
	return &TransactionEvent{
		AccountID: accountID,
		ID:        id,
		Kind:      kind,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
