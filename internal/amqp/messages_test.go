package amqp

import (
	"testing"
	"time"
)

func TestNewTransactionEvent(t *testing.T) {
	evt := NewTransactionEvent("acct-1", "tx-1", "expense", ActionCreated)

	if evt.AccountID != "acct-1" || evt.ID != "tx-1" || evt.Kind != "expense" || evt.Action != ActionCreated {
		t.Errorf("NewTransactionEvent() = %+v", evt)
	}
	if evt.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(evt.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestTransactionEventJSON(t *testing.T) {
	evt := &TransactionEvent{
		AccountID: "acct-1",
		ID:        "tx-1",
		Kind:      "deposit",
		Action:    ActionDeleted,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := evt.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON() error = %v", err)
	}

	if parsed.ID != evt.ID || parsed.Kind != evt.Kind || parsed.Action != evt.Action {
		t.Errorf("round trip = %+v, want %+v", parsed, evt)
	}
	if !parsed.Timestamp.Equal(evt.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, evt.Timestamp)
	}
}

func TestTransactionEventFromJSONInvalid(t *testing.T) {
	if _, err := TransactionEventFromJSON([]byte(`{"id": 42}`)); err == nil {
		t.Error("expected error for mistyped field")
	}
}
