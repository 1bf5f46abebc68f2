package amqp

import (
	"encoding/json"
	"time"
)

// Record kinds carried by ledger events.
const (
	KindIncome  = "income"
	KindExpense = "expense"
	KindGoal    = "goal"
)

// LedgerEventMessage announces a newly appended ledger record. It is
// intentionally lightweight: only kind and ID travel on the wire, the
// worker fetches the full record from the database.
type LedgerEventMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(kind string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
