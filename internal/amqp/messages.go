package amqp

import (
	"encoding/json"
	"time"

	"coppia/internal/core"
)

// Entities that can appear in a ledger-change message.
const (
	EntityExpense      = "expense"
	EntityContribution = "contribution"
	EntityFinances     = "finances"
)

// LedgerChangedMessage notifies the worker that a record affecting a
// period's snapshot was written. It carries only identifiers; the worker
// reloads the full period from the database before recomputing.
type LedgerChangedMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage builds a change notification for one record.
func NewLedgerChangedMessage(entity, id string, period core.Period) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		Entity:    entity,
		ID:        id,
		Year:      period.Year,
		Month:     period.Month,
		Timestamp: time.Now(),
	}
}

// Period returns the message's period tag.
func (m *LedgerChangedMessage) Period() core.Period {
	return core.Period{Year: m.Year, Month: m.Month}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON creates a message from JSON bytes
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
