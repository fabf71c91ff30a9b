package events

import (
	"encoding/json"
	"time"

	"github.com/username/budget-planner/internal/budget"
)

// TransactionPlannedMessage announces a planned transaction created by salary generation
type TransactionPlannedMessage struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category,omitempty"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionPlannedMessage builds a message from a stored transaction
func NewTransactionPlannedMessage(t budget.Transaction) *TransactionPlannedMessage {
	msg := &TransactionPlannedMessage{
		ID:        t.ID,
		Date:      t.Date.Format("2006-01-02"),
		Amount:    t.Amount.String(),
		Status:    string(t.Status),
		Timestamp: time.Now(),
	}
	if t.Category != nil {
		msg.Category = t.Category.Name
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *TransactionPlannedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionPlannedMessageFromJSON decodes a message
func TransactionPlannedMessageFromJSON(data []byte) (*TransactionPlannedMessage, error) {
	var msg TransactionPlannedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
