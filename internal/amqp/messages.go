package amqp

import (
	"encoding/json"
	"time"

	"virtuallet/internal/core"
)

// TransactionBookedMessage announces a transaction that was written to the ledger.
// Amounts are signed cents: positive for income, negative for expenses.
type TransactionBookedMessage struct {
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	AutoIncome  bool      `json:"auto_income"`
	CreatedAt   time.Time `json:"created_at"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionBookedMessage(t core.Transaction) *TransactionBookedMessage {
	return &TransactionBookedMessage{
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		AutoIncome:  t.AutoIncome,
		CreatedAt:   t.CreatedAt,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionBookedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionBookedMessageFromJSON creates a message from JSON bytes
func TransactionBookedMessageFromJSON(data []byte) (*TransactionBookedMessage, error) {
	var msg TransactionBookedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Transaction converts the message back into a domain transaction.
func (m *TransactionBookedMessage) Transaction() core.Transaction {
	return core.Transaction{
		Description: m.Description,
		Amount:      core.Money{Cents: m.AmountCents},
		AutoIncome:  m.AutoIncome,
		CreatedAt:   m.CreatedAt,
	}
}
