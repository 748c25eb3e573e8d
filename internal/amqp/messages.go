package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityExpense  = "expense"
	EntityCategory = "category"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpReset   = "reset"
)

// BudgetChangedMessage announces a committed change to the budget file.
// Consumers re-read the entity by id; the message carries no field values.
type BudgetChangedMessage struct {
	ID        uuid.UUID `json:"id"`
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	EntityID  int       `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetChangedMessage creates a message with a fresh id and the current time.
func NewBudgetChangedMessage(entity, op string, entityID int) *BudgetChangedMessage {
	return &BudgetChangedMessage{
		ID:        uuid.New(),
		Entity:    entity,
		Op:        op,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetChangedMessageFromJSON decodes a message published by ToJSON.
func BudgetChangedMessageFromJSON(data []byte) (*BudgetChangedMessage, error) {
	var msg BudgetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
