package events

import (
	"encoding/json"
	"time"
)

const (
	EventSubmitted = "expense.submitted"
	EventWithdrawn = "expense.withdrawn"
)

// ExpenseEvent is a lightweight review-pipeline message. It carries only
// the id and owning project; consumers fetch the full row themselves.
type ExpenseEvent struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Project   string    `json:"project"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(eventType string, id int64, project string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      eventType,
		ID:        id,
		Project:   project,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
