package events

import (
	"context"
	"testing"
)

func TestExpenseEventRoundTrip(t *testing.T) {
	msg := NewExpenseEvent(EventSubmitted, 7, "oikos Solar")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ExpenseEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Type != EventSubmitted || back.ID != 7 || back.Project != "oikos Solar" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestNilClientIsNoOp(t *testing.T) {
	var c *Client
	if err := c.PublishSubmitted(context.Background(), 1, "oikos Solar"); err != nil {
		t.Fatalf("nil client publish must be a no-op, got %v", err)
	}
	if err := c.PublishWithdrawn(context.Background(), 1, "oikos Solar"); err != nil {
		t.Fatalf("nil client publish must be a no-op, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("nil client close must be a no-op, got %v", err)
	}
}
