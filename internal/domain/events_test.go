package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewOutboxMessage_OrderCreated(t *testing.T) {
	order := Order{
		ID:          7,
		UserID:      3,
		Status:      OrderStatusPending,
		TotalAmount: decimal.RequireFromString("21.00"),
		Items: []OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		},
	}

	msg, err := NewOutboxMessage(AggregateOrder, order.ID, EventOrderCreated, NewOrderCreatedEvent(order))
	if err != nil {
		t.Fatalf("NewOutboxMessage failed: %v", err)
	}
	if msg.AggregateID != "7" || msg.EventType != EventOrderCreated || msg.AggregateType != AggregateOrder {
		t.Fatalf("unexpected message header: %+v", msg)
	}

	var decoded struct {
		OrderID     int64  `json:"order_id"`
		TotalAmount string `json:"total_amount"`
		Items       []struct {
			Quantity  int32  `json:"quantity"`
			UnitPrice string `json:"unit_price"`
		} `json:"items"`
	}
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if decoded.OrderID != 7 || decoded.TotalAmount != "21" || len(decoded.Items) != 1 || decoded.Items[0].UnitPrice != "10.5" {
		t.Fatalf("unexpected payload: %s", msg.Payload)
	}
}

func TestNewOutboxMessage_UnsupportedPayload(t *testing.T) {
	if _, err := NewOutboxMessage(AggregateUser, 1, EventUserDeleted, make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
}
