package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent — payload события order.created.
type OrderCreatedEvent struct {
	OrderID     int64                `json:"order_id"`
	UserID      int64                `json:"user_id"`
	Status      OrderStatus          `json:"status"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	Items       []OrderItemEventLine `json:"items"`
	CreatedAt   time.Time            `json:"created_at"`
}

// OrderItemEventLine — позиция заказа внутри события.
type OrderItemEventLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderDeletedEvent — payload события order.deleted.
type OrderDeletedEvent struct {
	OrderID      int64 `json:"order_id"`
	UserID       int64 `json:"user_id"`
	ItemsRemoved int   `json:"items_removed"`
}

// ReviewCreatedEvent — payload события review.created.
type ReviewCreatedEvent struct {
	ReviewID  int64 `json:"review_id"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Rating    int   `json:"rating"`
}

// UserDeletedEvent — payload события user.deleted.
type UserDeletedEvent struct {
	UserID         int64 `json:"user_id"`
	OrdersRemoved  int   `json:"orders_removed"`
	ReviewsRemoved int   `json:"reviews_removed"`
}

// NewOrderCreatedEvent собирает payload из сохранённого заказа.
func NewOrderCreatedEvent(order Order) OrderCreatedEvent {
	lines := make([]OrderItemEventLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, OrderItemEventLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       lines,
		CreatedAt:   order.CreatedAt,
	}
}

// NewOutboxMessage сериализует payload в JSON и заполняет сообщение outbox.
func NewOutboxMessage(aggregateType string, aggregateID int64, eventType string, payload any) (OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   strconv.FormatInt(aggregateID, 10),
		EventType:     eventType,
		Payload:       data,
	}, nil
}
