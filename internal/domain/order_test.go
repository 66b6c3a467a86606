package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	return domain.Order{
		ID:          1,
		UserID:      7,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.RequireFromString("12.50"),
		Items: []domain.OrderItem{
			{ID: 1, OrderID: 1, ProductID: 3, Quantity: 5, UnitPrice: decimal.RequireFromString("2.50")},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{name: "no user", mut: func(o *domain.Order) { o.UserID = 0 }},
		{name: "no items", mut: func(o *domain.Order) { o.Items = nil }},
		{name: "qty invalid", mut: func(o *domain.Order) { o.Items[0].Quantity = 0 }},
		{name: "product invalid", mut: func(o *domain.Order) { o.Items[0].ProductID = 0 }},
		{name: "price invalid", mut: func(o *domain.Order) { o.Items[0].UnitPrice = decimal.NewFromInt(-1) }},
		{name: "amount mismatch", mut: func(o *domain.Order) { o.TotalAmount = decimal.NewFromInt(999) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			order.Items = append([]domain.OrderItem(nil), order.Items...)
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := domain.OrderItem{Quantity: 3, UnitPrice: decimal.RequireFromString("0.10")}
	if got := item.Subtotal(); !got.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("expected subtotal 0.30, got %s", got)
	}
}
