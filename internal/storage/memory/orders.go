package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
)

var orderAccessor = listing.Accessor[domain.Order]{
	Less: map[string]func(a, b domain.Order) bool{
		"id":           func(a, b domain.Order) bool { return a.ID < b.ID },
		"status":       func(a, b domain.Order) bool { return a.Status < b.Status },
		"total_amount": func(a, b domain.Order) bool { return a.TotalAmount.LessThan(b.TotalAmount) },
		"created_at":   func(a, b domain.Order) bool { return a.CreatedAt.Before(b.CreatedAt) },
	},
	Text: func(o domain.Order) string { return string(o.Status) },
}

func (st *state) CreateOrder(_ context.Context, order domain.Order) (int64, error) {
	if _, ok := st.users[order.UserID]; !ok {
		return 0, domain.ErrUserNotFound
	}
	st.nextOrderID++
	order.ID = st.nextOrderID
	order.Items = nil
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now()
	}
	st.orders[order.ID] = order
	return order.ID, nil
}

func (st *state) CreateOrderItem(_ context.Context, item domain.OrderItem) (int64, error) {
	if _, ok := st.orders[item.OrderID]; !ok {
		return 0, domain.ErrOrderNotFound
	}
	if _, ok := st.products[item.ProductID]; !ok {
		return 0, domain.ErrProductNotFound
	}
	st.nextItemID++
	item.ID = st.nextItemID
	st.items[item.ID] = item
	return item.ID, nil
}

func (st *state) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	order, ok := st.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = st.itemsOf(id)
	return order, nil
}

func (st *state) ListOrdersByUser(_ context.Context, userID int64, q listing.Query) (listing.Page[domain.Order], error) {
	orders := sortedValues(st.orders, func(o domain.Order) bool { return o.UserID == userID })
	page := listing.Apply(orders, q, orderAccessor)
	for i := range page.Items {
		page.Items[i].Items = st.itemsOf(page.Items[i].ID)
	}
	return page, nil
}

func (st *state) ListOrderIDsByUser(_ context.Context, userID int64) ([]int64, error) {
	orders := sortedValues(st.orders, func(o domain.Order) bool { return o.UserID == userID })
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids, nil
}

func (st *state) DeleteOrderItems(_ context.Context, orderID int64) (int, error) {
	deleted := 0
	for id, item := range st.items {
		if item.OrderID == orderID {
			delete(st.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOrder требует, чтобы позиции заказа были удалены заранее.
func (st *state) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := st.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	for _, item := range st.items {
		if item.OrderID == id {
			return fmt.Errorf("delete order %d: order items still reference it", id)
		}
	}
	delete(st.orders, id)
	return nil
}

func (st *state) itemsOf(orderID int64) []domain.OrderItem {
	return sortedValues(st.items, func(i domain.OrderItem) bool { return i.OrderID == orderID })
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateOrder(ctx, order)
}

func (s *Store) CreateOrderItem(ctx context.Context, item domain.OrderItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateOrderItem(ctx, item)
}

// GetOrder возвращает заказ вместе с позициями.
func (s *Store) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetOrder(ctx, id)
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64, q listing.Query) (listing.Page[domain.Order], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListOrdersByUser(ctx, userID, q)
}

func (s *Store) ListOrderIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListOrderIDsByUser(ctx, userID)
}

func (s *Store) DeleteOrderItems(ctx context.Context, orderID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteOrderItems(ctx, orderID)
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteOrder(ctx, id)
}
