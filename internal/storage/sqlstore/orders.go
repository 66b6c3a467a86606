package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
)

const orderColumns = "id, user_id, status, total_amount, created_at"

func scanOrder(row interface{ Scan(dest ...any) error }) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	if err := row.Scan(&order.ID, &order.UserID, &status, &order.TotalAmount, &order.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *repos) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	id, err := r.insertReturningID(ctx, `
		INSERT INTO orders (user_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4)`,
		order.UserID, string(order.Status), order.TotalAmount, order.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// CreateOrderItem сохраняет позицию заказа. Нарушение внешнего ключа трактуется
// как несуществующий товар: заказ создаётся в той же транзакции и всегда существует.
func (r *repos) CreateOrderItem(ctx context.Context, item domain.OrderItem) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id, err := r.insertReturningID(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, domain.ErrProductNotFound
		}
		return 0, fmt.Errorf("insert order item: %w", err)
	}
	return id, nil
}

func (r *repos) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order, err := scanOrder(r.queryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", id, err)
	}

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items[id]
	return order, nil
}

func (r *repos) ListOrdersByUser(ctx context.Context, userID int64, q listing.Query) (listing.Page[domain.Order], error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	page, err := selectPage(ctx, r, pageSource{
		columns:   orderColumns,
		table:     "orders",
		scope:     "user_id = $1",
		scopeArgs: []any{userID},
		fields:    domain.OrderListFields,
	}, q, func(rows *sql.Rows) (domain.Order, error) { return scanOrder(rows) })
	if err != nil {
		return listing.Page[domain.Order]{}, err
	}
	if len(page.Items) == 0 {
		return page, nil
	}

	ids := make([]int64, 0, len(page.Items))
	for _, order := range page.Items {
		ids = append(ids, order.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return listing.Page[domain.Order]{}, err
	}
	for i := range page.Items {
		page.Items[i].Items = items[page.Items[i].ID]
	}
	return page, nil
}

// loadItems загружает позиции сразу для нескольких заказов одним запросом.
func (r *repos) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	placeholders := make([]string, len(orderIDs))
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY order_id, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return result, nil
}

func (r *repos) ListOrderIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.query(ctx, `SELECT id FROM orders WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list order ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repos) DeleteOrderItems(ctx context.Context, orderID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete items of order %d: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// DeleteOrder удаляет заказ; позиции должны быть удалены заранее.
func (r *repos) DeleteOrder(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	return requireAffected(res, domain.ErrOrderNotFound)
}
