// Package checkout превращает набор товаров в заказ с позициями и обслуживает
// чтение и удаление заказов владельцем.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

// Line — одна позиция запроса с явным количеством.
type Line struct {
	ProductID int64
	Quantity  int32
}

// Request — запрос checkout. Заполняется ровно одно из ProductIDs или Items.
type Request struct {
	UserID     int64
	ProductIDs []int64
	Items      []Line
}

// lines проверяет запрос и приводит обе формы к списку позиций.
// Повторяющиеся товары не объединяются: каждое вхождение даёт отдельную позицию.
func (r Request) lines() ([]Line, error) {
	if r.UserID <= 0 {
		return nil, domain.ErrUserRequired
	}
	if len(r.ProductIDs) > 0 && len(r.Items) > 0 {
		return nil, domain.ErrCheckoutAmbiguous
	}

	var lines []Line
	switch {
	case len(r.Items) > 0:
		lines = append(lines, r.Items...)
	case len(r.ProductIDs) > 0:
		lines = make([]Line, 0, len(r.ProductIDs))
		for _, id := range r.ProductIDs {
			lines = append(lines, Line{ProductID: id, Quantity: domain.DefaultItemQuantity})
		}
	default:
		return nil, domain.ErrProductIDsRequired
	}

	for i, line := range lines {
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("%w: line %d", domain.ErrProductIDInvalid, i+1)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d", domain.ErrItemQtyInvalid, i+1)
		}
	}
	return lines, nil
}

// Service реализует сценарии работы с заказами.
type Service struct {
	store   domain.Store
	metrics *metrics.ShopMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewService создаёт сервис заказов. metrics может быть nil.
func NewService(store domain.Store, m *metrics.ShopMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Checkout создаёт заказ и его позиции одной транзакцией. Цены берутся из каталога
// на момент оформления; событие order.created пишется в outbox в той же транзакции.
func (s *Service) Checkout(ctx context.Context, req Request) (domain.Order, error) {
	started := time.Now()

	lines, err := req.lines()
	if err != nil {
		s.metrics.RecordCheckout(metrics.CheckoutInvalid, 0, 0)
		return domain.Order{}, err
	}

	var created domain.Order
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		order := domain.Order{
			UserID:      req.UserID,
			Status:      domain.OrderStatusPending,
			TotalAmount: decimal.Zero,
			CreatedAt:   s.now(),
		}
		for _, line := range lines {
			product, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, line.ProductID)
				}
				return fmt.Errorf("load product %d: %w", line.ProductID, err)
			}
			item := domain.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			}
			order.Items = append(order.Items, item)
			order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
		}
		if errs := order.ValidateInvariants(); len(errs) > 0 {
			return errors.Join(errs...)
		}

		orderID, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order.ID = orderID

		for i := range order.Items {
			order.Items[i].OrderID = orderID
			itemID, err := tx.CreateOrderItem(ctx, order.Items[i])
			if err != nil {
				return fmt.Errorf("create order item %d: %w", i+1, err)
			}
			order.Items[i].ID = itemID
		}

		msg, err := domain.NewOutboxMessage(domain.AggregateOrder, orderID, domain.EventOrderCreated, domain.NewOrderCreatedEvent(order))
		if err != nil {
			return err
		}
		if _, err := tx.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue %s: %w", domain.EventOrderCreated, err)
		}

		created = order
		return nil
	})
	if err != nil {
		s.metrics.RecordCheckout(checkoutResult(err), 0, 0)
		return domain.Order{}, err
	}

	s.metrics.RecordCheckout(metrics.CheckoutSuccess, len(created.Items), time.Since(started))
	s.logger.WithFields(log.Fields{
		"order_id": created.ID,
		"user_id":  created.UserID,
		"items":    len(created.Items),
		"total":    created.TotalAmount.String(),
	}).Info("order created")
	return created, nil
}

func checkoutResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return metrics.CheckoutInvalid
	case domain.IsNotFound(err):
		return metrics.CheckoutNotFound
	default:
		return metrics.CheckoutFailed
	}
}

// List возвращает страницу заказов пользователя. Запрос проверяется до обращения к хранилищу.
func (s *Service) List(ctx context.Context, userID int64, q listing.Query) (listing.Page[domain.Order], error) {
	q, err := q.Normalize(domain.OrderListFields)
	if err != nil {
		return listing.Page[domain.Order]{}, err
	}
	return s.store.ListOrdersByUser(ctx, userID, q)
}

// Get возвращает заказ владельца. Чужой заказ неотличим от несуществующего.
func (s *Service) Get(ctx context.Context, userID, orderID int64) (domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// Delete удаляет позиции и сам заказ одной транзакцией и публикует order.deleted.
func (s *Service) Delete(ctx context.Context, userID, orderID int64) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		order, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return domain.ErrOrderNotFound
		}

		removed, err := tx.DeleteOrderItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}
		if err := tx.DeleteOrder(ctx, orderID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}

		msg, err := domain.NewOutboxMessage(domain.AggregateOrder, orderID, domain.EventOrderDeleted, domain.OrderDeletedEvent{
			OrderID:      orderID,
			UserID:       userID,
			ItemsRemoved: removed,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue %s: %w", domain.EventOrderDeleted, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordOrderDeleted()
	s.logger.WithFields(log.Fields{"order_id": orderID, "user_id": userID}).Info("order deleted")
	return nil
}
