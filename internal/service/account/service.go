// Package account управляет пользователями: регистрация, выдача списка и удаление.
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

// MinPasswordLength — минимальная длина пароля при регистрации.
const MinPasswordLength = 8

// Hasher хэширует пароль перед сохранением.
type Hasher interface {
	Hash(password string) (string, error)
}

// Service реализует сценарии учётных записей.
type Service struct {
	store   domain.Store
	hasher  Hasher
	metrics *metrics.ShopMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewService создаёт сервис учётных записей.
func NewService(store domain.Store, hasher Hasher, m *metrics.ShopMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "account")
	}
	return &Service{
		store:   store,
		hasher:  hasher,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register создаёт пользователя. Занятый email даёт ErrEmailTaken.
func (s *Service) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	if local, host, ok := strings.Cut(email, "@"); !ok || local == "" || host == "" {
		return domain.User{}, domain.ErrEmailInvalid
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, domain.ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.store.CreateUser(ctx, domain.User{Email: email, PasswordHash: hash, CreatedAt: s.now()})
	if err != nil {
		return domain.User{}, err
	}

	s.metrics.RecordUserRegistered()
	s.logger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// List возвращает страницу пользователей.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.User], error) {
	q, err := q.Normalize(domain.UserListFields)
	if err != nil {
		return listing.Page[domain.User]{}, err
	}
	return s.store.ListUsers(ctx, q)
}

// Delete удаляет пользователя вместе с его заказами, позициями и отзывами одной транзакцией.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	var event domain.UserDeletedEvent
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}

		orderIDs, err := tx.ListOrderIDsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list orders: %w", err)
		}
		for _, orderID := range orderIDs {
			if _, err := tx.DeleteOrderItems(ctx, orderID); err != nil {
				return fmt.Errorf("delete items of order %d: %w", orderID, err)
			}
			if err := tx.DeleteOrder(ctx, orderID); err != nil {
				return fmt.Errorf("delete order %d: %w", orderID, err)
			}
		}

		reviews, err := tx.DeleteReviewsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if err := tx.DeleteUser(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}

		event = domain.UserDeletedEvent{UserID: userID, OrdersRemoved: len(orderIDs), ReviewsRemoved: reviews}
		msg, err := domain.NewOutboxMessage(domain.AggregateUser, userID, domain.EventUserDeleted, event)
		if err != nil {
			return err
		}
		if _, err := tx.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue %s: %w", domain.EventUserDeleted, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordUserDeleted()
	s.logger.WithFields(log.Fields{
		"user_id":         userID,
		"orders_removed":  event.OrdersRemoved,
		"reviews_removed": event.ReviewsRemoved,
	}).Info("user deleted")
	return nil
}
