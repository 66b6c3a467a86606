// Package review принимает и выдаёт отзывы о товарах.
package review

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

// Request — входные данные отзыва. Указатели различают отсутствующее поле и нулевое значение.
type Request struct {
	UserID    int64
	ProductID int64
	Rating    *int
	Comment   *string
}

func (r Request) toReview(now time.Time) (domain.Review, error) {
	if r.Rating == nil {
		return domain.Review{}, domain.ErrRatingRequired
	}
	if r.Comment == nil || strings.TrimSpace(*r.Comment) == "" {
		return domain.Review{}, domain.ErrCommentRequired
	}

	review := domain.Review{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    *r.Rating,
		Comment:   strings.TrimSpace(*r.Comment),
		CreatedAt: now,
	}
	if errs := review.Validate(); len(errs) > 0 {
		return domain.Review{}, errs[0]
	}
	return review, nil
}

// Service реализует сценарии отзывов.
type Service struct {
	store   domain.Store
	metrics *metrics.ShopMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewService создаёт сервис отзывов.
func NewService(store domain.Store, m *metrics.ShopMetrics, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "review")
	}
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create сохраняет отзыв и событие review.created. Возвращает id отзыва.
func (s *Service) Create(ctx context.Context, req Request) (int64, error) {
	review, err := req.toReview(s.now())
	if err != nil {
		return 0, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Repositories) error {
		if _, err := tx.GetProduct(ctx, review.ProductID); err != nil {
			return err
		}

		id, err := tx.CreateReview(ctx, review)
		if err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		review.ID = id

		msg, err := domain.NewOutboxMessage(domain.AggregateReview, id, domain.EventReviewCreated, domain.ReviewCreatedEvent{
			ReviewID:  id,
			UserID:    review.UserID,
			ProductID: review.ProductID,
			Rating:    review.Rating,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("enqueue %s: %w", domain.EventReviewCreated, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordReviewCreated()
	s.logger.WithFields(log.Fields{
		"review_id":  review.ID,
		"product_id": review.ProductID,
		"rating":     review.Rating,
	}).Info("review created")
	return review.ID, nil
}

// ListByProduct возвращает страницу отзывов товара; для неизвестного товара — ErrProductNotFound.
func (s *Service) ListByProduct(ctx context.Context, productID int64, q listing.Query) (listing.Page[domain.Review], error) {
	q, err := q.Normalize(domain.ReviewListFields)
	if err != nil {
		return listing.Page[domain.Review]{}, err
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return listing.Page[domain.Review]{}, err
	}
	return s.store.ListReviewsByProduct(ctx, productID, q)
}
