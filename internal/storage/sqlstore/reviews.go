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

func (r *repos) CreateReview(ctx context.Context, review domain.Review) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	id, err := r.insertReturningID(ctx, `
		INSERT INTO reviews (user_id, product_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		review.UserID, review.ProductID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, r.danglingReviewRef(ctx, err, review)
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}
	return id, nil
}

// danglingReviewRef уточняет, какая из ссылок отзыва не существует. PostgreSQL
// сообщает имя ограничения; после ошибки его транзакция прервана, и дочитывать нельзя.
func (r *repos) danglingReviewRef(ctx context.Context, cause error, review domain.Review) error {
	if name := violatedConstraint(cause); name != "" {
		if strings.Contains(name, "user_id") {
			return domain.ErrUserNotFound
		}
		return domain.ErrProductNotFound
	}
	if _, err := r.GetUser(ctx, review.UserID); errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrUserNotFound
	}
	return domain.ErrProductNotFound
}

func (r *repos) ListReviewsByProduct(ctx context.Context, productID int64, q listing.Query) (listing.Page[domain.Review], error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return selectPage(ctx, r, pageSource{
		columns:   "id, user_id, product_id, rating, comment, created_at",
		table:     "reviews",
		scope:     "product_id = $1",
		scopeArgs: []any{productID},
		fields:    domain.ReviewListFields,
	}, q, func(rows *sql.Rows) (domain.Review, error) {
		var review domain.Review
		err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.Rating, &review.Comment, &review.CreatedAt)
		return review, err
	})
}

func (r *repos) DeleteReviewsByUser(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.exec(ctx, `DELETE FROM reviews WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete reviews of user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
