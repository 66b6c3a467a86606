package domain

import (
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review — отзыв пользователя о товаре.
type Review struct {
	ID        int64
	UserID    int64
	ProductID int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Validate проверяет отзыв перед сохранением.
func (r *Review) Validate() []error {
	var errs []error

	if r.UserID <= 0 {
		errs = append(errs, ErrUserRequired)
	}
	if r.ProductID <= 0 {
		errs = append(errs, ErrProductIDInvalid)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		errs = append(errs, ErrRatingOutOfRange)
	}
	if strings.TrimSpace(r.Comment) == "" {
		errs = append(errs, ErrCommentRequired)
	}

	return errs
}
