package memory

import (
	"context"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
)

var reviewAccessor = listing.Accessor[domain.Review]{
	Less: map[string]func(a, b domain.Review) bool{
		"id":         func(a, b domain.Review) bool { return a.ID < b.ID },
		"rating":     func(a, b domain.Review) bool { return a.Rating < b.Rating },
		"created_at": func(a, b domain.Review) bool { return a.CreatedAt.Before(b.CreatedAt) },
	},
	Text: func(r domain.Review) string { return r.Comment },
}

func (st *state) CreateReview(_ context.Context, review domain.Review) (int64, error) {
	if _, ok := st.users[review.UserID]; !ok {
		return 0, domain.ErrUserNotFound
	}
	if _, ok := st.products[review.ProductID]; !ok {
		return 0, domain.ErrProductNotFound
	}
	st.nextReviewID++
	review.ID = st.nextReviewID
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now()
	}
	st.reviews[review.ID] = review
	return review.ID, nil
}

func (st *state) ListReviewsByProduct(_ context.Context, productID int64, q listing.Query) (listing.Page[domain.Review], error) {
	reviews := sortedValues(st.reviews, func(r domain.Review) bool { return r.ProductID == productID })
	return listing.Apply(reviews, q, reviewAccessor), nil
}

func (st *state) DeleteReviewsByUser(_ context.Context, userID int64) (int, error) {
	deleted := 0
	for id, review := range st.reviews {
		if review.UserID == userID {
			delete(st.reviews, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) CreateReview(ctx context.Context, review domain.Review) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateReview(ctx, review)
}

func (s *Store) ListReviewsByProduct(ctx context.Context, productID int64, q listing.Query) (listing.Page[domain.Review], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListReviewsByProduct(ctx, productID, q)
}

func (s *Store) DeleteReviewsByUser(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteReviewsByUser(ctx, userID)
}
