package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
)

var userAccessor = listing.Accessor[domain.User]{
	Less: map[string]func(a, b domain.User) bool{
		"id":         func(a, b domain.User) bool { return a.ID < b.ID },
		"email":      func(a, b domain.User) bool { return a.Email < b.Email },
		"created_at": func(a, b domain.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	},
	Text: func(u domain.User) string { return u.Email },
}

func (st *state) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)
	for _, existing := range st.users {
		if existing.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	st.nextUserID++
	user.ID = st.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	st.users[user.ID] = user
	return user, nil
}

func (st *state) GetUser(_ context.Context, id int64) (domain.User, error) {
	user, ok := st.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (st *state) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	for _, user := range st.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (st *state) ListUsers(_ context.Context, q listing.Query) (listing.Page[domain.User], error) {
	return listing.Apply(sortedValues(st.users, nil), q, userAccessor), nil
}

// DeleteUser ведёт себя как внешний ключ без каскада: зависимые строки должны быть удалены заранее.
func (st *state) DeleteUser(_ context.Context, id int64) error {
	if _, ok := st.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	for _, order := range st.orders {
		if order.UserID == id {
			return fmt.Errorf("delete user %d: orders still reference it", id)
		}
	}
	for _, review := range st.reviews {
		if review.UserID == id {
			return fmt.Errorf("delete user %d: reviews still reference it", id)
		}
	}
	delete(st.users, id)
	return nil
}

// CreateUser сохраняет пользователя, если email ещё не занят.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateUser(ctx, user)
}

// GetUser возвращает пользователя или ErrUserNotFound.
func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUser(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.GetUserByEmail(ctx, email)
}

func (s *Store) ListUsers(ctx context.Context, q listing.Query) (listing.Page[domain.User], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListUsers(ctx, q)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteUser(ctx, id)
}
