package account

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("hasher down") }

func newService(store domain.Store) *Service {
	return NewService(store, auth.NewPasswordHasher(bcrypt.MinCost), metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry()), nil)
}

func TestRegister(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Alex@Example.com ", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough")))

	_, err = svc.Register(ctx, "ALEX@example.com", "long-enough")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.True(t, domain.IsConflict(err))

	_, err = svc.Register(ctx, "not-an-email", "long-enough")
	assert.ErrorIs(t, err, domain.ErrEmailInvalid)
	_, err = svc.Register(ctx, "@example.com", "long-enough")
	assert.ErrorIs(t, err, domain.ErrEmailInvalid)
	_, err = svc.Register(ctx, "sam@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = NewService(store, failingHasher{}, nil, nil).Register(ctx, "sam@example.com", "long-enough")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	for _, email := range []string{"b@x.io", "a@x.io", "c@y.io"} {
		_, err := svc.Register(ctx, email, "password1")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, listing.Query{SortBy: "email", Filter: "X.IO"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "a@x.io", page.Items[0].Email)

	_, err = svc.List(ctx, listing.Query{SortBy: "password_hash"})
	assert.True(t, domain.IsValidation(err))
}

func TestDelete_CascadesInOneTransaction(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, "leaving@example.com", "password1")
	require.NoError(t, err)
	product, err := store.CreateProduct(ctx, domain.Product{Name: "Mug", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	orderID, err := store.CreateOrder(ctx, domain.Order{UserID: user.ID, Status: domain.OrderStatusPending})
	require.NoError(t, err)
	_, err = store.CreateOrderItem(ctx, domain.OrderItem{OrderID: orderID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = store.CreateReview(ctx, domain.Review{UserID: user.ID, ProductID: product.ID, Rating: 2, Comment: "chipped"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = store.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	orders, items := store.Counts()
	assert.Zero(t, orders)
	assert.Zero(t, items)

	pending := store.AllPending()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EventUserDeleted, pending[0].EventType)
	assert.JSONEq(t, `{"user_id":1,"orders_removed":1,"reviews_removed":1}`, string(pending[0].Payload))

	assert.ErrorIs(t, svc.Delete(ctx, user.ID), domain.ErrUserNotFound)
}
