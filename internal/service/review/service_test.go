package review

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func setup(t *testing.T) (*Service, *memory.Store, domain.User, domain.Product) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	user, err := store.CreateUser(ctx, domain.User{Email: "critic@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	product, err := store.CreateProduct(ctx, domain.Product{Name: "Kettle", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)

	svc := NewService(store, metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry()), nil)
	return svc, store, user, product
}

func TestCreate_PersistsReviewAndEvent(t *testing.T) {
	svc, store, user, product := setup(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(5), Comment: strPtr("  boils fast ")})
	require.NoError(t, err)
	assert.NotZero(t, id)

	page, err := svc.ListByProduct(ctx, product.ID, listing.Query{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "boils fast", page.Items[0].Comment)
	assert.Equal(t, user.ID, page.Items[0].UserID)

	pending := store.AllPending()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EventReviewCreated, pending[0].EventType)
}

func TestCreate_Validation(t *testing.T) {
	svc, store, user, product := setup(t)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "missing rating", req: Request{UserID: user.ID, ProductID: product.ID, Comment: strPtr("ok")}, wantErr: domain.ErrRatingRequired},
		{name: "missing comment", req: Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(3)}, wantErr: domain.ErrCommentRequired},
		{name: "blank comment", req: Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(3), Comment: strPtr(" \t")}, wantErr: domain.ErrCommentRequired},
		{name: "rating zero", req: Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(0), Comment: strPtr("ok")}, wantErr: domain.ErrRatingOutOfRange},
		{name: "rating six", req: Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(6), Comment: strPtr("ok")}, wantErr: domain.ErrRatingOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidation(err))
		})
	}

	page, err := store.ListReviewsByProduct(context.Background(), product.ID, mustQuery(t))
	require.NoError(t, err)
	assert.Zero(t, page.Total, "validation must happen before any write")
	assert.Empty(t, store.AllPending())
}

func TestCreate_UnknownProduct(t *testing.T) {
	svc, store, user, _ := setup(t)

	_, err := svc.Create(context.Background(), Request{UserID: user.ID, ProductID: 999, Rating: intPtr(4), Comment: strPtr("ok")})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Empty(t, store.AllPending())
}

func TestListByProduct(t *testing.T) {
	svc, _, user, product := setup(t)
	ctx := context.Background()

	for rating, comment := range map[int]string{1: "Awful lid", 4: "nice", 5: "LID is great"} {
		_, err := svc.Create(ctx, Request{UserID: user.ID, ProductID: product.ID, Rating: intPtr(rating), Comment: strPtr(comment)})
		require.NoError(t, err)
	}

	page, err := svc.ListByProduct(ctx, product.ID, listing.Query{SortBy: "rating", Direction: listing.Desc, Filter: "lid"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.Items[0].Rating)
	assert.Equal(t, 1, page.Items[1].Rating)

	_, err = svc.ListByProduct(ctx, 999, listing.Query{})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.ListByProduct(ctx, product.ID, listing.Query{SortBy: "user_id"})
	assert.True(t, domain.IsValidation(err))
}

func mustQuery(t *testing.T) listing.Query {
	t.Helper()
	q, err := listing.Query{}.Normalize(domain.ReviewListFields)
	require.NoError(t, err)
	return q
}
