package domain

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/listing"
)

// UserRepository описывает требования к хранилищу пользователей.
type UserRepository interface {
	// CreateUser сохраняет пользователя. Возвращает ErrEmailTaken, если email занят.
	CreateUser(ctx context.Context, user User) (User, error)
	// GetUser возвращает пользователя или ErrUserNotFound.
	GetUser(ctx context.Context, id int64) (User, error)
	// GetUserByEmail ищет пользователя по нормализованному email.
	GetUserByEmail(ctx context.Context, email string) (User, error)
	// ListUsers возвращает страницу пользователей; q уже нормализован по UserListFields.
	ListUsers(ctx context.Context, q listing.Query) (listing.Page[User], error)
	// DeleteUser удаляет только строку пользователя; зависимые записи удаляются заранее.
	DeleteUser(ctx context.Context, id int64) error
}

// CatalogRepository хранит продавцов и товары.
type CatalogRepository interface {
	CreateVendor(ctx context.Context, vendor Vendor) (Vendor, error)
	// CreateProduct возвращает ErrVendorNotFound, если указан несуществующий продавец.
	CreateProduct(ctx context.Context, product Product) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
}

// OrderRepository хранит заказы и их позиции.
type OrderRepository interface {
	// CreateOrder сохраняет заказ без позиций и возвращает его идентификатор.
	CreateOrder(ctx context.Context, order Order) (int64, error)
	// CreateOrderItem сохраняет позицию; висячие ссылки дают ErrOrderNotFound/ErrProductNotFound.
	CreateOrderItem(ctx context.Context, item OrderItem) (int64, error)
	// GetOrder возвращает заказ вместе с позициями.
	GetOrder(ctx context.Context, id int64) (Order, error)
	// ListOrdersByUser возвращает страницу заказов пользователя вместе с позициями.
	ListOrdersByUser(ctx context.Context, userID int64, q listing.Query) (listing.Page[Order], error)
	ListOrderIDsByUser(ctx context.Context, userID int64) ([]int64, error)
	DeleteOrderItems(ctx context.Context, orderID int64) (int, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// ReviewRepository хранит отзывы.
type ReviewRepository interface {
	// CreateReview возвращает ErrUserNotFound/ErrProductNotFound на висячих ссылках.
	CreateReview(ctx context.Context, review Review) (int64, error)
	ListReviewsByProduct(ctx context.Context, productID int64, q listing.Query) (listing.Page[Review], error)
	DeleteReviewsByUser(ctx context.Context, userID int64) (int, error)
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
	// PurgeSent удаляет до limit опубликованных сообщений, отмеченных не позже before.
	// Неотправленные сообщения не трогает.
	PurgeSent(ctx context.Context, before time.Time, limit int) (int, error)
}

// Repositories — все репозитории, доступные как вне транзакции, так и внутри неё.
type Repositories interface {
	UserRepository
	CatalogRepository
	OrderRepository
	ReviewRepository
	OutboxRepository
}

// Store — хранилище, передаваемое в сервисы явно.
type Store interface {
	Repositories
	// WithinTx выполняет fn атомарно: либо применяются все изменения tx, либо ни одно.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	Close() error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// Типы агрегатов и событий outbox.
const (
	AggregateOrder  = "order"
	AggregateReview = "review"
	AggregateUser   = "user"

	EventOrderCreated  = "order.created"
	EventOrderDeleted  = "order.deleted"
	EventReviewCreated = "review.created"
	EventUserDeleted   = "user.deleted"
)

// Описание коллекций для listing: публичные имена полей -> колонки хранилища.
var (
	UserListFields = listing.Fields{
		Sortable:     map[string]string{"id": "id", "email": "email", "created_at": "created_at"},
		DefaultSort:  "id",
		FilterColumn: "email",
		TieBreaker:   "id",
	}
	OrderListFields = listing.Fields{
		Sortable: map[string]string{
			"id": "id", "status": "status", "total_amount": "total_amount", "created_at": "created_at",
		},
		DefaultSort:  "id",
		FilterColumn: "status",
		TieBreaker:   "id",
	}
	ReviewListFields = listing.Fields{
		Sortable:     map[string]string{"id": "id", "rating": "rating", "created_at": "created_at"},
		DefaultSort:  "id",
		FilterColumn: "comment",
		TieBreaker:   "id",
	}
)
