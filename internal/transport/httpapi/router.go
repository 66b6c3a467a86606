// Package httpapi публикует workflow магазина по HTTP поверх gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/listing"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
	"github.com/vladislavdragonenkov/shop/internal/service/review"
)

const welcomeMessage = "Welcome to the shop API"

// Authenticator выдаёт токены и проверяет заголовок Authorization.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Token, error)
	Authenticate(ctx context.Context, header string) (int64, error)
}

// AccountService — операции над пользователями.
type AccountService interface {
	List(ctx context.Context, q listing.Query) (listing.Page[domain.User], error)
	Delete(ctx context.Context, userID int64) error
}

// OrderService — checkout и заказы вызывающего пользователя.
type OrderService interface {
	Checkout(ctx context.Context, req checkout.Request) (domain.Order, error)
	List(ctx context.Context, userID int64, q listing.Query) (listing.Page[domain.Order], error)
	Get(ctx context.Context, userID, orderID int64) (domain.Order, error)
	Delete(ctx context.Context, userID, orderID int64) error
}

// ReviewService — создание и выдача отзывов.
type ReviewService interface {
	Create(ctx context.Context, req review.Request) (int64, error)
	ListByProduct(ctx context.Context, productID int64, q listing.Query) (listing.Page[domain.Review], error)
}

// Deps — зависимости роутера. Metrics и Logger опциональны.
type Deps struct {
	Auth     Authenticator
	Accounts AccountService
	Orders   OrderService
	Reviews  ReviewService
	Metrics  *metrics.HTTPMetrics
	Logger   *log.Entry
}

type handler struct {
	auth     Authenticator
	accounts AccountService
	orders   OrderService
	reviews  ReviewService
	logger   *log.Entry
}

// NewRouter собирает gin.Engine со всеми маршрутами API.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Auth == nil || deps.Accounts == nil || deps.Orders == nil || deps.Reviews == nil {
		return nil, errors.New("httpapi: auth, accounts, orders and reviews are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}

	h := &handler{
		auth:     deps.Auth,
		accounts: deps.Accounts,
		orders:   deps.Orders,
		reviews:  deps.Reviews,
		logger:   logger,
	}

	r := gin.New()
	r.Use(requestID(), accessLog(logger), observe(deps.Metrics), recovery(logger))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "route not found"})
	})

	r.GET("/", h.welcome)
	r.POST("/login", h.login)

	protected := r.Group("/", h.requireAuth)
	protected.GET("/users", h.listUsers)
	protected.DELETE("/users/me", h.deleteMe)
	protected.GET("/orders", h.listOrders)
	protected.GET("/orders/:id", h.getOrder)
	protected.DELETE("/orders/:id", h.deleteOrder)
	protected.POST("/checkout", h.checkout)
	protected.POST("/products/:id/reviews", h.createReview)
	protected.GET("/products/:id/reviews", h.listReviews)

	return r, nil
}

func (h *handler) welcome(c *gin.Context) {
	c.String(http.StatusOK, welcomeMessage)
}
