package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
	"github.com/vladislavdragonenkov/shop/internal/service/review"
)

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid JSON body")
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
	})
}

func (h *handler) listUsers(c *gin.Context) {
	q, err := listingQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page, err := h.accounts.List(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, toUserResponse))
}

func (h *handler) deleteMe(c *gin.Context) {
	if err := h.accounts.Delete(c.Request.Context(), callerID(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listOrders(c *gin.Context) {
	q, err := listingQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page, err := h.orders.List(c.Request.Context(), callerID(c), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, toOrderResponse))
}

func (h *handler) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.badRequest(c, "order id must be a positive integer")
		return
	}
	order, err := h.orders.Get(c.Request.Context(), callerID(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *handler) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.badRequest(c, "order id must be a positive integer")
		return
	}
	if err := h.orders.Delete(c.Request.Context(), callerID(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) checkout(c *gin.Context) {
	var body checkoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON body")
		return
	}

	req := checkout.Request{UserID: callerID(c), ProductIDs: body.ProductIDs}
	for _, item := range body.Items {
		qty := domain.DefaultItemQuantity
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		req.Items = append(req.Items, checkout.Line{ProductID: item.ProductID, Quantity: qty})
	}

	order, err := h.orders.Checkout(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, checkoutResponse{
		ID:      order.ID,
		Message: "order created",
		Order:   toOrderResponse(order),
	})
}

func (h *handler) createReview(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		h.badRequest(c, "product id must be a positive integer")
		return
	}
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON body")
		return
	}

	id, err := h.reviews.Create(c.Request.Context(), review.Request{
		UserID:    callerID(c),
		ProductID: productID,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.WithFields(log.Fields{"review_id": id, "product_id": productID}).Debug("review accepted")
	c.JSON(http.StatusCreated, createdResponse{ID: id, Message: "review created"})
}

func (h *handler) listReviews(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		h.badRequest(c, "product id must be a positive integer")
		return
	}
	q, err := listingQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page, err := h.reviews.ListByProduct(c.Request.Context(), productID, q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, toReviewResponse))
}
