package handler

import (
	"fmt"
	"net/http"

	"github.com/emedico/backend/internal/application/checkout"
	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/domain/shared"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxIdempotencyKeyLength = 255
	// HeaderIdempotentReplay marks a checkout answered from an earlier request
	HeaderIdempotentReplay = "Idempotent-Replayed"
)

// OrderHandler serves checkout and placed orders
type OrderHandler struct {
	BaseHandler
	checkout *checkout.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(checkout *checkout.Service) *OrderHandler {
	return &OrderHandler{checkout: checkout}
}

// CheckoutRequest submits the session cart. Address fields are checked by
// the order rules so that all missing fields are reported together.
type CheckoutRequest struct {
	Address       order.Address `json:"address"`
	PaymentMethod string        `json:"payment_method" example:"creditCard"`
	Fulfillment   string        `json:"fulfillment" example:"delivery"`
}

// ChangeOrderStatusRequest moves an order along its lifecycle
type ChangeOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed shipped delivered cancelled" example:"confirmed"`
	Reason string `json:"reason" binding:"max=500"`
}

// ListOrdersQuery pages through a session's orders
type ListOrdersQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Checkout handles POST /sessions/{id}/checkout: place an order.
// Turns the session cart into an order. With an Idempotency-Key header a.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	key := c.GetHeader(middleware.HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, fmt.Sprintf("Idempotency-Key must be at most %d characters", maxIdempotencyKeyLength))
		return
	}

	result, err := h.checkout.SubmitOrder(c.Request.Context(), checkout.SubmitOrderInput{
		SessionID:      sessionID(c),
		UserID:         optionalUserID(c),
		Address:        req.Address,
		PaymentMethod:  order.PaymentMethod(req.PaymentMethod),
		Fulfillment:    order.FulfillmentOption(req.Fulfillment),
		IdempotencyKey: key,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.Replayed {
		c.Header(HeaderIdempotentReplay, "true")
		h.Success(c, result.Confirmation)
		return
	}
	h.Created(c, result.Confirmation)
}

// ListSessionOrders handles GET /sessions/{id}/orders: list a session's orders.
func (h *OrderHandler) ListSessionOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}

	page, err := h.checkout.ListSessionOrders(c.Request.Context(), sessionID(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetOrder handles GET /orders/{id}: get an order.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	view, err := h.checkout.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ChangeStatus handles PATCH /orders/{id}/status: change an order's status.
// placed → confirmed → shipped → delivered; placed or confirmed → cancelled.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req ChangeOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.checkout.ChangeStatus(c.Request.Context(), id, checkout.StatusChangeInput{
		Status: order.Status(req.Status),
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Receipt handles GET /orders/{id}/receipt.pdf: download an order receipt.
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	pdf, orderNumber, err := h.checkout.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, orderNumber))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *OrderHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid order ID format")
		return uuid.Nil, false
	}
	return id, true
}
