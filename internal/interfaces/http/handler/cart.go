package handler

import (
	cartapp "github.com/emedico/backend/internal/application/cart"
	"github.com/emedico/backend/internal/domain/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler serves the session cart shared by catalog, cart and checkout views
type CartHandler struct {
	BaseHandler
	carts *cartapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *cartapp.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddCartItemRequest adds a medicine to the cart
type AddCartItemRequest struct {
	MedicineID string `json:"medicine_id" binding:"required,max=64" example:"med001"`
	Quantity   *int   `json:"quantity" binding:"omitempty,max=99" example:"1"`
}

// UpdateCartItemRequest sets a line's quantity
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=99" example:"2"`
}

// TotalsDisplay holds totals rounded to cents
type TotalsDisplay struct {
	Subtotal string `json:"subtotal" example:"19.73"`
	Tax      string `json:"estimated_tax" example:"0.99"`
	Shipping string `json:"shipping_fee" example:"5.99"`
	Total    string `json:"total" example:"26.71"`
}

// CartResponse is the cart with exact and display totals
type CartResponse struct {
	*cartapp.View
	Display TotalsDisplay `json:"display"`
}

func toTotalsDisplay(t cart.Totals) TotalsDisplay {
	return TotalsDisplay{
		Subtotal: t.Subtotal.Display(),
		Tax:      t.Tax.Display(),
		Shipping: t.Shipping.Display(),
		Total:    t.Total.Display(),
	}
}

func toCartResponse(v *cartapp.View) CartResponse {
	return CartResponse{View: v, Display: toTotalsDisplay(v.Totals)}
}

// Get handles GET /sessions/{id}/cart: get the session cart.
func (h *CartHandler) Get(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(view))
}

// AddItem handles POST /sessions/{id}/cart/items: add a medicine to the cart.
// Merges into an existing line; quantity defaults to 1.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, err := h.carts.AddItem(c.Request.Context(), sessionID(c), req.MedicineID, quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(view))
}

// UpdateItem handles PUT /sessions/{id}/cart/items/{medicine_id}: set a line's quantity.
// Quantities below 1 are rejected; use DELETE to remove a line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	view, err := h.carts.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("medicine_id"), *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(view))
}

// RemoveItem handles DELETE /sessions/{id}/cart/items/{medicine_id}: remove a line.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	view, err := h.carts.RemoveItem(c.Request.Context(), sessionID(c), c.Param("medicine_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(view))
}

// Clear handles DELETE /sessions/{id}/cart: empty the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	view, err := h.carts.Clear(c.Request.Context(), sessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartResponse(view))
}
