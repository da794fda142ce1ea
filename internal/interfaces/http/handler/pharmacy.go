package handler

import (
	pharmacyapp "github.com/emedico/backend/internal/application/pharmacy"
	"github.com/emedico/backend/internal/domain/pharmacy"
	"github.com/gin-gonic/gin"
)

// PharmacyHandler serves the pharmacy locator
type PharmacyHandler struct {
	BaseHandler
	pharmacies *pharmacyapp.Service
}

// NewPharmacyHandler creates a new PharmacyHandler
func NewPharmacyHandler(pharmacies *pharmacyapp.Service) *PharmacyHandler {
	return &PharmacyHandler{pharmacies: pharmacies}
}

// ListPharmaciesQuery holds the locator filters
type ListPharmaciesQuery struct {
	Search   string `form:"search" binding:"max=100"`
	OpenNow  bool   `form:"open_now"`
	Delivery bool   `form:"delivery"`
}

// PharmacyResponse is one locator entry
type PharmacyResponse struct {
	pharmacy.Pharmacy
	DistanceLabel string `json:"distance_label" example:"0.5 miles"`
}

// List handles GET /pharmacies: find pharmacies.
// Search matches name or address; results keep list order.
func (h *PharmacyHandler) List(c *gin.Context) {
	var q ListPharmaciesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	found := h.pharmacies.List(c.Request.Context(), pharmacy.Query{
		Search:   q.Search,
		OpenNow:  q.OpenNow,
		Delivery: q.Delivery,
	})
	resp := make([]PharmacyResponse, len(found))
	for i, p := range found {
		resp[i] = PharmacyResponse{Pharmacy: p, DistanceLabel: p.DistanceLabel()}
	}
	h.Success(c, resp)
}
