package handler

import (
	catalogapp "github.com/emedico/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves medicine browsing
type CatalogHandler struct {
	BaseHandler
	catalog *catalogapp.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *catalogapp.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListMedicinesQuery holds the catalog filters
type ListMedicinesQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Category string `form:"category" binding:"max=100"`
	Sort     string `form:"sort" example:"price_asc"`
}

// ListMedicines handles GET /catalog/medicines: list medicines.
// Case-insensitive name search, category filter ("all" for none) and.
func (h *CatalogHandler) ListMedicines(c *gin.Context) {
	var q ListMedicinesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	items, err := h.catalog.List(c.Request.Context(), catalogapp.ListInput{
		Search:   q.Search,
		Category: q.Category,
		Sort:     q.Sort,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// GetMedicine handles GET /catalog/medicines/{id}: get a medicine.
func (h *CatalogHandler) GetMedicine(c *gin.Context) {
	item, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// ListCategories handles GET /catalog/categories: list category filter options.
// "all" first, then each category in catalog order.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
