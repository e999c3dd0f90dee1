package handlers

import (
	"net/http"

	"business_manager/internal/repository"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog services.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type AvailabilityRequest struct {
	Available *bool `json:"is_available" binding:"required"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req services.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	item, err := h.catalog.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := h.catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems shows the menu; ?available=true hides sold out and hidden items.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	categoryID, err := uintQuery(c, "category_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	items, err := h.catalog.ListItems(c.Request.Context(), repository.ItemFilter{
		CategoryID:    categoryID,
		AvailableOnly: c.Query("available") == "true",
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	item, err := h.catalog.UpdateItemDetails(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) Restock(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	item, err := h.catalog.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) SetAvailability(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	item, err := h.catalog.SetAvailability(c.Request.Context(), id, *req.Available)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
