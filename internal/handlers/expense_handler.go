package handlers

import (
	"net/http"

	"business_manager/internal/models"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenses services.ExpenseService
	logger   *zap.Logger
}

func NewExpenseHandler(expenses services.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, logger: logger}
}

type ExpenseCategoryRequest struct {
	Label string `json:"label" binding:"required"`
}

func (h *ExpenseHandler) CreateCategory(c *gin.Context) {
	var req ExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	category, err := h.expenses.CreateCategory(c.Request.Context(), req.Label)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *ExpenseHandler) ListCategories(c *gin.Context) {
	categories, err := h.expenses.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *ExpenseHandler) RenameCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req ExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	category, err := h.expenses.RenameCategory(c.Request.Context(), id, req.Label)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *ExpenseHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.expenses.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var req services.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	record, err := h.expenses.CreateRecord(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	record, err := h.expenses.GetRecord(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	record, err := h.expenses.UpdateRecord(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.expenses.DeleteRecord(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ExpenseHandler) List(c *gin.Context) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	page, limit, err := pageQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	categoryID, err := uintQuery(c, "category_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	records, err := h.expenses.ListRecords(c.Request.Context(), services.ExpenseQuery{
		BusinessLine: models.BusinessLine(c.Query("business_line")),
		Shop:         models.Shop(c.Query("shop")),
		CategoryID:   categoryID,
		From:         from,
		To:           to,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
