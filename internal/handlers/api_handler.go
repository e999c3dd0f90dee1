package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"business_manager/internal/apperrors"
	"business_manager/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type APIHandler struct {
	Orders    *OrderHandler
	Catalog   *CatalogHandler
	Customers *CustomerHandler
	Expenses  *ExpenseHandler
	Analytics *AnalyticsHandler
}

func (h *APIHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", Health)

	api := router.Group("/api")

	orders := api.Group("/orders")
	{
		orders.POST("", h.Orders.Create)
		orders.GET("", h.Orders.List)
		orders.GET("/export", h.Orders.ExportOrders)
		orders.GET("/export/items", h.Orders.ExportLineItems)
		orders.GET("/:code", h.Orders.Get)
		orders.PUT("/:code", h.Orders.Edit)
		orders.DELETE("/:code", h.Orders.Delete)
		orders.PATCH("/:code/status", h.Orders.UpdateStatus)
		orders.POST("/:code/payments", h.Orders.AddPayment)
		orders.PUT("/:code/amount-paid", h.Orders.SetAmountPaid)
		orders.POST("/:code/payments/initiate", h.Orders.InitiatePayment)
		orders.GET("/:code/payments", h.Orders.ListPayments)
	}
	api.POST("/payments/callback", h.Orders.PaymentCallback)

	catalog := api.Group("/catalog")
	{
		catalog.GET("/categories", h.Catalog.ListCategories)
		catalog.POST("/categories", h.Catalog.CreateCategory)
		catalog.GET("/items", h.Catalog.ListItems)
		catalog.POST("/items", h.Catalog.CreateItem)
		catalog.GET("/items/:id", h.Catalog.GetItem)
		catalog.PUT("/items/:id", h.Catalog.UpdateItem)
		catalog.POST("/items/:id/restock", h.Catalog.Restock)
		catalog.PATCH("/items/:id/availability", h.Catalog.SetAvailability)
	}

	customers := api.Group("/customers")
	{
		customers.GET("", h.Customers.List)
		customers.GET("/:id", h.Customers.Get)
		customers.PUT("/:id", h.Customers.Update)
		customers.DELETE("/:id", h.Customers.Delete)
	}

	expenses := api.Group("/expenses")
	{
		expenses.GET("/categories", h.Expenses.ListCategories)
		expenses.POST("/categories", h.Expenses.CreateCategory)
		expenses.PUT("/categories/:id", h.Expenses.RenameCategory)
		expenses.DELETE("/categories/:id", h.Expenses.DeleteCategory)
		expenses.GET("", h.Expenses.List)
		expenses.POST("", h.Expenses.Create)
		expenses.GET("/:id", h.Expenses.Get)
		expenses.PUT("/:id", h.Expenses.Update)
		expenses.DELETE("/:id", h.Expenses.Delete)
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/dashboard", h.Analytics.Dashboard)
		analytics.GET("/orders", h.Analytics.OrdersByPaymentStatus)
		analytics.GET("/verify-revenue", h.Analytics.VerifyRevenue)
	}
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		stock     *apperrors.StockUnavailableError
		short     *apperrors.InsufficientStockError
		invalid   *apperrors.ValidationError
		inUse     *apperrors.CategoryInUseError
		hasOrders *apperrors.CustomerHasOrdersError
	)

	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": stock.Error(), "violations": stock.Violations})
	case errors.As(err, &short):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": short.Error(), "violations": []*apperrors.InsufficientStockError{short}})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error(), "field": invalid.Field})
	case errors.Is(err, apperrors.ErrInvalidQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &inUse):
		c.JSON(http.StatusConflict, gin.H{"error": inUse.Error(), "count": inUse.Count})
	case errors.As(err, &hasOrders):
		c.JSON(http.StatusConflict, gin.H{"error": hasOrders.Error(), "count": hasOrders.Count})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func uintQuery(c *gin.Context, name string) (uint, error) {
	v, err := intQuery(c, name)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a positive number", name)
	}
	return uint(v), nil
}

// dateQuery parses an optional YYYY-MM-DD query parameter as a UTC date.
func dateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", name)
	}
	return &t, nil
}

func dateRangeQuery(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = dateQuery(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = dateQuery(c, "to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func pageQuery(c *gin.Context) (page, limit int, err error) {
	if page, err = intQuery(c, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = intQuery(c, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func repositoryPage(page, limit int) repository.Page {
	if limit <= 0 {
		return repository.Page{}
	}
	if page < 1 {
		page = 1
	}
	return repository.Page{Offset: (page - 1) * limit, Limit: limit}
}
