package handlers

import (
	"net/http"

	"business_manager/internal/models"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders   services.OrderService
	payments services.PaymentService
	exports  services.ExportService
	logger   *zap.Logger
}

func NewOrderHandler(orders services.OrderService, payments services.PaymentService, exports services.ExportService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, payments: payments, exports: exports, logger: logger}
}

type PaymentRequest struct {
	Amount      decimal.Decimal    `json:"amount"`
	PaymentType models.PaymentType `json:"payment_type"`
}

type StatusRequest struct {
	Status models.OrderStatus `json:"order_status" binding:"required"`
}

type InitiatePaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Phone  string          `json:"phone"`
}

type PaymentCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
	Success   bool   `json:"success"`
	Receipt   string `json:"receipt"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
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
	customerID, err := uintQuery(c, "customer_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), services.OrderQuery{
		BusinessLine:  models.BusinessLine(c.Query("business_line")),
		Shop:          models.Shop(c.Query("shop")),
		Status:        models.OrderStatus(c.Query("order_status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		CustomerID:    customerID,
		From:          from,
		To:            to,
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func (h *OrderHandler) Edit(c *gin.Context) {
	var req services.EditOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.EditOrder(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("code"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddPayment adds an increment to the amount already paid.
func (h *OrderHandler) AddPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.AddAmountPaid(c.Request.Context(), c.Param("code"), req.Amount, req.PaymentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// SetAmountPaid replaces the amount paid.
func (h *OrderHandler) SetAmountPaid(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	order, err := h.orders.SetAmountPaid(c.Request.Context(), c.Param("code"), req.Amount, req.PaymentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	txn, err := h.payments.InitiatePayment(c.Request.Context(), c.Param("code"), req.Amount, req.Phone)
	if err != nil {
		if txn != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway rejected the request", "transaction": txn})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, txn)
}

func (h *OrderHandler) PaymentCallback(c *gin.Context) {
	var req PaymentCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	txn, err := h.payments.RecordResult(c.Request.Context(), req.Reference, req.Success, req.Receipt)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *OrderHandler) ListPayments(c *gin.Context) {
	txns, err := h.payments.ListTransactions(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

func (h *OrderHandler) ExportOrders(c *gin.Context) {
	filter, ok := exportFilter(c)
	if !ok {
		return
	}
	rows, err := h.exports.OrderRows(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *OrderHandler) ExportLineItems(c *gin.Context) {
	filter, ok := exportFilter(c)
	if !ok {
		return
	}
	rows, err := h.exports.LineItemRows(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func exportFilter(c *gin.Context) (services.ExportFilter, bool) {
	from, to, err := dateRangeQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return services.ExportFilter{}, false
	}
	return services.ExportFilter{
		BusinessLine:  models.BusinessLine(c.Query("business_line")),
		Shop:          models.Shop(c.Query("shop")),
		Status:        models.OrderStatus(c.Query("order_status")),
		PaymentStatus: models.PaymentStatus(c.Query("payment_status")),
		From:          from,
		To:            to,
	}, true
}
