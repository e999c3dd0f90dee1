package handlers

import (
	"net/http"

	"business_manager/internal/models"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customers services.CustomerService
	logger    *zap.Logger
}

func NewCustomerHandler(customers services.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// List returns customers, filtered by name or phone when ?q is given.
func (h *CustomerHandler) List(c *gin.Context) {
	page, limit, err := pageQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var customers []models.Customer
	if q := c.Query("q"); q != "" {
		customers, err = h.customers.SearchCustomers(c.Request.Context(), q, repositoryPage(page, limit))
	} else {
		customers, err = h.customers.ListCustomers(c.Request.Context(), repositoryPage(page, limit))
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	customer, err := h.customers.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.customers.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
