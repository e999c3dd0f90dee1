package handlers

import (
	"net/http"

	"business_manager/internal/models"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves reports. The analytics service never fails, so
// only malformed query strings produce an error response.
type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	q, ok := analyticsQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analytics.Dashboard(c.Request.Context(), q))
}

func (h *AnalyticsHandler) OrdersByPaymentStatus(c *gin.Context) {
	q, ok := analyticsQuery(c)
	if !ok {
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.analytics.OrdersByPaymentStatus(c.Request.Context(), q, limit))
}

func (h *AnalyticsHandler) VerifyRevenue(c *gin.Context) {
	q, ok := analyticsQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analytics.VerifyRevenue(c.Request.Context(), q))
}

func analyticsQuery(c *gin.Context) (services.AnalyticsQuery, bool) {
	year, err := intQuery(c, "year")
	if err != nil {
		badRequest(c, err.Error())
		return services.AnalyticsQuery{}, false
	}
	month, err := intQuery(c, "month")
	if err != nil || month < 0 || month > 12 {
		badRequest(c, "month must be between 1 and 12")
		return services.AnalyticsQuery{}, false
	}
	from, to, err := dateRangeQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return services.AnalyticsQuery{}, false
	}

	q := services.AnalyticsQuery{
		Year:          year,
		Month:         month,
		From:          from,
		To:            to,
		Shop:          models.Shop(c.Query("shop")),
		PaymentStatus: services.PaymentFilter(c.Query("payment_status")),
		Lines:         services.LineSelector(c.Query("lines")),
	}
	if q.Shop != "" && !q.Shop.Valid() {
		badRequest(c, "unknown shop")
		return services.AnalyticsQuery{}, false
	}
	if !q.PaymentStatus.Valid() {
		badRequest(c, "payment_status must be one of pending, partial, completed, overdue")
		return services.AnalyticsQuery{}, false
	}
	if !q.Lines.Valid() {
		badRequest(c, "lines must be one of both, laundry, hotel")
		return services.AnalyticsQuery{}, false
	}
	return q, true
}
