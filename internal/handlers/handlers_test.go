package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"business_manager/internal/cache"
	"business_manager/internal/database"
	"business_manager/internal/repository"
	"business_manager/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize("sqlite", ":memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger := zap.NewNop()
	reportCache, err := cache.NewMemory(8)
	require.NoError(t, err)
	repos := repository.NewRepositories(db)
	notifications := services.NewNotificationService(services.LogNotifier{Logger: logger}, logger)
	t.Cleanup(notifications.Wait)

	orders := services.NewOrderService(repos, notifications, reportCache, logger)
	payments := services.NewPaymentService(repos, services.LogInitiator{Logger: logger}, reportCache, logger)
	api := &APIHandler{
		Orders:    NewOrderHandler(orders, payments, services.NewExportService(repos), logger),
		Catalog:   NewCatalogHandler(services.NewCatalogService(repos, logger), logger),
		Customers: NewCustomerHandler(services.NewCustomerService(repos, logger), logger),
		Expenses:  NewExpenseHandler(services.NewExpenseService(repos, reportCache, logger), logger),
		Analytics: NewAnalyticsHandler(services.NewAnalyticsService(repos, reportCache, logger)),
	}

	router := gin.New()
	api.RegisterRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func laundryBody(price int) map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]interface{}{"name": "Wanjiru", "phone": "0711222333"},
		"shop":     "Shop A",
		"items": []map[string]interface{}{{
			"item_name":     "bedsheets,  curtains",
			"item_type":     "Bedding",
			"service_types": []string{"Washing", "Folding"},
			"quantity":      1,
			"unit_price":    price,
		}},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w, body := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateAndFetchOrder(t *testing.T) {
	router := newTestRouter(t)

	w, created := do(t, router, http.MethodPost, "/api/orders", laundryBody(450))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	code := created["code"].(string)
	assert.Regexp(t, `^ORD-[0-9A-F]{10}$`, code)
	assert.Equal(t, "450", created["total_price"])
	assert.Equal(t, "pending", created["payment_status"])

	w, fetched := do(t, router, http.MethodGet, "/api/orders/"+code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := fetched["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "bedsheets, curtains", items[0].(map[string]interface{})["item_name"])

	w, paid := do(t, router, http.MethodPost, "/api/orders/"+code+"/payments", map[string]interface{}{"amount": 200, "payment_type": "cash"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "partial", paid["payment_status"])
	assert.Equal(t, "250", paid["balance"])

	w, _ = do(t, router, http.MethodGet, "/api/orders/ORD-FFFFFFFFFF", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderRejectsMalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	w, body := do(t, router, http.MethodPost, "/api/orders", `{"shop":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request format", body["error"])
}

func TestCreateOrderValidationIs422(t *testing.T) {
	router := newTestRouter(t)
	req := laundryBody(100)
	req["shop"] = "Shop Z"

	w, body := do(t, router, http.MethodPost, "/api/orders", req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "shop", body["field"])
}

func TestInsufficientStockListsViolations(t *testing.T) {
	router := newTestRouter(t)
	w, item := do(t, router, http.MethodPost, "/api/catalog/items", map[string]interface{}{
		"category": "Fast Food", "name": "Sausages", "price": 60, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := item["id"].(float64)

	w, body := do(t, router, http.MethodPost, "/api/orders", map[string]interface{}{
		"customer": map[string]interface{}{"name": "Otieno", "phone": "+254700111222"},
		"shop":     "Hotel",
		"items":    []map[string]interface{}{{"sellable_item_id": itemID, "quantity": 3}},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	violations := body["violations"].([]interface{})
	require.Len(t, violations, 1)
	v := violations[0].(map[string]interface{})
	assert.Equal(t, float64(3), v["requested"])
	assert.Equal(t, float64(1), v["available"])
}

func TestStatusTransitionConflict(t *testing.T) {
	router := newTestRouter(t)
	_, created := do(t, router, http.MethodPost, "/api/orders", laundryBody(100))
	path := fmt.Sprintf("/api/orders/%s/status", created["code"])

	w, _ := do(t, router, http.MethodPatch, path, map[string]string{"order_status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, router, http.MethodPatch, path, map[string]string{"order_status": "completed"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteCustomerWithOrdersConflicts(t *testing.T) {
	router := newTestRouter(t)
	_, created := do(t, router, http.MethodPost, "/api/orders", laundryBody(100))
	path := fmt.Sprintf("/api/customers/%v", created["customer_id"])

	w, body := do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, float64(1), body["count"])

	w, _ = do(t, router, http.MethodDelete, "/api/orders/"+created["code"].(string), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w, _ = do(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExpenseCategoryInUseConflicts(t *testing.T) {
	router := newTestRouter(t)
	w, category := do(t, router, http.MethodPost, "/api/expenses/categories", map[string]string{"label": "Rent"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = do(t, router, http.MethodPost, "/api/expenses", map[string]interface{}{
		"category_id": category["id"], "shop": "Shop B", "amount": 15000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := do(t, router, http.MethodDelete, fmt.Sprintf("/api/expenses/categories/%v", category["id"]), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestDashboardEndpoint(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/orders", laundryBody(300))

	w, body := do(t, router, http.MethodGet, "/api/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	laundry := body["laundry"].(map[string]interface{})
	orders := laundry["orders"].(map[string]interface{})
	assert.Equal(t, float64(1), orders["count"])
	assert.Equal(t, "300", orders["revenue"])
	assert.NotNil(t, body["monthly"])

	w, _ = do(t, router, http.MethodGet, "/api/analytics/dashboard?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/analytics/dashboard?payment_status=late", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, router, http.MethodGet, "/api/analytics/dashboard?from=2020-01-01&to=2020-01-31", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentInitiationAndCallback(t *testing.T) {
	router := newTestRouter(t)
	_, created := do(t, router, http.MethodPost, "/api/orders", laundryBody(500))
	code := created["code"].(string)

	w, txn := do(t, router, http.MethodPost, "/api/orders/"+code+"/payments/initiate", map[string]interface{}{"amount": 500})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "pending", txn["status"])

	w, settled := do(t, router, http.MethodPost, "/api/payments/callback", map[string]interface{}{
		"reference": txn["reference"], "success": true, "receipt": "RCPT1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", settled["status"])

	_, order := do(t, router, http.MethodGet, "/api/orders/"+code, nil)
	assert.Equal(t, "completed", order["payment_status"])
	assert.Equal(t, "mpesa", order["payment_type"])
}
