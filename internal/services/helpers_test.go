package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"business_manager/internal/cache"
	"business_manager/internal/database"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testToday = time.Date(2026, time.June, 15, 9, 30, 0, 0, time.UTC)

type sentMessage struct {
	Phone   string
	Message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{Phone: phone, Message: message})
	return f.err
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type testEnv struct {
	repos         *repository.Repositories
	cache         cache.Cache
	notifier      *fakeNotifier
	notifications NotificationService
	orders        *orderService
	catalog       CatalogService
	customers     CustomerService
	expenses      *expenseService
	analytics     *analyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Initialize("sqlite", ":memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	reportCache, err := cache.NewMemory(16)
	require.NoError(t, err)

	logger := zap.NewNop()
	repos := repository.NewRepositories(db)
	notifier := &fakeNotifier{}
	notifications := NewNotificationService(notifier, logger)
	clock := func() time.Time { return testToday }

	orders := NewOrderService(repos, notifications, reportCache, logger).(*orderService)
	orders.now = clock
	expenses := NewExpenseService(repos, reportCache, logger).(*expenseService)
	expenses.now = clock
	analytics := NewAnalyticsService(repos, reportCache, logger).(*analyticsService)
	analytics.now = clock

	return &testEnv{
		repos:         repos,
		cache:         reportCache,
		notifier:      notifier,
		notifications: notifications,
		orders:        orders,
		catalog:       NewCatalogService(repos, logger),
		customers:     NewCustomerService(repos, logger),
		expenses:      expenses,
		analytics:     analytics,
	}
}

func (e *testEnv) stockItem(t *testing.T, name string, price int64, qty int) *models.SellableItem {
	t.Helper()
	item, err := e.catalog.CreateItem(context.Background(), CreateItemInput{
		CategoryName: "Fast Food",
		Name:         name,
		Price:        decimal.NewFromInt(price),
		Quantity:     qty,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) reload(t *testing.T, id uint) *models.SellableItem {
	t.Helper()
	item, err := e.catalog.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item
}

func money(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func ref(id uint) *uint {
	return &id
}

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func hotelOrder(lines ...LineInput) CreateOrderInput {
	return CreateOrderInput{
		Customer: CustomerInput{Name: "Amina", Phone: "0712345678"},
		Shop:     models.ShopHotel,
		Items:    lines,
	}
}

func laundryOrder(shop models.Shop, phone string, price int64, paid int64, delivery *time.Time) CreateOrderInput {
	return CreateOrderInput{
		Customer:     CustomerInput{Name: "Brian", Phone: phone},
		Shop:         shop,
		DeliveryDate: delivery,
		AmountPaid:   decimal.NewFromInt(paid),
		PaymentType:  models.PaymentCash,
		Items: []LineInput{{
			ItemName:     "shirts, trousers",
			ItemType:     models.ItemClothing,
			ServiceTypes: []models.ServiceType{models.ServiceWashing, models.ServiceIroning},
			Quantity:     1,
			UnitPrice:    money(price),
		}},
	}
}

func assertMoney(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.Truef(t, decimal.NewFromInt(want).Equal(got), "expected %d, got %s %v", want, got, msgAndArgs)
}
