package services

import (
	"time"

	"business_manager/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentFilter selects orders by derived payment status, or by the overdue
// overlay.
type PaymentFilter string

const (
	PaymentFilterNone      PaymentFilter = ""
	PaymentFilterPending   PaymentFilter = "pending"
	PaymentFilterPartial   PaymentFilter = "partial"
	PaymentFilterCompleted PaymentFilter = "completed"
	PaymentFilterOverdue   PaymentFilter = "overdue"
)

func (f PaymentFilter) Valid() bool {
	switch f {
	case PaymentFilterNone, PaymentFilterPending, PaymentFilterPartial, PaymentFilterCompleted, PaymentFilterOverdue:
		return true
	}
	return false
}

// LineSelector picks which business lines a report covers.
type LineSelector string

const (
	LinesBoth    LineSelector = "both"
	LinesLaundry LineSelector = "laundry"
	LinesHotel   LineSelector = "hotel"
)

func (l LineSelector) Valid() bool {
	return l == "" || l == LinesBoth || l == LinesLaundry || l == LinesHotel
}

func (l LineSelector) includes(line models.BusinessLine) bool {
	switch l {
	case LinesLaundry:
		return line == models.LineLaundry
	case LinesHotel:
		return line == models.LineHotel
	}
	return true
}

// AnalyticsQuery filters a report. From and To are inclusive calendar dates
// on the delivery date and take precedence over Year and Month.
type AnalyticsQuery struct {
	Year          int           `json:"year"`
	Month         int           `json:"month,omitempty"`
	From          *time.Time    `json:"from,omitempty"`
	To            *time.Time    `json:"to,omitempty"`
	Shop          models.Shop   `json:"shop,omitempty"`
	PaymentStatus PaymentFilter `json:"payment_status,omitempty"`
	Lines         LineSelector  `json:"lines"`
}

func (q AnalyticsQuery) hasDateRange() bool {
	return (q.From != nil && !q.From.IsZero()) || (q.To != nil && !q.To.IsZero())
}

// wantsMonthlySeries is false when a month or date range already narrows
// the report below a year.
func (q AnalyticsQuery) wantsMonthlySeries() bool {
	return q.Month == 0 && !q.hasDateRange()
}

// normalized fills in the defaults so equal requests produce equal cache
// keys.
func (q AnalyticsQuery) normalized(now time.Time) AnalyticsQuery {
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Lines == "" {
		q.Lines = LinesBoth
	}
	if q.From != nil {
		from := models.StartOfDay(*q.From)
		q.From = &from
	}
	if q.To != nil {
		to := models.StartOfDay(*q.To)
		q.To = &to
	}
	return q
}

type Bucket struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type OrderStats struct {
	Count     int             `json:"count"`
	Revenue   decimal.Decimal `json:"revenue"`
	Collected decimal.Decimal `json:"collected"`
	Balance   decimal.Decimal `json:"balance"`
	Average   decimal.Decimal `json:"average"`
	ByStatus  map[string]int  `json:"by_status"`
}

// PaymentBuckets splits orders by derived payment status. Overdue overlaps
// the other three.
type PaymentBuckets struct {
	Pending   Bucket `json:"pending"`
	Partial   Bucket `json:"partial"`
	Completed Bucket `json:"completed"`
	Overdue   Bucket `json:"overdue"`
}

type PaymentTypeStat struct {
	Type      string          `json:"type"`
	Count     int             `json:"count"`
	Gross     decimal.Decimal `json:"gross"`
	Collected decimal.Decimal `json:"collected"`
}

type ShopStat struct {
	Shop      models.Shop     `json:"shop"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Collected decimal.Decimal `json:"collected"`
	Balance   decimal.Decimal `json:"balance"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetProfit decimal.Decimal `json:"net_profit"`
}

type ExpenseStats struct {
	Total      decimal.Decimal            `json:"total"`
	Count      int                        `json:"count"`
	Average    decimal.Decimal            `json:"average"`
	ByShop     map[string]decimal.Decimal `json:"by_shop"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
}

type LineReport struct {
	Orders       OrderStats        `json:"orders"`
	Payments     PaymentBuckets    `json:"payments"`
	PaymentTypes []PaymentTypeStat `json:"payment_types"`
	Shops        []ShopStat        `json:"shops"`
	Expenses     ExpenseStats      `json:"expenses"`
	NetProfit    decimal.Decimal   `json:"net_profit"`
}

type BusinessGrowth struct {
	LaundryRevenue  decimal.Decimal `json:"laundry_revenue"`
	HotelRevenue    decimal.Decimal `json:"hotel_revenue"`
	LaundryExpenses decimal.Decimal `json:"laundry_expenses"`
	HotelExpenses   decimal.Decimal `json:"hotel_expenses"`
	Revenue         decimal.Decimal `json:"total_revenue"`
	Expenses        decimal.Decimal `json:"total_expenses"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	Orders          int             `json:"total_orders"`
}

type MonthlyGrowth struct {
	Month   string          `json:"month"`
	Laundry decimal.Decimal `json:"laundry"`
	Hotel   decimal.Decimal `json:"hotel"`
	Total   decimal.Decimal `json:"total"`
}

// MonthlyReport holds twelve zero-filled buckets, January first.
type MonthlyReport struct {
	Year           int                          `json:"year"`
	Months         []string                     `json:"months"`
	RevenueByShop  map[string][]decimal.Decimal `json:"revenue_by_shop"`
	Revenue        []decimal.Decimal            `json:"revenue"`
	OrderVolume    []int                        `json:"order_volume"`
	ExpensesByShop map[string][]decimal.Decimal `json:"expenses_by_shop"`
	Growth         []MonthlyGrowth              `json:"growth"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CustomerStat struct {
	Name   string          `json:"name"`
	Phone  string          `json:"phone"`
	Orders int             `json:"orders"`
	Spent  decimal.Decimal `json:"spent"`
}

// RevenueVerification compares stored order totals with an independent sum
// over line items.
type RevenueVerification struct {
	StoredTotal decimal.Decimal `json:"stored_total"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Difference  decimal.Decimal `json:"difference"`
	Consistent  bool            `json:"consistent"`
}

type Dashboard struct {
	Query           AnalyticsQuery      `json:"query"`
	Laundry         LineReport          `json:"laundry"`
	Hotel           LineReport          `json:"hotel"`
	Growth          BusinessGrowth      `json:"business_growth"`
	Monthly         *MonthlyReport      `json:"monthly,omitempty"`
	CommonItems     []NameCount         `json:"common_items"`
	TopServices     []NameCount         `json:"top_services"`
	CommonCustomers []CustomerStat      `json:"common_customers"`
	Verification    RevenueVerification `json:"verification"`
}

type OrderSummary struct {
	Code          string               `json:"code"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone"`
	Shop          models.Shop          `json:"shop"`
	DeliveryDate  time.Time            `json:"delivery_date"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Overdue       bool                 `json:"overdue"`
	Revenue       decimal.Decimal      `json:"revenue"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	Balance       decimal.Decimal      `json:"balance"`
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

func emptyLineReport(line models.BusinessLine) LineReport {
	report := LineReport{
		Orders:       OrderStats{ByStatus: make(map[string]int, len(models.OrderStatuses))},
		PaymentTypes: make([]PaymentTypeStat, 0, len(models.PaymentTypes)),
		Shops:        make([]ShopStat, 0, len(line.Shops())),
		Expenses: ExpenseStats{
			ByShop:     make(map[string]decimal.Decimal),
			ByCategory: make(map[string]decimal.Decimal),
		},
	}
	for _, status := range models.OrderStatuses {
		report.Orders.ByStatus[string(status)] = 0
	}
	for _, pt := range models.PaymentTypes {
		report.PaymentTypes = append(report.PaymentTypes, PaymentTypeStat{Type: pt.Label()})
	}
	for _, shop := range line.Shops() {
		report.Shops = append(report.Shops, ShopStat{Shop: shop})
		report.Expenses.ByShop[string(shop)] = decimal.Zero
	}
	return report
}

func emptyMonthlyReport(year int) *MonthlyReport {
	report := &MonthlyReport{
		Year:           year,
		Months:         append([]string(nil), monthNames...),
		RevenueByShop:  make(map[string][]decimal.Decimal),
		Revenue:        zeroSeries(),
		OrderVolume:    make([]int, 12),
		ExpensesByShop: make(map[string][]decimal.Decimal),
		Growth:         make([]MonthlyGrowth, 12),
	}
	for _, shop := range []models.Shop{models.ShopA, models.ShopB, models.ShopHotel} {
		report.RevenueByShop[string(shop)] = zeroSeries()
		report.ExpensesByShop[string(shop)] = zeroSeries()
	}
	for i := range report.Growth {
		report.Growth[i].Month = monthNames[i]
	}
	return report
}

func zeroSeries() []decimal.Decimal {
	series := make([]decimal.Decimal, 12)
	for i := range series {
		series[i] = decimal.Zero
	}
	return series
}

// EmptyDashboard is the zero-valued report returned when aggregation fails
// or nothing matches.
func EmptyDashboard(q AnalyticsQuery) *Dashboard {
	d := &Dashboard{
		Query:           q,
		Laundry:         emptyLineReport(models.LineLaundry),
		Hotel:           emptyLineReport(models.LineHotel),
		CommonItems:     []NameCount{},
		TopServices:     []NameCount{},
		CommonCustomers: []CustomerStat{},
		Verification:    RevenueVerification{Consistent: true},
	}
	if q.wantsMonthlySeries() {
		d.Monthly = emptyMonthlyReport(q.Year)
	}
	return d
}
