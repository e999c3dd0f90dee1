package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"business_manager/internal/apperrors"
	"business_manager/internal/cache"
	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	commonItemsLimit     = 5
	topServicesLimit     = 10
	commonCustomersLimit = 5
	defaultStatusListing = 50
)

var verificationTolerance = decimal.New(1, -2)

// AnalyticsService builds read-only reports. It never returns an error: a
// failed computation is logged and yields the empty report shape.
type AnalyticsService interface {
	Dashboard(ctx context.Context, q AnalyticsQuery) *Dashboard
	OrdersByPaymentStatus(ctx context.Context, q AnalyticsQuery, limit int) []OrderSummary
	VerifyRevenue(ctx context.Context, q AnalyticsQuery) RevenueVerification
}

type analyticsService struct {
	repos  *repository.Repositories
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(repos *repository.Repositories, reportCache cache.Cache, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repos: repos, cache: reportCache, logger: logger, now: time.Now}
}

func (s *analyticsService) Dashboard(ctx context.Context, q AnalyticsQuery) (result *Dashboard) {
	q = q.normalized(s.now())
	defer func() {
		if r := recover(); r != nil {
			s.failed(&apperrors.AnalyticsComputationError{Stage: "dashboard", Err: fmt.Errorf("panic: %v", r)})
			result = EmptyDashboard(q)
		}
	}()

	dashboard, err := s.compute(ctx, q)
	if err != nil {
		s.failed(err)
		return EmptyDashboard(q)
	}
	return dashboard
}

func (s *analyticsService) OrdersByPaymentStatus(ctx context.Context, q AnalyticsQuery, limit int) []OrderSummary {
	q = q.normalized(s.now())
	if limit <= 0 {
		limit = defaultStatusListing
	}
	summaries := []OrderSummary{}

	if err := s.validate(q); err != nil {
		s.failed(err)
		return summaries
	}
	today := s.now()
	repos := s.repos.WithContext(ctx)
	for _, line := range []models.BusinessLine{models.LineLaundry, models.LineHotel} {
		if !q.Lines.includes(line) {
			continue
		}
		orders, err := s.loadOrders(repos, q, line, today, true)
		if err != nil {
			s.failed(err)
			return []OrderSummary{}
		}
		for _, o := range orders {
			summaries = append(summaries, summarize(o, today))
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].DeliveryDate.After(summaries[j].DeliveryDate)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

func (s *analyticsService) VerifyRevenue(ctx context.Context, q AnalyticsQuery) RevenueVerification {
	q = q.normalized(s.now())
	if err := s.validate(q); err != nil {
		s.failed(err)
		return RevenueVerification{Consistent: true}
	}
	today := s.now()
	repos := s.repos.WithContext(ctx)
	var all []models.Order
	for _, line := range []models.BusinessLine{models.LineLaundry, models.LineHotel} {
		if !q.Lines.includes(line) {
			continue
		}
		orders, err := s.loadOrders(repos, q, line, today, false)
		if err != nil {
			s.failed(err)
			return RevenueVerification{Consistent: true}
		}
		all = append(all, orders...)
	}
	return verifyRevenue(all)
}

func (s *analyticsService) failed(err error) {
	s.logger.Error("analytics computation failed, returning empty report", zap.Error(err))
}

func (s *analyticsService) validate(q AnalyticsQuery) error {
	switch {
	case !q.PaymentStatus.Valid():
		return &apperrors.AnalyticsComputationError{Stage: "query", Err: fmt.Errorf("unknown payment status filter %q", q.PaymentStatus)}
	case !q.Lines.Valid():
		return &apperrors.AnalyticsComputationError{Stage: "query", Err: fmt.Errorf("unknown business line %q", q.Lines)}
	case q.Shop != "" && !q.Shop.Valid():
		return &apperrors.AnalyticsComputationError{Stage: "query", Err: fmt.Errorf("unknown shop %q", q.Shop)}
	case q.Month < 0 || q.Month > 12:
		return &apperrors.AnalyticsComputationError{Stage: "query", Err: fmt.Errorf("month %d out of range", q.Month)}
	}
	return nil
}

func (s *analyticsService) compute(ctx context.Context, q AnalyticsQuery) (*Dashboard, error) {
	if err := s.validate(q); err != nil {
		return nil, err
	}

	today := s.now()
	repos := s.repos.WithContext(ctx)
	dashboard := EmptyDashboard(q)

	var orders []models.Order
	var expenses []models.ExpenseRecord
	for _, line := range []models.BusinessLine{models.LineLaundry, models.LineHotel} {
		if !q.Lines.includes(line) {
			continue
		}
		lineOrders, err := s.loadOrders(repos, q, line, today, false)
		if err != nil {
			return nil, err
		}
		lineExpenses, err := repos.Expenses.FindRecords(repository.ExpenseFilter{
			BusinessLine: line,
			Shop:         q.Shop,
			Dates:        reportRange(q),
		})
		if err != nil {
			return nil, &apperrors.AnalyticsComputationError{Stage: "load expenses", Err: err}
		}

		report := buildLineReport(line, lineOrders, lineExpenses, today)
		if line == models.LineHotel {
			dashboard.Hotel = report
		} else {
			dashboard.Laundry = report
		}
		orders = append(orders, lineOrders...)
		expenses = append(expenses, lineExpenses...)
	}

	dashboard.Growth = businessGrowth(dashboard.Laundry, dashboard.Hotel)
	if dashboard.Monthly != nil {
		fillMonthly(dashboard.Monthly, orders, expenses)
	}
	dashboard.CommonItems = s.commonItems(ctx, q, orders)
	dashboard.TopServices = topServices(orders)
	dashboard.CommonCustomers = commonCustomers(orders)
	dashboard.Verification = verifyRevenue(orders)
	return dashboard, nil
}

// reportRange resolves the query's date filter: an explicit range, else the
// month, else the whole year.
func reportRange(q AnalyticsQuery) repository.DateRange {
	if q.hasDateRange() {
		return inclusiveRange(q.From, q.To)
	}
	if q.Month > 0 {
		start := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
		return repository.DateRange{From: start, Until: start.AddDate(0, 1, 0)}
	}
	start := time.Date(q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return repository.DateRange{From: start, Until: start.AddDate(1, 0, 0)}
}

func (s *analyticsService) loadOrders(repos *repository.Repositories, q AnalyticsQuery, line models.BusinessLine, today time.Time, newestFirst bool) ([]models.Order, error) {
	orders, err := repos.Orders.Find(repository.OrderFilter{
		BusinessLine: line,
		Shop:         q.Shop,
		Delivery:     reportRange(q),
		NewestFirst:  newestFirst,
	})
	if err != nil {
		return nil, &apperrors.AnalyticsComputationError{Stage: "load orders", Err: err}
	}
	if q.PaymentStatus == PaymentFilterNone {
		return orders, nil
	}

	filtered := orders[:0]
	for _, o := range orders {
		if matchesPayment(&o, q.PaymentStatus, today) {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func matchesPayment(o *models.Order, filter PaymentFilter, today time.Time) bool {
	if filter == PaymentFilterOverdue {
		return o.IsOverdue(today)
	}
	return string(models.DerivePaymentStatus(o.LineTotal(), o.AmountPaid)) == string(filter)
}

func buildLineReport(line models.BusinessLine, orders []models.Order, expenses []models.ExpenseRecord, today time.Time) LineReport {
	report := emptyLineReport(line)

	shops := make(map[models.Shop]*ShopStat, len(report.Shops))
	for i := range report.Shops {
		shops[report.Shops[i].Shop] = &report.Shops[i]
	}
	types := make(map[models.PaymentType]*PaymentTypeStat, len(report.PaymentTypes))
	for i, pt := range models.PaymentTypes {
		types[pt] = &report.PaymentTypes[i]
	}

	stats := &report.Orders
	for i := range orders {
		o := &orders[i]
		revenue := o.LineTotal()
		balance := revenue.Sub(o.AmountPaid)

		stats.Count++
		stats.Revenue = stats.Revenue.Add(revenue)
		stats.Collected = stats.Collected.Add(o.AmountPaid)
		stats.Balance = stats.Balance.Add(balance)
		stats.ByStatus[string(o.Status)]++

		switch models.DerivePaymentStatus(revenue, o.AmountPaid) {
		case models.PaymentPending:
			addBucket(&report.Payments.Pending, revenue)
		case models.PaymentPartial:
			addBucket(&report.Payments.Partial, o.AmountPaid)
		case models.PaymentCompleted:
			addBucket(&report.Payments.Completed, revenue)
		}
		if o.IsOverdue(today) {
			addBucket(&report.Payments.Overdue, balance)
		}

		pt, ok := types[o.PaymentType]
		if !ok {
			pt = types[models.PaymentOther]
		}
		pt.Count++
		pt.Gross = pt.Gross.Add(revenue)
		pt.Collected = pt.Collected.Add(o.AmountPaid)

		if shop, ok := shops[o.Shop]; ok {
			shop.Orders++
			shop.Revenue = shop.Revenue.Add(revenue)
			shop.Collected = shop.Collected.Add(o.AmountPaid)
			shop.Balance = shop.Balance.Add(balance)
		}
	}
	stats.Average = average(stats.Revenue, stats.Count)

	exp := &report.Expenses
	for _, record := range expenses {
		exp.Count++
		exp.Total = exp.Total.Add(record.Amount)
		exp.ByShop[string(record.Shop)] = exp.ByShop[string(record.Shop)].Add(record.Amount)
		exp.ByCategory[record.Category.Label] = exp.ByCategory[record.Category.Label].Add(record.Amount)
		if shop, ok := shops[record.Shop]; ok {
			shop.Expenses = shop.Expenses.Add(record.Amount)
		}
	}
	exp.Average = average(exp.Total, exp.Count)

	for i := range report.Shops {
		report.Shops[i].NetProfit = report.Shops[i].Revenue.Sub(report.Shops[i].Expenses)
	}
	report.NetProfit = stats.Revenue.Sub(exp.Total)
	return report
}

func addBucket(b *Bucket, amount decimal.Decimal) {
	b.Count++
	b.Amount = b.Amount.Add(amount)
}

// average returns zero for an empty set.
func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}

func businessGrowth(laundry, hotel LineReport) BusinessGrowth {
	g := BusinessGrowth{
		LaundryRevenue:  laundry.Orders.Revenue,
		HotelRevenue:    hotel.Orders.Revenue,
		LaundryExpenses: laundry.Expenses.Total,
		HotelExpenses:   hotel.Expenses.Total,
		Orders:          laundry.Orders.Count + hotel.Orders.Count,
	}
	g.Revenue = g.LaundryRevenue.Add(g.HotelRevenue)
	g.Expenses = g.LaundryExpenses.Add(g.HotelExpenses)
	g.NetProfit = g.Revenue.Sub(g.Expenses)
	return g
}

func fillMonthly(report *MonthlyReport, orders []models.Order, expenses []models.ExpenseRecord) {
	for i := range orders {
		o := &orders[i]
		if o.DeliveryDate.UTC().Year() != report.Year {
			continue
		}
		m := int(o.DeliveryDate.UTC().Month()) - 1
		revenue := o.LineTotal()

		shop := string(o.Shop)
		if series, ok := report.RevenueByShop[shop]; ok {
			series[m] = series[m].Add(revenue)
		}
		report.Revenue[m] = report.Revenue[m].Add(revenue)
		report.OrderVolume[m]++

		g := &report.Growth[m]
		if o.BusinessLine == models.LineHotel {
			g.Hotel = g.Hotel.Add(revenue)
		} else {
			g.Laundry = g.Laundry.Add(revenue)
		}
		g.Total = g.Total.Add(revenue)
	}

	for _, record := range expenses {
		if record.Date.UTC().Year() != report.Year {
			continue
		}
		m := int(record.Date.UTC().Month()) - 1
		if series, ok := report.ExpensesByShop[string(record.Shop)]; ok {
			series[m] = series[m].Add(record.Amount)
		}
	}
}

// commonItems ranks item names across the order set. Results are cached per
// query and exact set of orders; order mutations invalidate the cache.
func (s *analyticsService) commonItems(ctx context.Context, q AnalyticsQuery, orders []models.Order) []NameCount {
	if s.cache == nil {
		return rankNames(orders)
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	key, err := cache.Key("analytics:common_items", q, ids)
	if err != nil {
		s.logger.Warn("failed to build cache key", zap.Error(err))
		return rankNames(orders)
	}

	var cached []NameCount
	if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("analytics cache read failed", zap.Error(err))
	} else if ok {
		return cached
	}

	ranked := rankNames(orders)
	if err := s.cache.Set(ctx, key, ranked); err != nil {
		s.logger.Warn("analytics cache write failed", zap.Error(err))
	}
	return ranked
}

func rankNames(orders []models.Order) []NameCount {
	counts := make(map[string]int)
	for _, o := range orders {
		for i := range o.Items {
			for _, name := range o.Items[i].Names() {
				counts[name]++
			}
		}
	}
	return topCounts(counts, commonItemsLimit)
}

func topServices(orders []models.Order) []NameCount {
	counts := make(map[string]int)
	for _, o := range orders {
		for i := range o.Items {
			for _, service := range o.Items[i].Services() {
				counts[string(service)]++
			}
		}
	}
	return topCounts(counts, topServicesLimit)
}

func topCounts(counts map[string]int, limit int) []NameCount {
	ranked := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, NameCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func commonCustomers(orders []models.Order) []CustomerStat {
	byID := make(map[uint]*CustomerStat)
	for i := range orders {
		o := &orders[i]
		stat, ok := byID[o.CustomerID]
		if !ok {
			stat = &CustomerStat{Name: o.Customer.Name, Phone: o.Customer.Phone}
			byID[o.CustomerID] = stat
		}
		stat.Orders++
		stat.Spent = stat.Spent.Add(o.LineTotal())
	}

	ranked := make([]CustomerStat, 0, len(byID))
	for _, stat := range byID {
		ranked = append(ranked, *stat)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		if !a.Spent.Equal(b.Spent) {
			return a.Spent.GreaterThan(b.Spent)
		}
		return a.Phone < b.Phone
	})
	if len(ranked) > commonCustomersLimit {
		ranked = ranked[:commonCustomersLimit]
	}
	return ranked
}

func verifyRevenue(orders []models.Order) RevenueVerification {
	v := RevenueVerification{}
	for i := range orders {
		v.StoredTotal = v.StoredTotal.Add(orders[i].TotalPrice)
		v.LineTotal = v.LineTotal.Add(orders[i].LineTotal())
	}
	v.Difference = v.StoredTotal.Sub(v.LineTotal)
	v.Consistent = v.Difference.Abs().LessThan(verificationTolerance)
	return v
}

func summarize(o models.Order, today time.Time) OrderSummary {
	revenue := o.LineTotal()
	return OrderSummary{
		Code:          o.Code,
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		Shop:          o.Shop,
		DeliveryDate:  o.DeliveryDate,
		PaymentStatus: models.DerivePaymentStatus(revenue, o.AmountPaid),
		Overdue:       o.IsOverdue(today),
		Revenue:       revenue,
		AmountPaid:    o.AmountPaid,
		Balance:       revenue.Sub(o.AmountPaid),
	}
}
