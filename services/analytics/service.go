package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketplace/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	mostClickedLimit  = 5
	topPerCategory    = 3
	recentOrdersLimit = 5
)

// Service computes the dashboard report from a Source.
type Service struct {
	source Source
	cache  *Cache
	loc    *time.Location
	locale string
	now    func() time.Time
}

type Option func(*Service)

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLocale(locale string) Option {
	return func(s *Service) { s.locale = locale }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		loc:    time.UTC,
		locale: "fr",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type periodStats struct {
	revenue   decimal.Decimal
	orders    int
	delivered int
	customers int
	products  int64
}

func summarize(orders []models.Order) periodStats {
	var st periodStats
	customers := map[string]struct{}{}
	for i := range orders {
		o := &orders[i]
		st.orders++
		if o.IsPaid() {
			st.revenue = st.revenue.Add(decimal.NewFromFloat(o.TotalPrice))
		}
		if o.IsDelivered() {
			st.delivered++
			customers[o.CustomerKey()] = struct{}{}
		}
	}
	st.customers = len(customers)
	return st
}

// Report builds the analytics report for r. Reads are issued sequentially and
// are not taken from a single snapshot.
func (s *Service) Report(ctx context.Context, r Range) (*models.AnalyticsReport, error) {
	now := s.now().In(s.loc)
	w := WindowFor(r, now)

	current, err := s.source.FindOrders(ctx, OrderFilter{From: &w.Start, Statuses: models.ActiveStatuses})
	if err != nil {
		return nil, err
	}
	previous, err := s.source.FindOrders(ctx, OrderFilter{From: &w.PrevStart, To: &w.PrevEnd, Statuses: models.ActiveStatuses})
	if err != nil {
		return nil, err
	}

	cur := summarize(current)
	prev := summarize(previous)

	if cur.products, err = s.source.CountProducts(ctx, &w.Start, nil); err != nil {
		return nil, err
	}
	if prev.products, err = s.source.CountProducts(ctx, &w.PrevStart, &w.PrevEnd); err != nil {
		return nil, err
	}

	clicked, err := s.mostClicked(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.source.FindOrders(ctx, OrderFilter{})
	if err != nil {
		return nil, err
	}

	top, err := s.topProductsByCategory(ctx, all)
	if err != nil {
		return nil, err
	}

	revenue, _ := cur.revenue.Float64()
	prevRevenue, _ := prev.revenue.Float64()

	return &models.AnalyticsReport{
		Revenue:         revenue,
		Orders:          cur.orders,
		DeliveredOrders: cur.delivered,
		Products:        cur.products,
		Customers:       cur.customers,

		RevenueChange:   PercentChange(revenue, prevRevenue),
		OrdersChange:    PercentChange(float64(cur.orders), float64(prev.orders)),
		DeliveredChange: PercentChange(float64(cur.delivered), float64(prev.delivered)),
		CustomersChange: PercentChange(float64(cur.customers), float64(prev.customers)),
		ProductsChange:  PercentChange(float64(cur.products), float64(prev.products)),

		TopProductsByCategory: top,
		MonthlyStats:          s.monthlyStats(all, now),
		MostClickedProducts:   clicked,
		RecentOrders:          recentOrders(all),
	}, nil
}

// categoryLookup resolves product category names, falling back to the placeholder.
func (s *Service) categoryLookup(ctx context.Context, products []models.Product) (map[primitive.ObjectID]string, error) {
	var catIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, p := range products {
		if p.Category != nil && !seen[*p.Category] {
			seen[*p.Category] = true
			catIDs = append(catIDs, *p.Category)
		}
	}
	names, err := s.source.CategoryNames(ctx, catIDs)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		name := ""
		if p.Category != nil {
			name = names[*p.Category]
		}
		if name == "" {
			name = models.UncategorizedLabel
		}
		byProduct[p.ID] = name
	}
	return byProduct, nil
}

func (s *Service) mostClicked(ctx context.Context) ([]models.ClickedProduct, error) {
	products, err := s.source.MostClickedProducts(ctx, mostClickedLimit)
	if err != nil {
		return nil, err
	}
	cats, err := s.categoryLookup(ctx, products)
	if err != nil {
		return nil, err
	}

	out := make([]models.ClickedProduct, 0, len(products))
	for _, p := range products {
		if p.Clicks <= 0 {
			continue
		}
		out = append(out, models.ClickedProduct{Name: p.Name, Category: cats[p.ID], Clicks: p.Clicks})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })
	if len(out) > mostClickedLimit {
		out = out[:mostClickedLimit]
	}
	return out, nil
}

type productSales struct {
	id      primitive.ObjectID
	name    string
	units   int
	revenue decimal.Decimal
}

func (s *Service) topProductsByCategory(ctx context.Context, orders []models.Order) (map[string][]models.CategoryProduct, error) {
	var acc []*productSales
	index := map[primitive.ObjectID]*productSales{}
	for _, o := range orders {
		for _, line := range o.Products {
			ps, ok := index[line.Product]
			if !ok {
				ps = &productSales{id: line.Product, name: line.Name}
				index[line.Product] = ps
				acc = append(acc, ps)
			}
			ps.units += line.Quantity
			ps.revenue = ps.revenue.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}

	top := map[string][]models.CategoryProduct{}
	if len(acc) == 0 {
		return top, nil
	}

	ids := make([]primitive.ObjectID, 0, len(acc))
	for _, ps := range acc {
		ids = append(ids, ps.id)
	}
	products, err := s.source.FindProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	cats, err := s.categoryLookup(ctx, products)
	if err != nil {
		return nil, err
	}

	for _, ps := range acc {
		cat, ok := cats[ps.id]
		if !ok {
			cat = models.UncategorizedLabel
		}
		revenue, _ := ps.revenue.Float64()
		top[cat] = append(top[cat], models.CategoryProduct{
			Name:     ps.name,
			Category: cat,
			Sales:    ps.units,
			Revenue:  revenue,
		})
	}
	for cat, items := range top {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Sales > items[j].Sales })
		if len(items) > topPerCategory {
			items = items[:topPerCategory]
		}
		top[cat] = items
	}
	return top, nil
}

func (s *Service) monthlyStats(orders []models.Order, now time.Time) []models.MonthlyStat {
	var sales [12]decimal.Decimal
	var counts [12]int
	for _, o := range orders {
		t := o.CreatedAt.In(s.loc)
		if t.Year() != now.Year() {
			continue
		}
		m := t.Month() - 1
		sales[m] = sales[m].Add(decimal.NewFromFloat(o.TotalPrice))
		counts[m]++
	}

	stats := make([]models.MonthlyStat, 12)
	for i := range stats {
		v, _ := sales[i].Float64()
		stats[i] = models.MonthlyStat{
			Month:  MonthLabel(s.locale, time.Month(i+1)),
			Sales:  v,
			Orders: counts[i],
		}
	}
	return stats
}

func recentOrders(orders []models.Order) []models.RecentOrder {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > recentOrdersLimit {
		sorted = sorted[:recentOrdersLimit]
	}

	out := make([]models.RecentOrder, 0, len(sorted))
	for _, o := range sorted {
		customer := o.ShippingAddress.Name
		if customer == "" {
			customer = o.ShippingAddress.Email
		}
		out = append(out, models.RecentOrder{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Customer:    customer,
			TotalPrice:  o.TotalPrice,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		})
	}
	return out
}

// ReportSafe runs Report and converts a panic into an error.
func (s *Service) ReportSafe(ctx context.Context, r Range) (report *models.AnalyticsReport, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = fmt.Errorf("analytics panic: %v", rec)
		}
	}()
	return s.Report(ctx, r)
}
