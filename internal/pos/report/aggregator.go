// Package report derives read-only statistics from the sale ledger and catalog.
//
// Every getter answers with a zero value when the store cannot be read, so a
// dashboard can always render.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

// DayLabelLayout formats the day of a DailySales entry
const DayLabelLayout = "2006-01-02"

// WeekDays is the length of the recent sales series
const WeekDays = 7

// DailySales is the sum of sale totals on one local calendar day
type DailySales struct {
	Day   time.Time       `json:"day"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// Dashboard is a snapshot of every statistic
type Dashboard struct {
	GeneratedAt       time.Time         `json:"generated_at"`
	TotalStockValue   decimal.Decimal   `json:"total_stock_value"`
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	ProductCount      int64             `json:"product_count"`
	TotalItemQuantity int64             `json:"total_item_quantity"`
	SalesToday        int64             `json:"sales_today"`
	SalesThisMonth    int64             `json:"sales_this_month"`
	Last7Days         []DailySales      `json:"last_7_days"`
	TopSeller         *domain.TopSeller `json:"top_seller,omitempty"`
}

// Aggregator answers the dashboard queries using clock for "today"
type Aggregator struct {
	reports domain.ReportRepository
	clock   domain.Clock
}

// NewAggregator creates an aggregator
func NewAggregator(reports domain.ReportRepository, clock domain.Clock) *Aggregator {
	return &Aggregator{reports: reports, clock: clock}
}

func logFailure(ctx context.Context, stat string, err error) {
	logger.Error(ctx).Err(err).Str("stat", stat).Msg("Report query failed")
}

// TotalStockValue sums price × quantity over all products
func (a *Aggregator) TotalStockValue(ctx context.Context) decimal.Decimal {
	v, err := a.reports.TotalStockValue(ctx)
	if err != nil {
		logFailure(ctx, "total_stock_value", err)
		return decimal.Zero
	}
	return v
}

// TotalRevenue sums every sale total
func (a *Aggregator) TotalRevenue(ctx context.Context) decimal.Decimal {
	v, err := a.reports.TotalRevenue(ctx)
	if err != nil {
		logFailure(ctx, "total_revenue", err)
		return decimal.Zero
	}
	return v
}

// DistinctProductCount counts catalog entries
func (a *Aggregator) DistinctProductCount(ctx context.Context) int64 {
	n, err := a.reports.ProductCount(ctx)
	if err != nil {
		logFailure(ctx, "product_count", err)
		return 0
	}
	return n
}

// TotalItemQuantity sums on-hand quantity
func (a *Aggregator) TotalItemQuantity(ctx context.Context) int64 {
	n, err := a.reports.TotalItemQuantity(ctx)
	if err != nil {
		logFailure(ctx, "total_item_quantity", err)
		return 0
	}
	return n
}

// SalesCountForToday counts sales on the clock's current day
func (a *Aggregator) SalesCountForToday(ctx context.Context) int64 {
	from := domain.StartOfDay(a.clock.Now())
	return a.countBetween(ctx, "sales_today", from, from.AddDate(0, 0, 1))
}

// SalesCountForThisMonth counts sales in the clock's current month
func (a *Aggregator) SalesCountForThisMonth(ctx context.Context) int64 {
	from := domain.StartOfMonth(a.clock.Now())
	return a.countBetween(ctx, "sales_this_month", from, from.AddDate(0, 1, 0))
}

func (a *Aggregator) countBetween(ctx context.Context, stat string, from, to time.Time) int64 {
	n, err := a.reports.CountSalesBetween(ctx, from, to)
	if err != nil {
		logFailure(ctx, stat, err)
		return 0
	}
	return n
}

// SalesForLast7Days returns one entry per day from six days ago through
// today, oldest first. Days without sales have a zero total.
func (a *Aggregator) SalesForLast7Days(ctx context.Context) []DailySales {
	today := domain.StartOfDay(a.clock.Now())
	from := today.AddDate(0, 0, -(WeekDays - 1))

	series := make([]DailySales, WeekDays)
	index := make(map[string]int, WeekDays)
	for i := range series {
		day := from.AddDate(0, 0, i)
		label := day.Format(DayLabelLayout)
		series[i] = DailySales{Day: day, Label: label, Total: decimal.Zero}
		index[label] = i
	}

	sales, err := a.reports.SalesBetween(ctx, from, today.AddDate(0, 0, 1))
	if err != nil {
		logFailure(ctx, "last_7_days", err)
		return series
	}

	loc := today.Location()
	for _, s := range sales {
		i, ok := index[s.SaleDate.In(loc).Format(DayLabelLayout)]
		if !ok {
			continue
		}
		series[i].Total = series[i].Total.Add(s.TotalAmount)
	}
	return series
}

// TopSellingProduct returns the product with the most units sold; ok is
// false when nothing has been sold or the store cannot be read
func (a *Aggregator) TopSellingProduct(ctx context.Context) (domain.TopSeller, bool) {
	top, ok, err := a.reports.TopSellingProduct(ctx)
	if err != nil {
		logFailure(ctx, "top_seller", err)
		return domain.TopSeller{}, false
	}
	return top, ok
}

// SaleDetails lists the lines of a sale in entry order
func (a *Aggregator) SaleDetails(ctx context.Context, saleID uint) []domain.SaleDetail {
	details, err := a.reports.SaleDetails(ctx, saleID)
	if err != nil {
		logFailure(ctx, "sale_details", err)
		return []domain.SaleDetail{}
	}
	if details == nil {
		return []domain.SaleDetail{}
	}
	return details
}

// Dashboard gathers every statistic into one snapshot
func (a *Aggregator) Dashboard(ctx context.Context) Dashboard {
	d := Dashboard{
		GeneratedAt:       a.clock.Now(),
		TotalStockValue:   a.TotalStockValue(ctx),
		TotalRevenue:      a.TotalRevenue(ctx),
		ProductCount:      a.DistinctProductCount(ctx),
		TotalItemQuantity: a.TotalItemQuantity(ctx),
		SalesToday:        a.SalesCountForToday(ctx),
		SalesThisMonth:    a.SalesCountForThisMonth(ctx),
		Last7Days:         a.SalesForLast7Days(ctx),
	}
	if top, ok := a.TopSellingProduct(ctx); ok {
		d.TopSeller = &top
	}
	return d
}
