package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/till-pos/internal/pos/cart"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/report"
	"github.com/tair/till-pos/internal/pos/repository"
	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/testutil"
)

var now = time.Date(2024, time.May, 20, 14, 0, 0, 0, time.UTC)

type env struct {
	store      *repository.Store
	clock      *testutil.Clock
	checkout   *command.CommitSaleHandler
	aggregator *report.Aggregator
}

func newEnv(t *testing.T) env {
	t.Helper()
	store, _ := testutil.NewStore(t)
	clock := testutil.NewClock(now)
	return env{
		store:      store,
		clock:      clock,
		checkout:   command.NewCommitSaleHandler(store, clock, command.StockPolicy{}, nil),
		aggregator: report.NewAggregator(store.Reports(), clock),
	}
}

// sell commits one sale at the given time
func (e env) sell(t *testing.T, at time.Time, products ...domain.Product) domain.Sale {
	t.Helper()
	e.clock.Set(at)
	defer e.clock.Set(now)

	c := cart.New()
	for _, p := range products {
		c.AddProduct(p)
	}
	sale, err := e.checkout.Handle(context.Background(), command.CommitSaleCommand{Cart: c})
	require.NoError(t, err)
	return *sale
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSalesForLast7DaysIsComplete(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "Bread", "3.40", 10)

	e.sell(t, now.AddDate(0, 0, -3), p, p)

	series := e.aggregator.SalesForLast7Days(ctx)
	require.Len(t, series, report.WeekDays)

	assert.Equal(t, "2024-05-14", series[0].Label)
	assert.Equal(t, "2024-05-20", series[6].Label)
	for i, day := range series {
		if i == 3 {
			assert.True(t, dec("6.80").Equal(day.Total), day.Total.String())
			assert.Equal(t, "2024-05-17", day.Label)
			continue
		}
		assert.True(t, day.Total.IsZero(), "%s should be zero, got %s", day.Label, day.Total)
	}
}

func TestSalesForLast7DaysBoundaries(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "Bread", "1.00", 100)

	today := domain.StartOfDay(now)
	e.sell(t, today.AddDate(0, 0, -7).Add(23*time.Hour), p) // outside the window
	e.sell(t, today.AddDate(0, 0, -6), p)                   // first second of the window
	e.sell(t, today, p)
	e.sell(t, today.Add(time.Hour), p, p)
	e.sell(t, today.AddDate(0, 0, 1), p) // tomorrow

	series := e.aggregator.SalesForLast7Days(ctx)
	require.Len(t, series, report.WeekDays)
	assert.True(t, dec("1").Equal(series[0].Total))
	assert.True(t, dec("3").Equal(series[6].Total))

	sum := decimal.Zero
	for _, day := range series {
		sum = sum.Add(day.Total)
	}
	assert.True(t, dec("4").Equal(sum))
}

func TestSalesForLast7DaysUsesClockLocation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "Bread", "1.00", 10)

	zone := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2024, time.May, 20, 9, 0, 0, 0, zone)
	e.clock.Set(localNow)

	// 23:30 UTC on the 19th is 09:30 on the 20th in the clock's zone
	c := cart.New()
	c.AddProduct(p)
	e.clock.Set(time.Date(2024, time.May, 19, 23, 30, 0, 0, time.UTC))
	_, err := e.checkout.Handle(ctx, command.CommitSaleCommand{Cart: c})
	require.NoError(t, err)
	e.clock.Set(localNow)

	series := e.aggregator.SalesForLast7Days(ctx)
	assert.Equal(t, "2024-05-20", series[6].Label)
	assert.True(t, dec("1").Equal(series[6].Total))
	assert.Equal(t, int64(1), e.aggregator.SalesCountForToday(ctx))
}

func TestTotalsAndCounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	bread := testutil.SeedProduct(t, e.store, "Bread", "2.00", 10)
	milk := testutil.SeedProduct(t, e.store, "Milk", "1.25", 4)

	assert.True(t, dec("25").Equal(e.aggregator.TotalStockValue(ctx)))
	assert.Equal(t, int64(2), e.aggregator.DistinctProductCount(ctx))
	assert.Equal(t, int64(14), e.aggregator.TotalItemQuantity(ctx))
	assert.True(t, e.aggregator.TotalRevenue(ctx).IsZero())

	e.sell(t, now, bread, milk)                     // today
	e.sell(t, now.AddDate(0, 0, -2), bread)          // this month
	e.sell(t, now.AddDate(0, -1, 0), milk, milk)     // last month
	e.sell(t, domain.StartOfMonth(now), bread, milk) // first instant of the month

	assert.True(t, dec("11").Equal(e.aggregator.TotalRevenue(ctx)), e.aggregator.TotalRevenue(ctx).String())
	assert.Equal(t, int64(1), e.aggregator.SalesCountForToday(ctx))
	assert.Equal(t, int64(3), e.aggregator.SalesCountForThisMonth(ctx))

	// 10-3 bread at 2.00, 4-4 milk at 1.25
	assert.True(t, dec("14").Equal(e.aggregator.TotalStockValue(ctx)), e.aggregator.TotalStockValue(ctx).String())
	assert.Equal(t, int64(7), e.aggregator.TotalItemQuantity(ctx))
}

func TestTopSellingProduct(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, ok := e.aggregator.TopSellingProduct(ctx)
	assert.False(t, ok)

	a := testutil.SeedProduct(t, e.store, "A", "1.00", 10)
	b := testutil.SeedProduct(t, e.store, "B", "1.00", 10)
	c := testutil.SeedProduct(t, e.store, "C", "1.00", 10)

	e.sell(t, now, b, b, c)
	e.sell(t, now, c, a)

	// B and C both sold 2; the lower id wins
	top, ok := e.aggregator.TopSellingProduct(ctx)
	require.True(t, ok)
	assert.Equal(t, b.ID, top.ProductID)
	assert.Equal(t, "B", top.Name)
	assert.Equal(t, int64(2), top.QuantitySold)

	e.sell(t, now, c)
	top, _ = e.aggregator.TopSellingProduct(ctx)
	assert.Equal(t, "C", top.Name)
	assert.Equal(t, int64(3), top.QuantitySold)
}

func TestSaleDetails(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	image := "img/tea.png"
	tea := domain.Product{Name: "Tea", Price: dec("3.00"), Quantity: 5, ImagePath: &image}
	require.NoError(t, e.store.Products().Create(ctx, &tea))
	cake := testutil.SeedProduct(t, e.store, "Cake", "4.50", 5)

	sale := e.sell(t, now, tea, cake, tea)

	tea.Name = "Green tea"
	tea.Price = dec("9.99")
	require.NoError(t, e.store.Products().Update(ctx, &tea))

	details := e.aggregator.SaleDetails(ctx, sale.ID)
	require.Len(t, details, 2)

	assert.Equal(t, "Green tea", details[0].ProductName)
	assert.Equal(t, 2, details[0].QuantitySold)
	assert.True(t, dec("3.00").Equal(details[0].PriceAtSale))
	assert.Equal(t, image, details[0].ImagePath)

	assert.Equal(t, "Cake", details[1].ProductName)
	assert.Empty(t, details[1].ImagePath)

	assert.Empty(t, e.aggregator.SaleDetails(ctx, 999))
}

func TestClosedStoreYieldsZeroValues(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "Bread", "2.00", 10)
	sale := e.sell(t, now, p)
	require.NoError(t, e.store.Close())

	assert.True(t, e.aggregator.TotalStockValue(ctx).IsZero())
	assert.True(t, e.aggregator.TotalRevenue(ctx).IsZero())
	assert.Zero(t, e.aggregator.DistinctProductCount(ctx))
	assert.Zero(t, e.aggregator.TotalItemQuantity(ctx))
	assert.Zero(t, e.aggregator.SalesCountForToday(ctx))
	assert.Zero(t, e.aggregator.SalesCountForThisMonth(ctx))
	_, ok := e.aggregator.TopSellingProduct(ctx)
	assert.False(t, ok)
	assert.Empty(t, e.aggregator.SaleDetails(ctx, sale.ID))

	series := e.aggregator.SalesForLast7Days(ctx)
	require.Len(t, series, report.WeekDays)
	for _, day := range series {
		assert.True(t, day.Total.IsZero())
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	p := testutil.SeedProduct(t, e.store, "Bread", "2.00", 10)
	e.sell(t, now, p)

	d := e.aggregator.Dashboard(ctx)
	assert.Equal(t, now, d.GeneratedAt)
	assert.True(t, dec("2").Equal(d.TotalRevenue))
	assert.True(t, dec("18").Equal(d.TotalStockValue))
	assert.Equal(t, int64(1), d.SalesToday)
	assert.Len(t, d.Last7Days, report.WeekDays)
	require.NotNil(t, d.TopSeller)
	assert.Equal(t, p.ID, d.TopSeller.ProductID)
}
