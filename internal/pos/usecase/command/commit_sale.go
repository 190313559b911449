package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/till-pos/internal/pos/cart"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/logger"
)

// StockPolicy controls how a sale treats stock it does not have
type StockPolicy struct {
	// AllowNegative lets a sale drive quantity below zero instead of failing
	AllowNegative bool
}

// SaleMetrics counts checkout outcomes
type SaleMetrics struct {
	committed prometheus.Counter
	failed    *prometheus.CounterVec
	revenue   prometheus.Counter
}

// NewSaleMetrics creates and registers the checkout metrics on reg
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	m := &SaleMetrics{
		committed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_sales_committed_total",
			Help: "Total number of committed sales",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pos_sales_failed_total",
			Help: "Total number of rejected or rolled back sales",
		}, []string{"reason"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_revenue_total",
			Help: "Sum of committed sale totals",
		}),
	}
	reg.MustRegister(m.committed, m.failed, m.revenue)
	return m
}

func (m *SaleMetrics) observe(sale *domain.Sale, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failed.WithLabelValues(failureReason(err)).Inc()
		return
	}
	m.committed.Inc()
	m.revenue.Add(sale.TotalAmount.InexactFloat64())
}

// CommitSaleCommand checks out a cart on behalf of a user.
// UserID 0 records the sale without an operator.
type CommitSaleCommand struct {
	Cart   *cart.Cart
	UserID uint
}

// CommitSaleHandler turns a cart into one sale, its items and the matching
// stock decrements, all in a single transaction
type CommitSaleHandler struct {
	store   domain.Store
	clock   domain.Clock
	policy  StockPolicy
	metrics *SaleMetrics
}

// NewCommitSaleHandler creates a new commit sale handler. metrics may be nil.
func NewCommitSaleHandler(store domain.Store, clock domain.Clock, policy StockPolicy, metrics *SaleMetrics) *CommitSaleHandler {
	return &CommitSaleHandler{store: store, clock: clock, policy: policy, metrics: metrics}
}

// Handle executes the commit sale command. The cart is never modified;
// clearing it after success is up to the caller.
func (h *CommitSaleHandler) Handle(ctx context.Context, cmd CommitSaleCommand) (*domain.Sale, error) {
	sale, err := h.commit(ctx, cmd)
	h.metrics.observe(sale, err)

	if err != nil {
		logger.Warn(ctx).Err(err).Uint("user_id", cmd.UserID).Msg("Sale not committed")
		return nil, err
	}

	logger.Info(ctx).
		Uint("sale_id", sale.ID).
		Uint("user_id", cmd.UserID).
		Int("lines", len(sale.Items)).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Msg("Sale committed")
	return sale, nil
}

func (h *CommitSaleHandler) commit(ctx context.Context, cmd CommitSaleCommand) (*domain.Sale, error) {
	if cmd.Cart == nil || cmd.Cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	lines := cmd.Cart.Lines()
	sale := &domain.Sale{
		SaleDate:    h.clock.Now(),
		TotalAmount: cmd.Cart.Total(),
	}
	if cmd.UserID != 0 {
		userID := cmd.UserID
		sale.UserID = &userID
	}

	err := h.store.RunTransaction(ctx, func(tx domain.Tx) error {
		if err := tx.Sales().Create(ctx, sale); err != nil {
			return err
		}

		items := make([]domain.SaleItem, 0, len(lines))
		for _, line := range lines {
			item := domain.SaleItem{
				SaleID:       sale.ID,
				ProductID:    line.ProductID,
				QuantitySold: line.Quantity,
				PriceAtSale:  line.Price,
			}
			if err := tx.Sales().CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("line for product %d: %w", line.ProductID, err)
			}
			if err := tx.Products().DecrementStock(ctx, line.ProductID, line.Quantity, h.policy.AllowNegative); err != nil {
				return fmt.Errorf("line for product %d: %w", line.ProductID, err)
			}
			items = append(items, item)
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}
	return sale, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "missing_product"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "write_rejected"
	}
}
