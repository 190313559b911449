package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TopSeller is the product with the highest cumulative quantity sold
type TopSeller struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity_sold"`
}

// SaleDetail is one line of a sale joined with the product's current metadata.
// ProductName and ImagePath are empty when the product no longer exists.
type SaleDetail struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	PriceAtSale  decimal.Decimal `json:"price_at_sale"`
	ImagePath    string          `json:"image_path,omitempty"`
}

// ReportRepository exposes the read-only aggregate queries behind the dashboard
type ReportRepository interface {
	TotalStockValue(ctx context.Context) (decimal.Decimal, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	ProductCount(ctx context.Context) (int64, error)
	TotalItemQuantity(ctx context.Context) (int64, error)
	CountSalesBetween(ctx context.Context, from, to time.Time) (int64, error)
	SalesBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
	TopSellingProduct(ctx context.Context) (TopSeller, bool, error)
	SaleDetails(ctx context.Context, saleID uint) ([]SaleDetail, error)
}
