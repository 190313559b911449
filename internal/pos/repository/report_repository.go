package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm/clause"

	"github.com/tair/till-pos/internal/pos/domain"
)

// GormReportRepository runs the aggregate queries used by the dashboard
type GormReportRepository struct {
	conn conn
}

// TotalStockValue sums price × quantity over the catalog
func (r *GormReportRepository) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := startSpan(ctx, "repository.Report.TotalStockValue")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return decimal.Zero, spanError(span, err)
	}

	var value decimal.Decimal
	row := db.Model(&domain.Product{}).Select("COALESCE(SUM(price * quantity), 0)").Row()
	if err := row.Scan(&value); err != nil {
		return decimal.Zero, spanError(span, readError("sum stock value", err))
	}
	return value.Round(2), nil
}

// TotalRevenue sums the totals of all sales
func (r *GormReportRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := startSpan(ctx, "repository.Report.TotalRevenue")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return decimal.Zero, spanError(span, err)
	}

	var revenue decimal.Decimal
	row := db.Model(&domain.Sale{}).Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&revenue); err != nil {
		return decimal.Zero, spanError(span, readError("sum revenue", err))
	}
	return revenue.Round(2), nil
}

// ProductCount counts catalog rows
func (r *GormReportRepository) ProductCount(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Report.ProductCount")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return 0, spanError(span, err)
	}

	var count int64
	if err := db.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, spanError(span, readError("count products", err))
	}
	return count, nil
}

// TotalItemQuantity sums the on-hand quantity of every product
func (r *GormReportRepository) TotalItemQuantity(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Report.TotalItemQuantity")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return 0, spanError(span, err)
	}

	var total int64
	row := db.Model(&domain.Product{}).Select("COALESCE(SUM(quantity), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return 0, spanError(span, readError("sum quantity", err))
	}
	return total, nil
}

// CountSalesBetween counts sales with from <= sale_date < to
func (r *GormReportRepository) CountSalesBetween(ctx context.Context, from, to time.Time) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Report.CountSalesBetween",
		attribute.String("range.from", from.Format(time.RFC3339)),
		attribute.String("range.to", to.Format(time.RFC3339)),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return 0, spanError(span, err)
	}

	var count int64
	err = db.Model(&domain.Sale{}).
		Where("sale_date >= ? AND sale_date < ?", from.UTC(), to.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, spanError(span, readError("count sales", err))
	}
	return count, nil
}

// SalesBetween returns sale headers with from <= sale_date < to, oldest first
func (r *GormReportRepository) SalesBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	ctx, span := startSpan(ctx, "repository.Report.SalesBetween",
		attribute.String("range.from", from.Format(time.RFC3339)),
		attribute.String("range.to", to.Format(time.RFC3339)),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	var sales []domain.Sale
	err = db.Where("sale_date >= ? AND sale_date < ?", from.UTC(), to.UTC()).
		Order("sale_date").
		Find(&sales).Error
	if err != nil {
		return nil, spanError(span, readError("list sales in range", err))
	}
	return sales, nil
}

// TopSellingProduct returns the product with the largest total quantity
// sold. Ties go to the lowest product id.
func (r *GormReportRepository) TopSellingProduct(ctx context.Context) (domain.TopSeller, bool, error) {
	ctx, span := startSpan(ctx, "repository.Report.TopSellingProduct")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return domain.TopSeller{}, false, spanError(span, err)
	}

	var rows []domain.TopSeller
	err = db.Table("? AS si", clause.Table{Name: domain.SaleItem{}.TableName()}).
		Select("si.product_id AS product_id, COALESCE(p.name, '') AS name, SUM(si.quantity_sold) AS quantity_sold").
		Joins("LEFT JOIN ? p ON p.id = si.product_id", clause.Table{Name: domain.Product{}.TableName()}).
		Group("si.product_id, p.name").
		Order("quantity_sold DESC, si.product_id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return domain.TopSeller{}, false, spanError(span, readError("find top seller", err))
	}
	if len(rows) == 0 {
		return domain.TopSeller{}, false, nil
	}
	return rows[0], true, nil
}

// SaleDetails lists the lines of one sale joined with current product data
func (r *GormReportRepository) SaleDetails(ctx context.Context, saleID uint) ([]domain.SaleDetail, error) {
	ctx, span := startSpan(ctx, "repository.Report.SaleDetails", attribute.Int("sale.id", int(saleID)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	var details []domain.SaleDetail
	err = db.Table("? AS si", clause.Table{Name: domain.SaleItem{}.TableName()}).
		Select("si.product_id AS product_id, COALESCE(p.name, '') AS product_name, " +
			"si.quantity_sold AS quantity_sold, si.price_at_sale AS price_at_sale, " +
			"COALESCE(p.image_path, '') AS image_path").
		Joins("LEFT JOIN ? p ON p.id = si.product_id", clause.Table{Name: domain.Product{}.TableName()}).
		Where("si.sale_id = ?", saleID).
		Order("si.id").
		Scan(&details).Error
	if err != nil {
		return nil, spanError(span, readError("list sale details", err))
	}

	span.SetAttributes(attribute.Int("result.count", len(details)))
	return details, nil
}
