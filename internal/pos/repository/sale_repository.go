package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/till-pos/internal/pos/domain"
)

// GormSaleRepository implements domain.SaleRepository
type GormSaleRepository struct {
	conn conn
}

// Create inserts the sale header only; items are written with CreateItem
func (r *GormSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	ctx, span := startSpan(ctx, "repository.Sale.Create",
		attribute.String("sale.total_amount", sale.TotalAmount.StringFixed(2)),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	// stored in UTC so range filters compare consistently on every dialect
	sale.SaleDate = sale.SaleDate.UTC()
	if err := db.Omit(clause.Associations).Create(sale).Error; err != nil {
		return spanError(span, writeError("create sale", err))
	}

	span.SetAttributes(attribute.Int("sale.id", int(sale.ID)))
	return nil
}

// CreateItem inserts one sale line
func (r *GormSaleRepository) CreateItem(ctx context.Context, item *domain.SaleItem) error {
	ctx, span := startSpan(ctx, "repository.Sale.CreateItem",
		attribute.Int("sale.id", int(item.SaleID)),
		attribute.Int("product.id", int(item.ProductID)),
		attribute.Int("item.quantity", item.QuantitySold),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}
	if err := db.Omit(clause.Associations).Create(item).Error; err != nil {
		return spanError(span, writeError("create sale item", err))
	}
	return nil
}

// FindByID retrieves a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uint) (domain.Sale, bool, error) {
	ctx, span := startSpan(ctx, "repository.Sale.FindByID", attribute.Int("sale.id", int(id)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return domain.Sale{}, false, spanError(span, err)
	}

	var sale domain.Sale
	err = db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id")
	}).First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Sale{}, false, nil
		}
		return domain.Sale{}, false, spanError(span, readError("find sale", err))
	}
	return sale, true, nil
}

// FindAll lists sale headers, newest first
func (r *GormSaleRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Sale, error) {
	ctx, span := startSpan(ctx, "repository.Sale.FindAll",
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	query := db.Order("sale_date DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sales []domain.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, spanError(span, readError("list sales", err))
	}

	span.SetAttributes(attribute.Int("result.count", len(sales)))
	return sales, nil
}

// Count returns the number of sales
func (r *GormSaleRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Sale.Count")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return 0, spanError(span, err)
	}

	var count int64
	if err := db.Model(&domain.Sale{}).Count(&count).Error; err != nil {
		return 0, spanError(span, readError("count sales", err))
	}
	return count, nil
}
