package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos/domain"
)

// GormProductRepository implements domain.ProductRepository
type GormProductRepository struct {
	conn conn
}

var productColumns = []string{"name", "description", "price", "quantity", "image_path"}

// Create inserts a new product
func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := startSpan(ctx, "repository.Product.Create",
		attribute.String("product.name", product.Name),
		attribute.Int("product.quantity", product.Quantity),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}
	if err := db.Create(product).Error; err != nil {
		return spanError(span, writeError("create product", err))
	}

	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}

// FindByID retrieves a product by id
func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, bool, error) {
	ctx, span := startSpan(ctx, "repository.Product.FindByID", attribute.Int("product.id", int(id)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return domain.Product{}, false, spanError(span, err)
	}

	var product domain.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, spanError(span, readError("find product", err))
	}
	return product, true, nil
}

// FindAll lists the whole catalog ordered by id
func (r *GormProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	ctx, span := startSpan(ctx, "repository.Product.FindAll")
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return nil, spanError(span, err)
	}

	var products []domain.Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return nil, spanError(span, readError("list products", err))
	}

	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

// Update overwrites every editable column of an existing product
func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := startSpan(ctx, "repository.Product.Update", attribute.Int("product.id", int(product.ID)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	result := db.Model(product).Select(productColumns).Updates(product)
	if result.Error != nil {
		return spanError(span, writeError("update product", result.Error))
	}
	if result.RowsAffected == 0 {
		return notFound("product", product.ID)
	}
	return nil
}

// Delete removes a product. Products referenced by sale history are kept
// by the foreign key and the delete is rejected.
func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := startSpan(ctx, "repository.Product.Delete", attribute.Int("product.id", int(id)))
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	result := db.Delete(&domain.Product{}, id)
	if result.Error != nil {
		return spanError(span, writeError("delete product", result.Error))
	}
	if result.RowsAffected == 0 {
		return notFound("product", id)
	}
	return nil
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, span := startSpan(ctx, "repository.Product.Count")
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

// DecrementStock lowers the on-hand quantity in a single UPDATE
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uint, qty int, allowNegative bool) error {
	ctx, span := startSpan(ctx, "repository.Product.DecrementStock",
		attribute.Int("product.id", int(id)),
		attribute.Int("stock.delta", -qty),
		attribute.Bool("stock.allow_negative", allowNegative),
	)
	defer span.End()

	db, err := r.conn.session(ctx)
	if err != nil {
		return spanError(span, err)
	}

	query := db.Model(&domain.Product{}).Where("id = ?", id)
	if !allowNegative {
		query = query.Where("quantity >= ?", qty)
	}
	result := query.UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return spanError(span, writeError("decrement stock", result.Error))
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var exists int64
	if err := db.Model(&domain.Product{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return spanError(span, readError("check product", err))
	}
	if exists == 0 {
		return notFound("product", id)
	}
	return spanError(span, fmt.Errorf("product %d needs %d: %w", id, qty, domain.ErrInsufficientStock))
}
