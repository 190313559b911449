package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry together with its on-hand stock
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null;default:0"`
	ImagePath   *string         `json:"image_path,omitempty" gorm:"column:image_path"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "Products"
}

// StockValue is the catalog value of the units on hand
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (Product, bool, error)
	FindAll(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)

	// DecrementStock lowers quantity by qty. Unless allowNegative is set the
	// decrement is refused with ErrInsufficientStock when fewer than qty
	// units are on hand. A missing product yields ErrNotFound.
	DecrementStock(ctx context.Context, id uint, qty int, allowNegative bool) error
}
