package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the header of one completed checkout. It is never updated.
type Sale struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	SaleDate    time.Time       `json:"sale_date" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	UserID      *uint           `json:"user_id,omitempty" gorm:"index"`
	User        *User           `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Items       []SaleItem      `json:"items,omitempty" gorm:"foreignKey:SaleID"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "Sales"
}

// ItemsTotal sums quantity × price over the loaded items
func (s Sale) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// SaleItem is one product line of a sale with the price actually charged
type SaleItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	SaleID       uint            `json:"sale_id" gorm:"not null;index"`
	Sale         *Sale           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ProductID    uint            `json:"product_id" gorm:"not null;index"`
	Product      *Product        `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	QuantitySold int             `json:"quantity_sold" gorm:"not null"`
	PriceAtSale  decimal.Decimal `json:"price_at_sale" gorm:"type:decimal(12,2);not null"`
}

// TableName specifies the table name
func (SaleItem) TableName() string {
	return "SaleItems"
}

// Subtotal is quantity × frozen price
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.QuantitySold)))
}

// SaleRepository defines the contract for sale data access
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	CreateItem(ctx context.Context, item *SaleItem) error
	FindByID(ctx context.Context, id uint) (Sale, bool, error)
	FindAll(ctx context.Context, limit, offset int) ([]Sale, error)
	Count(ctx context.Context) (int64, error)
}
