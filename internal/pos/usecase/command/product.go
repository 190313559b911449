package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tair/till-pos/internal/pos/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImagePath   *string
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	repo domain.ProductRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if err := validateProduct(cmd.Name, cmd.Price, cmd.Quantity); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Price:       cmd.Price.Round(2),
		Quantity:    cmd.Quantity,
		ImagePath:   normalizeImagePath(cmd.ImagePath),
	}
	if err := h.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProductCommand replaces every editable field of a product
type UpdateProductCommand struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImagePath   *string
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	repo domain.ProductRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.ID == 0 {
		return nil, domain.Invalid("invalid product id")
	}
	if err := validateProduct(cmd.Name, cmd.Price, cmd.Quantity); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          cmd.ID,
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Price:       cmd.Price.Round(2),
		Quantity:    cmd.Quantity,
		ImagePath:   normalizeImagePath(cmd.ImagePath),
	}
	if err := h.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ID uint
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	repo domain.ProductRepository
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo}
}

// Handle executes the delete product command. Products referenced by sale
// history are refused by the store.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	if cmd.ID == 0 {
		return domain.Invalid("invalid product id")
	}
	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", cmd.ID, err)
	}
	return nil
}

func validateProduct(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("product name is required")
	}
	if price.IsNegative() {
		return domain.Invalid("price cannot be negative")
	}
	if quantity < 0 {
		return domain.Invalid("quantity cannot be negative")
	}
	return nil
}

// an empty image reference means no image
func normalizeImagePath(path *string) *string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return nil
	}
	p := strings.TrimSpace(*path)
	return &p
}
