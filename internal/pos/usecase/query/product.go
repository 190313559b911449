package query

import (
	"context"
	"fmt"

	"github.com/tair/till-pos/internal/pos/domain"
)

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID uint
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, query GetProductQuery) (*domain.Product, error) {
	if query.ID == 0 {
		return nil, domain.Invalid("invalid product id")
	}

	product, found, err := h.repo.FindByID(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("product %d: %w", query.ID, domain.ErrNotFound)
	}
	return &product, nil
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle returns the whole catalog ordered by id
func (h *ListProductsHandler) Handle(ctx context.Context) ([]domain.Product, error) {
	products, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
