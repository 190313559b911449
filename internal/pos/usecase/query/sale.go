package query

import (
	"context"
	"fmt"

	"github.com/tair/till-pos/internal/pos/domain"
)

// Paging limits for ListSalesQuery
const (
	DefaultSalesLimit = 50
	MaxSalesLimit     = 500
)

// ListSalesQuery pages through sales, newest first
type ListSalesQuery struct {
	Limit  int
	Offset int
}

// SalePage is one page of sale headers
type SalePage struct {
	Sales  []domain.Sale `json:"sales"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListSalesHandler handles list sales query
type ListSalesHandler struct {
	repo domain.SaleRepository
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(repo domain.SaleRepository) *ListSalesHandler {
	return &ListSalesHandler{repo: repo}
}

// Handle executes the list sales query
func (h *ListSalesHandler) Handle(ctx context.Context, query ListSalesQuery) (*SalePage, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultSalesLimit
	}
	if query.Limit > MaxSalesLimit {
		query.Limit = MaxSalesLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	sales, err := h.repo.FindAll(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	total, err := h.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []domain.Sale{}
	}

	return &SalePage{Sales: sales, Total: total, Limit: query.Limit, Offset: query.Offset}, nil
}

// SaleDetailSource lists the lines of one sale
type SaleDetailSource interface {
	SaleDetails(ctx context.Context, saleID uint) []domain.SaleDetail
}

// GetSaleDetailsQuery asks for the lines of one sale
type GetSaleDetailsQuery struct {
	SaleID uint
}

// SaleDetails is a sale header with its lines
type SaleDetails struct {
	Sale  domain.Sale         `json:"sale"`
	Lines []domain.SaleDetail `json:"lines"`
}

// GetSaleDetailsHandler handles get sale details query
type GetSaleDetailsHandler struct {
	sales   domain.SaleRepository
	details SaleDetailSource
}

// NewGetSaleDetailsHandler creates a new get sale details handler
func NewGetSaleDetailsHandler(sales domain.SaleRepository, details SaleDetailSource) *GetSaleDetailsHandler {
	return &GetSaleDetailsHandler{sales: sales, details: details}
}

// Handle executes the get sale details query
func (h *GetSaleDetailsHandler) Handle(ctx context.Context, query GetSaleDetailsQuery) (*SaleDetails, error) {
	if query.SaleID == 0 {
		return nil, domain.Invalid("invalid sale id")
	}

	sale, found, err := h.sales.FindByID(ctx, query.SaleID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sale %d: %w", query.SaleID, domain.ErrNotFound)
	}
	sale.Items = nil

	return &SaleDetails{Sale: sale, Lines: h.details.SaleDetails(ctx, query.SaleID)}, nil
}
