package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/pos/usecase/query"
)

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImagePath   *string         `json:"image_path"`
}

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.ListProducts.Handle(r.Context())
	if err != nil {
		respondError(w, r, "Failed to list products", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"products": products,
			"total":    len(products),
		},
	})
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	product, err := h.queries.GetProduct.Handle(r.Context(), query.GetProductQuery{ID: id})
	if err != nil {
		respondError(w, r, "Product not found", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    product,
	})
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.commands.CreateProduct.Handle(r.Context(), command.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		respondError(w, r, "Failed to create product", err)
		return
	}
	h.cache.Invalidate(r.Context())

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Product created successfully",
		Data:    product,
	})
}

// UpdateProduct handles PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.commands.UpdateProduct.Handle(r.Context(), command.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		respondError(w, r, "Failed to update product", err)
		return
	}
	h.cache.Invalidate(r.Context())

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product updated successfully",
		Data:    product,
	})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	if err := h.commands.DeleteProduct.Handle(r.Context(), command.DeleteProductCommand{ID: id}); err != nil {
		respondError(w, r, "Failed to delete product", err)
		return
	}
	h.cache.Invalidate(r.Context())

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product deleted successfully",
	})
}
