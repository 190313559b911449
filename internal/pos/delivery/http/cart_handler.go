package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tair/till-pos/internal/pos/cart"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/internal/pos/usecase/command"
	"github.com/tair/till-pos/internal/pos/usecase/query"
)

// CartView is the JSON shape of a session cart
type CartView struct {
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func viewOf(c *cart.Cart) CartView {
	return CartView{Lines: c.Lines(), Total: c.Total()}
}

// GetCart handles GET /api/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var view CartView
	_ = h.sessions.Do(principal.SessionID, func(c *cart.Cart) error {
		view = viewOf(c)
		return nil
	})

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// AddCartItem handles POST /api/cart/items
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.queries.GetProduct.Handle(r.Context(), query.GetProductQuery{ID: req.ProductID})
	if err != nil {
		respondError(w, r, "Failed to add product to cart", err)
		return
	}

	var view CartView
	_ = h.sessions.Do(principal.SessionID, func(c *cart.Cart) error {
		c.AddProduct(*product)
		view = viewOf(c)
		return nil
	})

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Product added to cart",
		Data:    view,
	})
}

// CancelCart handles DELETE /api/cart
func (h *Handler) CancelCart(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	_ = h.sessions.Do(principal.SessionID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cart cleared",
	})
}

// Checkout handles POST /api/cart/checkout. The cart is cleared only when
// the sale commits, so a failed checkout can be retried as is.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var sale *domain.Sale
	err := h.sessions.Do(principal.SessionID, func(c *cart.Cart) error {
		var err error
		sale, err = h.commands.CommitSale.Handle(r.Context(), command.CommitSaleCommand{
			Cart:   c,
			UserID: principal.UserID,
		})
		if err != nil {
			return err
		}
		c.Clear()
		return nil
	})
	if err != nil {
		respondError(w, r, "Checkout failed", err)
		return
	}
	h.cache.Invalidate(r.Context())

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale completed",
		Data:    sale,
	})
}
