package http

import (
	"net/http"
	"strconv"

	"github.com/tair/till-pos/internal/pos/usecase/query"
)

// ListSales handles GET /api/sales
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := h.queries.ListSales.Handle(r.Context(), query.ListSalesQuery{Limit: limit, Offset: offset})
	if err != nil {
		respondError(w, r, "Failed to list sales", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// GetSaleDetails handles GET /api/sales/{id}/items
func (h *Handler) GetSaleDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	details, err := h.queries.GetSaleDetails.Handle(r.Context(), query.GetSaleDetailsQuery{SaleID: id})
	if err != nil {
		respondError(w, r, "Failed to load sale", err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    details,
	})
}

// GetDashboard handles GET /api/reports/dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    h.queries.GetDashboard.Handle(r.Context()),
	})
}
