package query

import (
	"context"

	"github.com/tair/till-pos/internal/pos/report"
)

// CachedDashboard returns a snapshot and whether it was served from cache
type CachedDashboard interface {
	Dashboard(ctx context.Context) (report.Dashboard, bool)
}

// DashboardResult is the dashboard with its cache status
type DashboardResult struct {
	report.Dashboard
	Cached bool `json:"cached"`
}

// GetDashboardHandler handles get dashboard query
type GetDashboardHandler struct {
	source CachedDashboard
}

// NewGetDashboardHandler creates a new get dashboard handler
func NewGetDashboardHandler(source CachedDashboard) *GetDashboardHandler {
	return &GetDashboardHandler{source: source}
}

// Handle executes the get dashboard query
func (h *GetDashboardHandler) Handle(ctx context.Context) DashboardResult {
	d, cached := h.source.Dashboard(ctx)
	return DashboardResult{Dashboard: d, Cached: cached}
}
