package api

import "github.com/zendhq/zend-site/internal/viewmodel"

// ============================================================================
// Common Types
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string `json:"status" example:"ok" description:"Health status"`
	Version      string `json:"version" example:"dev" description:"Application version"`
	LiveSessions int    `json:"live_sessions" example:"3" description:"Open live stats sessions"`
}

// ============================================================================
// Stats Types
// ============================================================================

// StatsResponse is one presented page of the stats dashboard.
type StatsResponse = viewmodel.PageView

// PaginationResponse is the page-number control for a page window.
type PaginationResponse struct {
	Current int                  `json:"current" example:"4" description:"Current page"`
	Total   int                  `json:"total" example:"12" description:"Total pages"`
	Items   []viewmodel.PageItem `json:"items" description:"Page buttons and ellipses, in display order"`
}
