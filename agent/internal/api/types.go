package api

import "github.com/obsidianstack/statuspanels/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is the worst level across every health panel update:
	// healthy | warning | error, or unknown when there are none.
	State        string `json:"state"`
	PanelCount   int    `json:"panel_count"`
	HealthyCount int    `json:"healthy_count"`
	WarningCount int    `json:"warning_count"`
	ErrorCount   int    `json:"error_count"`

	// FailingPanels counts panels whose last refresh failed.
	FailingPanels int  `json:"failing_panels"`
	AlertCount    int  `json:"alert_count"`
	Fullscreen    bool `json:"fullscreen"`
}

// ViewportRequest is the body of PUT /api/v1/viewport. Omitted fields are
// left unchanged.
type ViewportRequest struct {
	Width      *float64 `json:"width"`
	Fullscreen *bool    `json:"fullscreen"`
}

// ViewportResponse is returned by PUT /api/v1/viewport.
type ViewportResponse struct {
	Width      float64 `json:"width"`
	Fullscreen bool    `json:"fullscreen"`
}

// SizeRequest is the body of PUT /api/v1/panels/{id}/size.
type SizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// panelErrorResponse carries the last good view next to the error.
type panelErrorResponse struct {
	Error string          `json:"error"`
	Panel types.PanelView `json:"panel"`
}

type errorResponse struct {
	Error string `json:"error"`
}
