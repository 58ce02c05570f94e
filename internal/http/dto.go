// Package httpapi provides HTTP handlers and data transfer objects for the shopsearch API.
package httpapi

import (
	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	CatalogSource string `json:"catalog_source"`
}

// SearchResponse is the pipeline result plus the UI fallback merge
type SearchResponse struct {
	*search.Result
	UIFallback *intent.FallbackResult `json:"uiFallback,omitempty"`
	Code       string                 `json:"code,omitempty"`
}

// ParseRequest asks for a structured parse of free text
type ParseRequest struct {
	Query string `json:"query"`
}

// UIFallbackRequest runs the UI intent matcher on its own
type UIFallbackRequest struct {
	Query      string   `json:"query"`
	UIHandlers []string `json:"ui_handlers,omitempty"`
	HasItems   bool     `json:"has_items"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error codes
const (
	CodeInvalidJSON    = "INVALID_JSON"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeMissingQuery   = "MISSING_QUERY"
	CodePipelineFailed = "PIPELINE_FAILED"
)
