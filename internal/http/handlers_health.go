package httpapi

import "net/http"

// HandleHealth returns API health status and the configured catalog source
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		CatalogSource: h.sourceName,
	}

	h.logger.Debug().Str("catalog_source", h.sourceName).Msg("health check")

	writeJSON(w, http.StatusOK, resp)
}
