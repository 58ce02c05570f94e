package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

// HandleSearch runs the search pipeline, then merges UI handlers recovered from the raw query
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req search.Request
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid search request")
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}

	// Validate query
	if strings.TrimSpace(req.Query) == "" && !req.IsClassified() {
		writeError(w, http.StatusBadRequest, "query or classified filters are required", CodeMissingQuery)
		return
	}

	res, err := h.pipeline.Execute(r.Context(), req)
	switch {
	case errors.Is(err, search.ErrInvalidRequest):
		h.logger.Warn().Err(err).Msg("search request failed validation")
		writeErrorDetails(w, http.StatusBadRequest, "invalid search request", CodeInvalidRequest, err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Strs("completed", res.Execution.Steps).Msg("search pipeline failed")
		writeJSON(w, http.StatusInternalServerError, SearchResponse{Result: res, Code: CodePipelineFailed})
		return
	}

	fb := h.matcher.Apply(res.UIHandlers, req.Query, res.HasItems())
	h.recordFallback(res.UIHandlers, fb.Handlers)
	res.UIHandlers = fb.Handlers

	h.logger.Info().
		Str("query", req.Query).
		Str("execution_id", res.Execution.ID).
		Int("total_found", res.TotalFound).
		Int("returned", len(res.Data)).
		Bool("fallback", res.Execution.FallbackUsed).
		Bool("ui_fallback", fb.AppliedFallback).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{Result: res, UIFallback: &fb})
}

// HandleParse returns the structured parse of a query against the current categories
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid parse request")
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required", CodeMissingQuery)
		return
	}

	var categories []string
	if h.source != nil {
		cats, err := h.source.FetchCategories(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to fetch categories, parsing without them")
		}
		categories = cats
	} else {
		h.logger.Warn().Err(catalog.ErrNoSource).Msg("parsing without categories")
	}

	parsed := query.NewParser(categories, h.parserOpts...).Parse(req.Query)
	h.logger.Info().
		Str("query", req.Query).
		Str("intent", string(parsed.Intent)).
		Float64("confidence", parsed.Confidence).
		Msg("query parsed")

	writeJSON(w, http.StatusOK, parsed)
}

// HandleUIFallback runs the UI intent matcher on its own
func (h *Handler) HandleUIFallback(w http.ResponseWriter, r *http.Request) {
	var req UIFallbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid ui fallback request")
		writeError(w, http.StatusBadRequest, "invalid JSON", CodeInvalidJSON)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required", CodeMissingQuery)
		return
	}

	fb := h.matcher.Apply(req.UIHandlers, req.Query, req.HasItems)
	h.recordFallback(req.UIHandlers, fb.Handlers)

	writeJSON(w, http.StatusOK, fb)
}

func (h *Handler) recordFallback(original, merged []string) {
	had := make(map[string]bool, len(original))
	for _, o := range original {
		had[strings.TrimSpace(o)] = true
	}
	for _, m := range merged {
		if !had[m] {
			h.metrics.ObserveUIFallback(m)
		}
	}
}
