package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dsjohal14/shopsearch/internal/libs/obs"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Deps are the collaborators a Handler serves from
type Deps struct {
	Pipeline   *search.Pipeline
	Source     catalog.Source
	SourceName string
	Matcher    *intent.Matcher
	Metrics    *obs.Metrics
	Brands     []string
}

// Handler contains HTTP handlers for the API
type Handler struct {
	pipeline   *search.Pipeline
	source     catalog.Source
	sourceName string
	matcher    *intent.Matcher
	metrics    *obs.Metrics
	parserOpts []query.Option
	logger     zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(d Deps, logger zerolog.Logger) *Handler {
	matcher := d.Matcher
	if matcher == nil {
		matcher = intent.NewMatcher()
	}
	pipeline := d.Pipeline
	if pipeline == nil {
		pipeline = search.New(d.Source, search.WithLogger(logger), search.WithMetrics(d.Metrics), search.WithBrands(d.Brands))
	}
	return &Handler{
		pipeline:   pipeline,
		source:     d.Source,
		sourceName: d.SourceName,
		matcher:    matcher,
		metrics:    d.Metrics,
		parserOpts: []query.Option{query.WithBrands(d.Brands)},
		logger:     logger,
	}
}

// NewRouter wires the handlers with the standard middleware stack.
// A nil gatherer leaves /metrics unmounted.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, timeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	// Routes
	r.Get("/health", h.HandleHealth)
	r.Post("/search", h.HandleSearch)
	r.Post("/parse", h.HandleParse)
	r.Post("/ui/fallback", h.HandleUIFallback)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// Helper functions used across all handlers

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeErrorDetails(w, status, message, code, "")
}

func writeErrorDetails(w http.ResponseWriter, status int, message, code, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
