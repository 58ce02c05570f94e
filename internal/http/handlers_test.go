package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsjohal14/shopsearch/internal/libs/obs"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

func testCatalog() *catalog.MemorySource {
	src := catalog.NewMemorySource([]catalog.Item{
		{ID: 1, Title: "Red Winter Jacket", Description: "Warm padded jacket for cold days", Category: "men's clothing", Price: 35, Rating: catalog.Rating{Rate: 4.2, Count: 120}},
		{ID: 2, Title: "Red Summer Jacket", Description: "Light jacket", Category: "women's clothing", Price: 55, Rating: catalog.Rating{Rate: 3.9, Count: 80}},
		{ID: 3, Title: "SanDisk SSD PLUS 1TB", Description: "Internal solid state drive", Category: "electronics", Price: 109, Rating: catalog.Rating{Rate: 2.9, Count: 470}},
		{ID: 4, Title: "Gold Plated Ring", Description: "Classic band", Category: "jewelery", Price: 10.99, Rating: catalog.Rating{Rate: 4.6, Count: 400}},
	})
	src.SetCategories([]string{"electronics", "jewelery", "men's clothing", "women's clothing"})
	return src
}

type panickingSource struct{}

func (panickingSource) FetchAllItems(context.Context) ([]catalog.Item, error) {
	panic("catalog exploded")
}

func (panickingSource) FetchCategories(context.Context) ([]string, error) {
	return nil, nil
}

func setupTestRouter(t *testing.T, src catalog.Source) (*chi.Mux, *prometheus.Registry) {
	t.Helper()

	reg := prometheus.NewRegistry()
	handler := NewHandler(Deps{
		Source:     src,
		SourceName: "memory",
		Metrics:    obs.NewMetrics(reg),
		Brands:     []string{"SanDisk"},
	}, zerolog.Nop())

	return NewRouter(handler, reg, 5*time.Second), reg
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type searchBody struct {
	search.Result
	UIFallback intent.FallbackResult `json:"uiFallback"`
	Code       string                `json:"code"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v), w.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	w := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "memory", resp.CatalogSource)
}

func TestHandleSearch(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	w := do(t, router, http.MethodPost, "/search", `{"query":"red jacket under £40"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decode[searchBody](t, w)
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Data[0].ID)
	require.NotNil(t, resp.Filters.Constraints.PriceMax)
	assert.Equal(t, 40.0, *resp.Filters.Constraints.PriceMax)
	assert.False(t, resp.Execution.FallbackUsed)
	assert.Len(t, resp.Execution.Steps, 7)
	assert.False(t, resp.UIFallback.AppliedFallback)
}

func TestHandleSearchMergesUIFallback(t *testing.T) {
	router, reg := setupTestRouter(t, testCatalog())

	w := do(t, router, http.MethodPost, "/search", `{"query":"please add to cart"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[searchBody](t, w)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data)
	assert.Equal(t, []string{intent.CartAdd}, resp.UIHandlers)
	assert.True(t, resp.UIFallback.AppliedFallback)
	require.NotEmpty(t, resp.UIFallback.FallbackMatches)
	assert.GreaterOrEqual(t, resp.UIFallback.FallbackMatches[0].Confidence, 80)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "shopsearch_ui_fallback_matches_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestHandleSearchClassifiedRequest(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	body := `{"intent":"product_search","category":"jewelery","ui_handlers":["wishlist.view"],"constraints":{"limit":5}}`
	w := do(t, router, http.MethodPost, "/search", body)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[searchBody](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 4, resp.Data[0].ID)
	assert.Equal(t, []string{"wishlist.view"}, resp.UIHandlers)
	assert.Nil(t, resp.Parsed)
}

func TestHandleSearchErrors(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid json", `{"query":`, http.StatusBadRequest, CodeInvalidJSON},
		{"missing query", `{}`, http.StatusBadRequest, CodeMissingQuery},
		{"blank query", `{"query":"   "}`, http.StatusBadRequest, CodeMissingQuery},
		{"bad sort", `{"query":"ring","sort":"sideways"}`, http.StatusBadRequest, CodeInvalidRequest},
		{"inverted price", `{"query":"ring","constraints":{"price":{"min":50,"max":10}}}`, http.StatusBadRequest, CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/search", tt.body)
			assert.Equal(t, tt.status, w.Code)
			resp := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHandleSearchPipelineFailure(t *testing.T) {
	router, _ := setupTestRouter(t, panickingSource{})

	w := do(t, router, http.MethodPost, "/search", `{"query":"jacket"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decode[searchBody](t, w)
	assert.Equal(t, CodePipelineFailed, resp.Code)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Data)
	assert.Empty(t, resp.Execution.Steps)
	assert.Contains(t, resp.Error, "catalog exploded")
}

func TestHandleParse(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	w := do(t, router, http.MethodPost, "/parse", `{"query":"SanDisk drive under 120"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[query.ParsedQuery](t, w)
	assert.Equal(t, query.IntentSearchProducts, resp.Intent)
	assert.Equal(t, []string{"electronics"}, resp.Categories)
	assert.Equal(t, []string{"SanDisk"}, resp.Attributes.Brands)

	w = do(t, router, http.MethodPost, "/parse", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUIFallback(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	w := do(t, router, http.MethodPost, "/ui/fallback", `{"query":"show my cart then checkout","ui_handlers":["cart.view"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[intent.FallbackResult](t, w)
	assert.Equal(t, []string{intent.CartView, intent.CheckoutStart}, resp.Handlers)
	assert.True(t, resp.AppliedFallback)

	w = do(t, router, http.MethodPost, "/ui/fallback", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t, testCatalog())

	_ = do(t, router, http.MethodPost, "/search", `{"query":"ring"}`)

	w := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `shopsearch_pipeline_runs_total{outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), "shopsearch_pipeline_stage_duration_seconds")
}
