package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendpulse/internal/config"
	"trendpulse/internal/dataset"
	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/infrastructure"
	"trendpulse/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeFixtures(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, dataset.FileComparison,
		"keyword,period,ratio\n트렌치코트,2025-02-03,80\n봄자켓,2025-02-03,20\n")
	writeFile(t, dir, dataset.FileListings,
		"title,lprice\n트렌치 A,30000\n트렌치 B,70000\n트렌치 C,120000\n")
	writeFile(t, dir, dataset.FileExpansion,
		"keyword,period,ratio\n트렌치코트,2025-02-03,60\n버버리코트,2025-02-03,40\n")
	writeFile(t, dir, dataset.FileCoreTrend,
		"keyword,period,ratio\n트렌치코트,2025-01-27,10\n트렌치코트,2025-02-10,40\n코트,2025-02-10,20\n")
	writeFile(t, dir, dataset.FileSegments,
		"segment,period,ratio\n여성,2025-02-03,30\n")
}

// newTestRouter wires the handlers exactly as the application router does.
func newTestRouter(t *testing.T) (chi.Router, string) {
	t.Helper()
	dir := t.TempDir()
	writeFixtures(t, dir)

	logger := testLogger()
	cfg := config.Default()
	cfg.Data.Dir = dir

	store := dataset.NewStore(dataset.NewLoader(dir, logger), logger)
	service := services.NewDashboardService(store, cfg, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	metrics := infrastructure.NewMetrics()

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		api.Mount("/dashboard", NewDashboardHandler(service, logger, errorHandler, cfg.Analytics.MaxKeywords).Routes())
		api.Mount("/data", NewDataHandler(service, logger, errorHandler, metrics).Routes())
		api.Mount("/", NewHealthHandler(store, "test").Routes())
	})
	return r, dir
}

func doJSON(t *testing.T, router chi.Router, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Header().Get("Content-Type") != "text/markdown; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestMarketEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/market")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, body["above_market"])
	assert.InDelta(t, 80, body["category_mean"].(float64), 1e-9)
	assert.InDelta(t, 50, body["market_mean"].(float64), 1e-9)
}

func TestMarketEndpointDatasetUnavailable(t *testing.T) {
	router, dir := newTestRouter(t)
	require.NoError(t, os.Remove(filepath.Join(dir, dataset.FileListings)))

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/market")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.TypeDatasetUnavailable, body["type"])
	assert.Contains(t, body, "trace_id")
}

func TestKeywordsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/keywords")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total_keywords"])
}

func TestPriceEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/price")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["cumulative"])

	stats := body["stats"].(map[string]interface{})
	assert.InDelta(t, 70000, stats["median"].(float64), 1e-9)

	w, body = doJSON(t, router, http.MethodGet, "/api/dashboard/price?cumulative=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["cumulative"])

	w, _ = doJSON(t, router, http.MethodGet, "/api/dashboard/price?cumulative=sometimes")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/trend")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["available_keywords"], 2)
	assert.Nil(t, body["selection_required"])

	// explicit empty selection
	w, body = doJSON(t, router, http.MethodGet, "/api/dashboard/trend?keywords=")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["selection_required"])

	// invalid dates rejected
	w, _ = doJSON(t, router, http.MethodGet, "/api/dashboard/trend?from=notadate")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// inverted range rejected
	w, _ = doJSON(t, router, http.MethodGet, "/api/dashboard/trend?from=2025-02-10&to=2025-02-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendEndpointWindow(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet,
		"/api/dashboard/trend?from=2025-02-01&to=2025-02-28&keywords=%EC%BD%94%ED%8A%B8")
	require.Equal(t, http.StatusOK, w.Code)

	selected := body["selected_keywords"].([]interface{})
	require.Len(t, selected, 1)
	assert.Equal(t, "코트", selected[0])

	series := body["series"].([]interface{})
	require.Len(t, series, 1)
}

func TestStrategyEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/strategy")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["report_available"])
	assert.Len(t, body["spec_suggestions"], 3)
	assert.Len(t, body["color_priority"], 4)
}

func TestReportEndpoint(t *testing.T) {
	router, dir := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/report")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierrors.TypeReportNotFound, body["type"])

	writeFile(t, dir, "TRENCH_ANALYSIS_REPORT.md", "# 리포트\n")
	w, _ = doJSON(t, router, http.MethodGet, "/api/dashboard/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "TRENCH_ANALYSIS_REPORT.md")
	assert.Contains(t, w.Body.String(), "리포트")
}

func TestReloadEndpoint(t *testing.T) {
	router, dir := newTestRouter(t)

	// warm the cache, then change the data on disk
	w, _ := doJSON(t, router, http.MethodGet, "/api/dashboard/trend")
	require.Equal(t, http.StatusOK, w.Code)
	writeFile(t, dir, dataset.FileCoreTrend, "keyword,period,ratio\n신상,2025-02-03,99\n")

	w, body := doJSON(t, router, http.MethodPost, "/api/data/reload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["trend_rows"])

	w, body = doJSON(t, router, http.MethodGet, "/api/dashboard/trend")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"신상"}, body["available_keywords"])
}

func TestReloadEndpointFailure(t *testing.T) {
	router, dir := newTestRouter(t)
	require.NoError(t, os.Remove(filepath.Join(dir, dataset.FileSegments)))

	w, body := doJSON(t, router, http.MethodPost, "/api/data/reload")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, apierrors.TypeDatasetUnavailable, body["type"])
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["dataset_loaded"])

	doJSON(t, router, http.MethodGet, "/api/dashboard/market")

	_, body = doJSON(t, router, http.MethodGet, "/api/health")
	assert.Equal(t, true, body["dataset_loaded"])
}

func TestVersionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "test", body["version"])
}
