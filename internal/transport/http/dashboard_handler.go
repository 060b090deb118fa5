// Package http contains the chi HTTP handlers for the dashboard API.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/middleware"
	"trendpulse/internal/services"
)

// DashboardHandler serves the five dashboard views and the report download.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
	maxKeywords  int
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxKeywords int) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "dashboard")),
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		maxKeywords:  maxKeywords,
	}
}

// Routes returns the dashboard sub-router.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/market", h.MarketView)
	r.Get("/keywords", h.KeywordView)
	r.Get("/price", h.PriceView)
	r.Get("/trend", h.TrendView)
	r.Get("/strategy", h.StrategyView)
	r.Get("/report", h.Report)
	return r
}

// MarketView handles GET /api/dashboard/market
func (h *DashboardHandler) MarketView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.MarketView(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// KeywordView handles GET /api/dashboard/keywords
func (h *DashboardHandler) KeywordView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.KeywordView(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// PriceView handles GET /api/dashboard/price?cumulative=true
func (h *DashboardHandler) PriceView(w http.ResponseWriter, r *http.Request) {
	cumulative, ok := h.query.ValidateBool(w, r, "cumulative", false)
	if !ok {
		return
	}

	view, err := h.service.PriceView(r.Context(), cumulative)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// TrendView handles GET /api/dashboard/trend?from=...&to=...&keywords=a,b
func (h *DashboardHandler) TrendView(w http.ResponseWriter, r *http.Request) {
	from, to, keywords, ok := h.query.ValidateTrendQuery(w, r, h.maxKeywords)
	if !ok {
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("to", "to must not be before from"))
		return
	}

	view, err := h.service.TrendView(r.Context(), services.TrendParams{
		From:     from,
		To:       to,
		Keywords: keywords,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// StrategyView handles GET /api/dashboard/strategy
func (h *DashboardHandler) StrategyView(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.StrategyView(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// Report handles GET /api/dashboard/report, serving the markdown report as a
// download.
func (h *DashboardHandler) Report(w http.ResponseWriter, r *http.Request) {
	name, content, err := h.service.ReportFile(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(content)
}

// handleServiceError maps service sentinels to API errors before delegating
// to the central handler.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		h.errorHandler.HandleError(w, r, apierrors.DatasetUnavailableError(err))
	case errors.Is(err, services.ErrReportNotFound):
		h.errorHandler.HandleError(w, r, apierrors.ErrReportNotFound)
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
