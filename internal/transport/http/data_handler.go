package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/infrastructure"
	"trendpulse/internal/services"
)

// DataHandler exposes dataset cache management.
type DataHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.Metrics
}

// NewDataHandler creates a data handler.
func NewDataHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.Metrics) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "data")),
		errorHandler: errorHandler,
		metrics:      metrics,
	}
}

// Routes returns the data sub-router.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/reload", h.Reload)
	return r
}

// Reload handles POST /api/data/reload: drop the cached extracts and load
// them again from disk.
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.ReloadData(r.Context())
	if err != nil {
		h.metrics.DatasetReloads.WithLabelValues("failure").Inc()
		if errors.Is(err, services.ErrDatasetUnavailable) {
			h.errorHandler.HandleError(w, r, apierrors.DatasetUnavailableError(err))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.metrics.DatasetReloads.WithLabelValues("success").Inc()
	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.Time("loaded_at", status.LoadedAt),
		slog.Int("trend_rows", status.TrendRows))
	render.JSON(w, r, status)
}
