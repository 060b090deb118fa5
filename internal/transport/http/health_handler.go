package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trendpulse/internal/dataset"
)

// HealthHandler serves liveness, readiness and version information.
type HealthHandler struct {
	store     *dataset.Store
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(store *dataset.Store, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		version:   version,
		startedAt: time.Now(),
	}
}

// Routes returns the health sub-router.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/version", h.Version)
	return r
}

// Health handles GET /api/health. The process is healthy even before the
// first load; dataset_loaded tells operators whether views can render.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": h.store.Loaded(),
		"uptime":         time.Since(h.startedAt).String(),
	})
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"version": h.version,
	})
}
