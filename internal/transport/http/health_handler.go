package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports service liveness and cache freshness.
type HealthHandler struct {
	service AnalyticsServiceInterface
	version string
	started time.Time
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service AnalyticsServiceInterface, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		started: time.Now(),
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	cache := map[string]interface{}{
		"populated": false,
	}
	if flights, source, ok := h.service.Cache().Get(); ok {
		cache["populated"] = true
		cache["records"] = len(flights)
		cache["source"] = source
		cache["updated_at"] = h.service.Cache().UpdatedAt().UTC().Format(time.RFC3339)
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"cache":   cache,
	})
}
