package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"flightpulse/internal/datasource"
	apierrors "flightpulse/internal/errors"
	"flightpulse/internal/middleware"
	"flightpulse/internal/services"
)

// AnalyzeRequest is the body of POST /analyze. All fields are optional;
// absent fields take the data source defaults.
type AnalyzeRequest struct {
	Origin      string `json:"origin" validate:"omitempty,iata"`
	Destination string `json:"destination" validate:"omitempty,iata"`
	DateFrom    string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// AnalysisHandler handles analysis-related HTTP requests with RFC 7807 compliance
type AnalysisHandler struct {
	service      AnalyticsServiceInterface
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalyticsServiceInterface, validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validation:   validation,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes with proper Chi patterns
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/analyze", h.Analyze)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/heatmaps", h.GetHeatmaps)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/insights", h.GetInsights)
	r.Post("/export", h.Export)

	return r
}

// Analyze handles POST /api/analyze: acquire, enrich, and analyze a batch
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	reqID := chimw.GetReqID(r.Context())

	var req AnalyzeRequest
	if r.ContentLength > 0 {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	fetchReq, err := req.toFetchRequest()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "starting analysis",
		slog.String("request_id", reqID),
		slog.String("origin", req.Origin),
		slog.String("destination", req.Destination),
	)

	result, err := h.service.Analyze(r.Context(), fetchReq)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analysis failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// GetHeatmaps handles GET /api/heatmaps with an optional view selector
func (h *AnalysisHandler) GetHeatmaps(w http.ResponseWriter, r *http.Request) {
	reqID := chimw.GetReqID(r.Context())

	views, err := h.service.Heatmaps(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build heatmaps",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if len(views.AvailableViews) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoDataAvailable)
		return
	}

	selected := r.URL.Query().Get("view")
	if selected == "" {
		selected = views.Default
	}

	view, ok := views.Options[selected]
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotFound,
			"VIEW_NOT_FOUND",
			fmt.Sprintf("Heatmap view '%s' not available", selected),
			map[string]interface{}{
				"view":            selected,
				"available_views": views.AvailableViews,
			},
		))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":          "success",
		"data":            view,
		"view":            selected,
		"available_views": views.AvailableViews,
	})
}

// GetInsights handles GET /api/insights, serving from the last analyzed table
func (h *AnalysisHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	reqID := chimw.GetReqID(r.Context())

	report, err := h.service.Insights(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate insights",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// Export handles POST /api/export?format=csv|xlsx|recommendations and
// streams the report
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := chimw.GetReqID(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = services.FormatXLSX
	}

	var contentType, filename string
	switch format {
	case services.FormatCSV:
		contentType = "text/csv"
		filename = exportFilename("csv")
	case services.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = exportFilename("xlsx")
	case services.FormatRecommendations:
		contentType = "text/csv"
		filename = fmt.Sprintf("recommendations_%s.csv", time.Now().UTC().Format("20060102_150405"))
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "must be one of: csv, xlsx, recommendations"))
		return
	}

	h.logger.InfoContext(r.Context(), "exporting report",
		slog.String("request_id", reqID),
		slog.String("format", format),
	)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.service.ExportReport(r.Context(), w, format); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("format", format),
		)
		// Headers may already be sent; only render a problem when the
		// body has not been started.
		if !isResponseWritten(w) {
			h.errorHandler.HandleError(w, r, err)
		}
	}
}

// toFetchRequest converts the validated request into a data source request.
func (req AnalyzeRequest) toFetchRequest() (datasource.FetchRequest, error) {
	out := datasource.FetchRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
	}

	var err error
	if req.DateFrom != "" {
		if out.DateFrom, err = time.Parse("2006-01-02", req.DateFrom); err != nil {
			return out, apierrors.ErrValidation("date_from", "must be a date in YYYY-MM-DD format")
		}
	}
	if req.DateTo != "" {
		if out.DateTo, err = time.Parse("2006-01-02", req.DateTo); err != nil {
			return out, apierrors.ErrValidation("date_to", "must be a date in YYYY-MM-DD format")
		}
	}
	if !out.DateFrom.IsZero() && !out.DateTo.IsZero() && out.DateTo.Before(out.DateFrom) {
		return out, apierrors.ErrValidation("date_to", "must not be before date_from")
	}
	return out, nil
}

func exportFilename(ext string) string {
	return fmt.Sprintf("flight_analysis_%s.%s", time.Now().UTC().Format("20060102_150405"), ext)
}

// isResponseWritten checks if response has already been written
func isResponseWritten(w http.ResponseWriter) bool {
	if ww, ok := w.(interface{ Status() int }); ok {
		return ww.Status() != 0
	}
	return false
}
