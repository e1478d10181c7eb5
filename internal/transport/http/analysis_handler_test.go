package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/datasource"
	apierrors "flightpulse/internal/errors"
	"flightpulse/internal/insights"
	"flightpulse/internal/middleware"
	"flightpulse/internal/narrative"
	"flightpulse/internal/services"
	"flightpulse/pkg/contracts/domain"
)

type stubService struct {
	cache      *services.TableCache
	result     *services.AnalysisResult
	views      aggregate.ViewSet
	report     *insights.Report
	analyzeErr error
	lastFetch  datasource.FetchRequest
}

func (s *stubService) Analyze(_ context.Context, req datasource.FetchRequest) (*services.AnalysisResult, error) {
	s.lastFetch = req
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return s.result, nil
}

func (s *stubService) Heatmaps(_ context.Context) (aggregate.ViewSet, error) {
	return s.views, nil
}

func (s *stubService) Insights(_ context.Context) (*insights.Report, error) {
	return s.report, nil
}

func (s *stubService) ExportReport(_ context.Context, w io.Writer, format string) error {
	switch format {
	case services.FormatCSV, services.FormatXLSX, services.FormatRecommendations:
	default:
		return apierrors.ErrValidation("format", "must be one of: csv, xlsx, recommendations")
	}
	_, err := w.Write([]byte("export-payload"))
	return err
}

func (s *stubService) Cache() *services.TableCache {
	return s.cache
}

func populatedStub() *stubService {
	views := aggregate.ViewSet{
		Default: "flight_count",
		Options: map[string]aggregate.View{
			"flight_count": {
				Name:  "flight_count",
				Title: "Flight Count by Day and Hour",
			},
		},
		AvailableViews: []string{"flight_count"},
	}
	return &stubService{
		cache: services.NewTableCache(),
		result: &services.AnalysisResult{
			Source:      datasource.SourceSample,
			RecordsKept: 10,
			Report:      &insights.Report{},
			Narrative:   narrative.Result{Source: narrative.SourceFallback},
			Views:       views,
		},
		views: views,
		report: &insights.Report{
			Summary: insights.Summary{TotalFlights: 10},
		},
	}
}

func newTestHandler(svc AnalyticsServiceInterface) *AnalysisHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validation := middleware.NewValidationMiddleware(logger, errorHandler)
	return NewAnalysisHandler(svc, validation, logger, errorHandler)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyzeEndpoint(t *testing.T) {
	svc := populatedStub()
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/analyze",
		strings.NewReader(`{"origin":"SYD","destination":"MEL","date_from":"2025-06-16","date_to":"2025-06-20"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "success", body["status"])

	assert.Equal(t, "SYD", svc.lastFetch.Origin)
	assert.Equal(t, "MEL", svc.lastFetch.Destination)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), svc.lastFetch.DateFrom)
}

func TestAnalyzeEmptyBodyUsesDefaults(t *testing.T) {
	svc := populatedStub()
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.lastFetch.Origin)
}

func TestAnalyzeRejectsInvalidOrigin(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodPost, "/analyze",
		strings.NewReader(`{"origin":"sydney"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "origin")
}

func TestAnalyzeRejectsInvertedDateRange(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodPost, "/analyze",
		strings.NewReader(`{"date_from":"2025-06-20","date_to":"2025-06-16"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date_to")
}

func TestAnalyzePropagatesMalformedRecords(t *testing.T) {
	svc := populatedStub()
	svc.analyzeErr = apierrors.MalformedRecordsError(
		&testParseError{msg: "record 3: invalid departure_time \"garbage\""})
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "record 3")
}

type testParseError struct{ msg string }

func (e *testParseError) Error() string { return e.msg }

func TestGetHeatmapsDefaultView(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodGet, "/heatmaps", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "flight_count", body["view"])
}

func TestGetHeatmapsUnknownView(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodGet, "/heatmaps?view=bogus", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "available_views")
}

func TestGetHeatmapsNoData(t *testing.T) {
	svc := populatedStub()
	svc.views = aggregate.ViewSet{}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/heatmaps", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInsights(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodGet, "/insights", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(10), summary["total_flights"])
}

func TestExportFormats(t *testing.T) {
	handler := newTestHandler(populatedStub())

	req := httptest.NewRequest(http.MethodPost, "/export?format=csv", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	req = httptest.NewRequest(http.MethodPost, "/export", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	req = httptest.NewRequest(http.MethodPost, "/export?format=recommendations", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "recommendations_")

	req = httptest.NewRequest(http.MethodPost, "/export?format=pdf", nil)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	svc := populatedStub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHealthHandler(svc, "1.0.0", logger)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.0.0", body["version"])

	cache, ok := body["cache"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, cache["populated"])

	svc.cache.Set([]domain.Flight{{FlightNumber: "QF400"}}, datasource.SourceAPI)
	rec = httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body = decodeJSON(t, rec)
	cache = body["cache"].(map[string]interface{})
	assert.Equal(t, true, cache["populated"])
	assert.Equal(t, float64(1), cache["records"])
}
