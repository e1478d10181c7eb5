package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightpulse/internal/config"
	"flightpulse/internal/datasource"
	apierrors "flightpulse/internal/errors"
	"flightpulse/internal/narrative"
	"flightpulse/pkg/contracts/domain"
)

type stubFetcher struct {
	records []domain.RawFlight
	source  string
	err     error
	calls   int
}

func (s *stubFetcher) FetchFlights(_ context.Context, _ datasource.FetchRequest) ([]domain.RawFlight, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.records, s.source, nil
}

func testRecords() []domain.RawFlight {
	price1, price2 := 300.0, 450.0
	return []domain.RawFlight{
		{
			FlightNumber:  "QF400",
			Airline:       "Qantas",
			Origin:        "SYD",
			Destination:   "MEL",
			Route:         "SYD-MEL",
			DepartureTime: "2025-06-16 08:30:00",
			Price:         &price1,
			TotalSeats:    180,
			AvailableSeats: 45,
		},
		{
			FlightNumber:  "VA850",
			Airline:       "Virgin Australia",
			Origin:        "SYD",
			Destination:   "MEL",
			Route:         "SYD-MEL",
			DepartureTime: "2025-06-17 18:00:00",
			Price:         &price2,
			TotalSeats:    160,
			AvailableSeats: 20,
		},
	}
}

func newTestService(t *testing.T, fetcher Fetcher) *AnalyticsService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := narrative.NewAnalyzer(config.NarrativeConfig{}, nil, logger)
	return NewAnalyticsService(fetcher, analyzer, nil, logger)
}

func TestAnalyzeFullFlow(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceSample}
	svc := newTestService(t, fetcher)

	result, err := svc.Analyze(context.Background(), datasource.FetchRequest{})
	require.NoError(t, err)

	assert.Equal(t, datasource.SourceSample, result.Source)
	assert.Equal(t, 2, result.RecordsIn)
	assert.Equal(t, 2, result.RecordsKept)

	require.NotNil(t, result.Report)
	assert.False(t, result.Report.NoData)
	assert.Equal(t, 2, result.Report.Summary.TotalFlights)

	assert.Equal(t, narrative.SourceFallback, result.Narrative.Source)
	assert.Contains(t, result.Narrative.Analysis, "trends")

	assert.NotEmpty(t, result.Views.AvailableViews)
	assert.Equal(t, "flight_count", result.Views.Default)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestAnalyzePopulatesCache(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceAPI}
	svc := newTestService(t, fetcher)

	_, _, ok := svc.Cache().Get()
	assert.False(t, ok)

	_, err := svc.Analyze(context.Background(), datasource.FetchRequest{})
	require.NoError(t, err)

	flights, source, ok := svc.Cache().Get()
	require.True(t, ok)
	assert.Len(t, flights, 2)
	assert.Equal(t, datasource.SourceAPI, source)
}

func TestAnalyzeFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream unreachable")}
	svc := newTestService(t, fetcher)

	_, err := svc.Analyze(context.Background(), datasource.FetchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unreachable")
}

func TestAnalyzeMalformedRecords(t *testing.T) {
	records := testRecords()
	records[0].DepartureTime = "not-a-timestamp"
	fetcher := &stubFetcher{records: records, source: datasource.SourceAPI}
	svc := newTestService(t, fetcher)

	_, err := svc.Analyze(context.Background(), datasource.FetchRequest{})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "MALFORMED_RECORDS", apiErr.ErrorCode)
	assert.Contains(t, apiErr.Details, "departure_time")
}

func TestCurrentServesFromCache(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceSample}
	svc := newTestService(t, fetcher)

	_, err := svc.Analyze(context.Background(), datasource.FetchRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, fetcher.calls)

	result, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "cached table should not trigger a refetch")
	assert.Equal(t, 2, result.RecordsKept)
}

func TestCurrentFetchesWhenCacheEmpty(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceSample}
	svc := newTestService(t, fetcher)

	result, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 2, result.RecordsKept)
}

func TestHeatmapsAndInsightsShareCachedTable(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceSample}
	svc := newTestService(t, fetcher)

	views, err := svc.Heatmaps(context.Background())
	require.NoError(t, err)
	assert.Contains(t, views.AvailableViews, "flight_count")

	report, err := svc.Insights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.TotalFlights)

	assert.Equal(t, 1, fetcher.calls, "heatmaps and insights should share one fetch")
}

func TestExportReport(t *testing.T) {
	fetcher := &stubFetcher{records: testRecords(), source: datasource.SourceSample}
	svc := newTestService(t, fetcher)

	var csvBuf bytes.Buffer
	require.NoError(t, svc.ExportReport(context.Background(), &csvBuf, FormatCSV))
	assert.Contains(t, csvBuf.String(), "QF400")

	var xlsxBuf bytes.Buffer
	require.NoError(t, svc.ExportReport(context.Background(), &xlsxBuf, FormatXLSX))
	assert.Greater(t, xlsxBuf.Len(), 0)

	var recBuf bytes.Buffer
	require.NoError(t, svc.ExportReport(context.Background(), &recBuf, FormatRecommendations))
	assert.Contains(t, recBuf.String(), "type,title,description,priority")

	err := svc.ExportReport(context.Background(), io.Discard, "pdf")
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestTableCacheLifecycle(t *testing.T) {
	cache := NewTableCache()

	_, _, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.UpdatedAt().IsZero())

	flights := []domain.Flight{{FlightNumber: "QF400"}}
	cache.Set(flights, datasource.SourceAPI)

	got, source, ok := cache.Get()
	require.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, datasource.SourceAPI, source)
	assert.False(t, cache.UpdatedAt().IsZero())

	cache.Clear()
	_, _, ok = cache.Get()
	assert.False(t, ok)
}

func TestScrubReplacesNonFiniteValues(t *testing.T) {
	in := map[string]interface{}{
		"mean":   math.NaN(),
		"max":    math.Inf(1),
		"min":    math.Inf(-1),
		"count":  5,
		"nested": []interface{}{1.5, math.NaN()},
	}

	out, ok := Scrub(in).(map[string]interface{})
	require.True(t, ok)

	assert.Nil(t, out["mean"])
	assert.Nil(t, out["max"])
	assert.Nil(t, out["min"])
	assert.Equal(t, 5, out["count"])

	nested, ok := out["nested"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, 1.5, nested[0])
	assert.Nil(t, nested[1])
}
