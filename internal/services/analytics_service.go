package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/datasource"
	apierrors "flightpulse/internal/errors"
	"flightpulse/internal/exporter"
	"flightpulse/internal/insights"
	"flightpulse/internal/metrics"
	"flightpulse/internal/narrative"
	"flightpulse/internal/pipeline"
	"flightpulse/pkg/contracts/domain"
)

// Fetcher acquires raw records for a request window.
type Fetcher interface {
	FetchFlights(ctx context.Context, req datasource.FetchRequest) ([]domain.RawFlight, string, error)
}

// NarrativeAnalyzer produces the market commentary for a batch.
type NarrativeAnalyzer interface {
	Analyze(ctx context.Context, flights []domain.Flight) narrative.Result
}

// AnalysisResult is the full outcome of one analysis run.
type AnalysisResult struct {
	Source      string            `json:"source"`
	RecordsIn   int               `json:"records_in"`
	RecordsKept int               `json:"records_kept"`
	Report      *insights.Report  `json:"report"`
	Narrative   narrative.Result  `json:"narrative"`
	Views       aggregate.ViewSet `json:"views"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// AnalyticsService orchestrates the full analysis flow: acquire records,
// enrich them, synthesize insights and narrative, build heatmap views, and
// cache the enriched table for the read endpoints.
type AnalyticsService struct {
	fetcher  Fetcher
	enricher *pipeline.Enricher
	analyzer NarrativeAnalyzer
	cache    *TableCache
	metrics  *metrics.Metrics
	csv      *exporter.CSVExporter
	workbook *exporter.WorkbookExporter
	logger   *slog.Logger
}

// NewAnalyticsService wires the analytics orchestrator.
func NewAnalyticsService(fetcher Fetcher, analyzer NarrativeAnalyzer, m *metrics.Metrics, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		fetcher:  fetcher,
		enricher: pipeline.NewEnricher(logger),
		analyzer: analyzer,
		cache:    NewTableCache(),
		metrics:  m,
		csv:      exporter.NewCSVExporter(),
		workbook: exporter.NewWorkbookExporter(),
		logger:   logger.With(slog.String("component", "analytics_service")),
	}
}

// Cache exposes the table cache for lifecycle endpoints.
func (s *AnalyticsService) Cache() *TableCache {
	return s.cache
}

// Analyze runs the full flow for a request window and caches the enriched
// table. Unparseable source records fail the run with record context;
// narrative failures degrade inside the narrative layer and never fail
// the run.
func (s *AnalyticsService) Analyze(ctx context.Context, req datasource.FetchRequest) (*AnalysisResult, error) {
	start := time.Now()

	records, source, err := s.fetcher.FetchFlights(ctx, req)
	if err != nil {
		s.observe("fetch_error", start, 0, 0)
		return nil, fmt.Errorf("fetching flight data: %w", err)
	}

	flights, err := s.enricher.Enrich(records)
	if err != nil {
		s.observe("parse_error", start, len(records), 0)
		return nil, apierrors.MalformedRecordsError(err)
	}

	s.cache.Set(flights, source)

	result := s.buildResult(ctx, flights, source)
	result.RecordsIn = len(records)

	s.observe("success", start, len(records), len(records)-len(flights))
	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("source", source),
		slog.Int("records_in", len(records)),
		slog.Int("records_kept", len(flights)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// Current returns the analysis of the cached table, falling back to a
// fresh fetch when nothing has been ingested yet.
func (s *AnalyticsService) Current(ctx context.Context) (*AnalysisResult, error) {
	flights, source, ok := s.cache.Get()
	if !ok {
		return s.Analyze(ctx, datasource.FetchRequest{})
	}
	result := s.buildResult(ctx, flights, source)
	result.RecordsIn = len(flights)
	return result, nil
}

// Heatmaps returns the view set for the cached table.
func (s *AnalyticsService) Heatmaps(ctx context.Context) (aggregate.ViewSet, error) {
	flights, err := s.table(ctx)
	if err != nil {
		return aggregate.ViewSet{}, err
	}
	return aggregate.BuildViews(flights), nil
}

// Insights returns the synthesized report for the cached table.
func (s *AnalyticsService) Insights(ctx context.Context) (*insights.Report, error) {
	flights, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return insights.Generate(flights), nil
}

// Export formats supported by ExportReport.
const (
	FormatCSV             = "csv"
	FormatXLSX            = "xlsx"
	FormatRecommendations = "recommendations"
)

// ExportReport streams the current analysis in the requested format.
func (s *AnalyticsService) ExportReport(ctx context.Context, w io.Writer, format string) error {
	flights, err := s.table(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		if err := s.csv.WriteFlights(w, flights); err != nil {
			return apierrors.ExportError(err)
		}
	case FormatXLSX:
		report := insights.Generate(flights)
		views := aggregate.BuildViews(flights)
		if err := s.workbook.Write(w, report, views); err != nil {
			return apierrors.ExportError(err)
		}
	case FormatRecommendations:
		report := insights.Generate(flights)
		if err := s.csv.WriteRecommendations(w, report.Recommendations); err != nil {
			return apierrors.ExportError(err)
		}
	default:
		return apierrors.ErrValidation("format", "must be one of: csv, xlsx, recommendations")
	}

	if s.metrics != nil {
		s.metrics.ExportTotal.WithLabelValues(format).Inc()
	}
	return nil
}

// table returns the cached enriched table, running a default analysis when
// the cache is empty.
func (s *AnalyticsService) table(ctx context.Context) ([]domain.Flight, error) {
	if flights, _, ok := s.cache.Get(); ok {
		return flights, nil
	}
	if _, err := s.Analyze(ctx, datasource.FetchRequest{}); err != nil {
		return nil, err
	}
	flights, _, _ := s.cache.Get()
	return flights, nil
}

func (s *AnalyticsService) buildResult(ctx context.Context, flights []domain.Flight, source string) *AnalysisResult {
	report := insights.Generate(flights)

	nar := s.analyzer.Analyze(ctx, flights)
	nar.Analysis, _ = Scrub(nar.Analysis).(map[string]interface{})
	if nar.Source == narrative.SourceFallback && s.metrics != nil {
		s.metrics.NarrativeFallbacks.WithLabelValues(fallbackReasonClass(nar.FallbackReason)).Inc()
	}

	return &AnalysisResult{
		Source:      source,
		RecordsKept: len(flights),
		Report:      report,
		Narrative:   nar,
		Views:       aggregate.BuildViews(flights),
		GeneratedAt: time.Now().UTC(),
	}
}

func (s *AnalyticsService) observe(outcome string, start time.Time, processed, dropped int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveAnalysis(outcome, time.Since(start), processed, dropped)
}

// fallbackReasonClass collapses free-form fallback reasons into a small
// label set so the counter stays low-cardinality.
func fallbackReasonClass(reason string) string {
	switch {
	case reason == "no API key configured":
		return "no_key"
	default:
		return "service_error"
	}
}
