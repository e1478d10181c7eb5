package http

import (
	"context"
	"io"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/datasource"
	"flightpulse/internal/insights"
	"flightpulse/internal/services"
)

// AnalyticsServiceInterface defines the contract the analysis handler
// requires from the service layer. Narrowing it to an interface keeps the
// handler testable with stubs.
type AnalyticsServiceInterface interface {
	Analyze(ctx context.Context, req datasource.FetchRequest) (*services.AnalysisResult, error)
	Heatmaps(ctx context.Context) (aggregate.ViewSet, error)
	Insights(ctx context.Context) (*insights.Report, error)
	ExportReport(ctx context.Context, w io.Writer, format string) error
	Cache() *services.TableCache
}
