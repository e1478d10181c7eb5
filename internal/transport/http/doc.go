// Package http provides the HTTP transport layer for the flight market
// analytics API.
//
// # Handlers
//
// AnalysisHandler exposes the analysis flow: POST /analyze runs a full
// acquisition and analysis cycle, and GET /heatmaps, GET /insights, and
// POST /export serve derived artifacts from the last analyzed table.
// HealthHandler reports service liveness and cache freshness.
//
// All handlers render errors as RFC 7807 problem details through the
// shared ErrorHandler, with request-scoped structured logging keyed by
// the chi request ID.
package http
