// Package services contains the business logic layer, orchestrating the
// acquisition, enrichment, and analysis of flight booking data.
//
// # Service Architecture
//
// AnalyticsService is the single orchestrator: it acquires raw records
// through a Fetcher, runs them through the feature pipeline, synthesizes
// insights, heatmap views, and market narrative, and caches the enriched
// table so the read endpoints (heatmaps, insights, export) serve from the
// last ingested batch without refetching.
//
// TableCache guards the last enriched table behind an RWMutex. Scrub
// sanitizes JSON-bound values, replacing NaN and infinities with nulls
// before anything is encoded onto the wire.
//
// Services accept their dependencies through constructors and report
// failures as typed API errors from the errors package, so the transport
// layer can map them to RFC 7807 responses without inspecting messages.
package services
