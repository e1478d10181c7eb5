// Package exporter renders the analysis results for download.
//
// This package contains two main components:
//
// CSVExporter: Streams the enriched flight table and the recommendation
// list as CSV with a UTF-8 BOM for Excel compatibility.
//
// WorkbookExporter: Builds an XLSX workbook with a Summary sheet, one
// sheet per heatmap view, and a Recommendations sheet.
//
// Both exporters write to an io.Writer so handlers can stream straight
// into the HTTP response.
package exporter
