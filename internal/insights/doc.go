// Package insights synthesizes the analytical report from an enriched
// flight batch: summary statistics, price and demand concentrations,
// per-route profiles, fitted trends, and rule-based recommendations.
//
// Sections backed by columns the batch lacks report Present false instead
// of carrying fabricated values, and an empty batch produces a fixed
// no-data sentinel report.
package insights
