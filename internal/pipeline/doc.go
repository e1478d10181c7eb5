// Package pipeline cleans raw flight booking records and derives the
// analytical feature columns the rest of the system consumes.
//
// # Data Flow
//
// The typical flow through this package:
//
//	Raw records → dedupe → timestamp parsing → missing-value fills →
//	price outlier removal → feature derivation → enriched table
//
// # Cleaning Rules
//
// Cleaning follows fixed rules rather than configuration:
//
//	- Exact duplicate records are dropped, first occurrence kept
//	- Missing prices are filled with the batch median
//	- Missing airlines become "Unknown"
//	- Prices outside three standard deviations of the batch mean are dropped;
//	  single-record batches skip the filter entirely
//
// # Missing Fields
//
// A record missing a timestamp, seat counts, or a known route is not an
// error. The features derived from the absent field are skipped and the
// corresponding Has* flag on the row stays false, so downstream consumers
// can omit views and sections that have no backing data.
//
// # Error Handling
//
// Only a present-but-unparseable timestamp fails a batch. The returned
// *ParseError carries the record index, field name, and offending value.
package pipeline
