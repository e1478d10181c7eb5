// Package narrative produces the qualitative market commentary that
// accompanies the quantitative insight report.
//
// The analyzer prefers a configured OpenAI-compatible chat-completions
// service and degrades to a deterministic offline narrative on any
// failure: missing key, transport error, non-2xx status, or an
// undecodable body. Analysis failures are never surfaced as errors; the
// Result records which source produced it and why a fallback happened.
package narrative
