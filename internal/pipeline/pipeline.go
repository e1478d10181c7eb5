package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"flightpulse/internal/config"
	"flightpulse/pkg/contracts/domain"
)

// Timestamp layouts accepted from upstream sources, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseError reports a record that could not be parsed, carrying enough
// context to locate the offending field in the source batch.
type ParseError struct {
	Index int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: invalid %s %q: %v", e.Index, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Enricher turns raw booking records into the enriched working table:
// deduplication, timestamp parsing, missing-value fills, price outlier
// removal, then feature derivation. The transform is pure and idempotent;
// re-enriching already-clean data changes nothing.
type Enricher struct {
	logger *slog.Logger
}

// NewEnricher creates an enricher. A nil logger falls back to slog.Default.
func NewEnricher(logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{logger: logger.With(slog.String("component", "pipeline"))}
}

// Enrich runs the full cleaning and derivation pass over a batch.
// An empty batch yields an empty table and no error. A record with a
// non-empty but unparseable timestamp fails the whole batch with a
// *ParseError; absent timestamps only suppress the features derived
// from them.
func (e *Enricher) Enrich(records []domain.RawFlight) ([]domain.Flight, error) {
	if len(records) == 0 {
		return []domain.Flight{}, nil
	}

	deduped := dedupe(records)

	flights := make([]domain.Flight, 0, len(deduped))
	for i, rec := range deduped {
		f, err := parseRecord(i, rec)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}

	fillMissing(flights, deduped)
	flights = dropPriceOutliers(flights)

	for i := range flights {
		deriveFeatures(&flights[i])
	}

	e.logger.Debug("batch enriched",
		slog.Int("records_in", len(records)),
		slog.Int("records_out", len(flights)),
	)
	return flights, nil
}

// dedupe removes exact duplicates, keeping first occurrence order.
func dedupe(records []domain.RawFlight) []domain.RawFlight {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.RawFlight, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// parseRecord converts one raw record, parsing timestamps. Empty timestamp
// fields are not an error; the derived features that need them are skipped.
func parseRecord(index int, rec domain.RawFlight) (domain.Flight, error) {
	f := domain.Flight{
		FlightNumber:   rec.FlightNumber,
		Airline:        rec.Airline,
		Origin:         rec.Origin,
		Destination:    rec.Destination,
		Route:          rec.Route,
		TotalSeats:     rec.TotalSeats,
		AvailableSeats: rec.AvailableSeats,
	}

	if rec.DepartureTime != "" {
		dep, err := parseTimestamp(rec.DepartureTime)
		if err != nil {
			return domain.Flight{}, &ParseError{Index: index, Field: "departure_time", Value: rec.DepartureTime, Err: err}
		}
		f.DepartureTime = dep
		// Midnight in the timestamp's own location. Truncate would round
		// against the UTC epoch and shift offset-bearing timestamps onto
		// the wrong calendar day.
		f.Date = time.Date(dep.Year(), dep.Month(), dep.Day(), 0, 0, 0, 0, dep.Location())
	}

	if rec.ArrivalTime != "" {
		arr, err := parseTimestamp(rec.ArrivalTime)
		if err != nil {
			return domain.Flight{}, &ParseError{Index: index, Field: "arrival_time", Value: rec.ArrivalTime, Err: err}
		}
		f.ArrivalTime = arr
	}

	if rec.Price != nil {
		f.Price = *rec.Price
	}
	if rec.DemandScore != nil {
		f.DemandScore = *rec.DemandScore
		f.HasDemand = true
	}

	return f, nil
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// fillMissing fills absent prices with the batch median and absent airlines
// with "Unknown". Records are matched back to their raw counterparts so a
// genuine zero price is distinguishable from a missing one.
func fillMissing(flights []domain.Flight, raws []domain.RawFlight) {
	known := make([]float64, 0, len(flights))
	for _, r := range raws {
		if r.Price != nil {
			known = append(known, *r.Price)
		}
	}

	if len(known) > 0 {
		med := median(known)
		for i := range flights {
			if raws[i].Price == nil {
				flights[i].Price = med
			}
		}
	}

	for i := range flights {
		if flights[i].Airline == "" {
			flights[i].Airline = "Unknown"
		}
	}
}

// median with even-length interpolation, matching the fill the rest of the
// statistics layer reports.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// dropPriceOutliers removes rows with price outside three sample standard
// deviations of the batch mean. Batches of one record (or with no price
// spread) pass through untouched since the deviation is undefined or zero.
func dropPriceOutliers(flights []domain.Flight) []domain.Flight {
	if len(flights) <= 1 {
		return flights
	}

	prices := make([]float64, len(flights))
	for i, f := range flights {
		prices[i] = f.Price
	}

	mean := stat.Mean(prices, nil)
	std := stat.StdDev(prices, nil)
	if std == 0 {
		return flights
	}

	lo, hi := mean-3*std, mean+3*std
	out := flights[:0]
	for _, f := range flights {
		if f.Price >= lo && f.Price <= hi {
			out = append(out, f)
		}
	}
	return out
}

// deriveFeatures computes the derived columns for one row. Each feature is
// derived only when its prerequisite field is present on the record.
func deriveFeatures(f *domain.Flight) {
	if f.HasDate() {
		f.DayOfWeek = f.Date.Weekday().String()
		f.Month = int(f.Date.Month())
		f.Season = season(f.Date.Month())
		f.IsWeekend = f.Date.Weekday() == time.Saturday || f.Date.Weekday() == time.Sunday
	}

	if !f.DepartureTime.IsZero() {
		f.Hour = f.DepartureTime.Hour()
		f.HasHour = true
		f.PeakHour = peakHour(f.Hour)
	}

	f.PriceCategory = priceCategory(f.Price)

	if f.TotalSeats > 0 {
		f.OccupancyRate = float64(f.TotalSeats-f.AvailableSeats) / float64(f.TotalSeats)
		f.HasOccupancy = true
		f.DemandLevel = demandLevel(f.OccupancyRate)
	}

	if dist, ok := config.RouteDistances[f.Route]; ok {
		f.RouteDistance = dist
		f.HasDistance = true
		if dist > 0 {
			f.PricePerKm = f.Price / dist
		}
	}
}

// season maps a month to its Southern Hemisphere season.
func season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Summer"
	case time.March, time.April, time.May:
		return "Autumn"
	case time.June, time.July, time.August:
		return "Winter"
	default:
		return "Spring"
	}
}

// priceCategory buckets a price into fixed right-inclusive bands. Prices
// outside (0, 1000] carry no category.
func priceCategory(price float64) string {
	switch {
	case price <= 0:
		return ""
	case price <= 200:
		return domain.PriceCategoryBudget
	case price <= 400:
		return domain.PriceCategoryEconomy
	case price <= 600:
		return domain.PriceCategoryPremium
	case price <= 1000:
		return domain.PriceCategoryLuxury
	default:
		return ""
	}
}

// demandLevel buckets occupancy into right-inclusive bands. Zero occupancy
// carries no level.
func demandLevel(occ float64) string {
	switch {
	case occ <= 0 || occ > 1:
		return ""
	case occ <= 0.5:
		return domain.DemandLow
	case occ <= 0.7:
		return domain.DemandMedium
	case occ <= 0.9:
		return domain.DemandHigh
	default:
		return domain.DemandVeryHigh
	}
}

// peakHour labels morning and evening commute departures.
func peakHour(hour int) string {
	if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
		return domain.PeakHourPeak
	}
	return domain.PeakHourOffPeak
}
