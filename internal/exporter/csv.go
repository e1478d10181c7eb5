package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"flightpulse/internal/insights"
	"flightpulse/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVExporter streams analysis data as CSV.
type CSVExporter struct{}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// flightHeaders are the columns of the enriched table export.
var flightHeaders = []string{
	"flight_number", "airline", "origin", "destination", "route",
	"departure_time", "price", "price_category", "day_of_week", "hour",
	"season", "occupancy_rate", "demand_level", "route_distance",
	"price_per_km", "peak_hour", "is_weekend", "demand_score",
}

// WriteFlights streams the enriched flight table. Cells for features whose
// prerequisite field was absent are left empty rather than rendered as zero.
func (e *CSVExporter) WriteFlights(w io.Writer, flights []domain.Flight) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(flightHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, f := range flights {
		if err := cw.Write(flightRow(f)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func flightRow(f domain.Flight) []string {
	departure := ""
	if !f.DepartureTime.IsZero() {
		departure = f.DepartureTime.Format("2006-01-02 15:04:05")
	}

	hour := ""
	peakHour := ""
	if f.HasHour {
		hour = formatInt(int64(f.Hour))
		peakHour = f.PeakHour
	}

	occupancy := ""
	if f.HasOccupancy {
		occupancy = formatFloat(f.OccupancyRate)
	}

	distance := ""
	pricePerKm := ""
	if f.HasDistance {
		distance = formatFloat(f.RouteDistance)
		pricePerKm = formatFloat(f.PricePerKm)
	}

	demand := ""
	if f.HasDemand {
		demand = formatFloat(f.DemandScore)
	}

	return []string{
		f.FlightNumber, f.Airline, f.Origin, f.Destination, f.Route,
		departure, formatFloat(f.Price), f.PriceCategory, f.DayOfWeek, hour,
		f.Season, occupancy, f.DemandLevel, distance,
		pricePerKm, peakHour, formatBool(f.IsWeekend), demand,
	}
}

// WriteRecommendations streams the recommendation list.
func (e *CSVExporter) WriteRecommendations(w io.Writer, recs []insights.Recommendation) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "title", "description", "priority"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range recs {
		if err := cw.Write([]string{r.Type, r.Title, r.Description, r.Priority}); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
