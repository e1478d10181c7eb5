package domain

import (
	"fmt"
	"time"
)

// RawFlight represents a single booking record exactly as received from a
// data source, before any cleaning or feature derivation. Timestamp fields
// are kept as strings because sources disagree on formats; parsing happens
// in the feature pipeline where failures can be reported with record context.
type RawFlight struct {
	FlightNumber   string   `json:"flight_number"`
	Airline        string   `json:"airline"`
	Origin         string   `json:"origin" validate:"omitempty,len=3"`
	Destination    string   `json:"destination" validate:"omitempty,len=3"`
	Route          string   `json:"route"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"`
	Duration       string   `json:"duration,omitempty"`
	Price          *float64 `json:"price"`
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	DemandScore    *float64 `json:"demand_score,omitempty"`
}

// Key returns a string identity covering every field, used for exact-duplicate
// removal. Optional fields render distinctly from their zero values so a
// record with price 0 is not considered equal to one with no price at all.
func (r RawFlight) Key() string {
	price := "-"
	if r.Price != nil {
		price = fmt.Sprintf("%g", *r.Price)
	}
	demand := "-"
	if r.DemandScore != nil {
		demand = fmt.Sprintf("%g", *r.DemandScore)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%s|%d|%d|%s",
		r.FlightNumber, r.Airline, r.Origin, r.Destination, r.Route,
		r.DepartureTime, r.ArrivalTime, r.Duration, price,
		r.TotalSeats, r.AvailableSeats, demand)
}

// Flight is one row of the enriched working table: the cleaned raw fields
// plus every derived feature. Has* flags mark derivations whose prerequisite
// was absent from the source record; consumers must treat the corresponding
// value as missing rather than zero.
type Flight struct {
	FlightNumber   string    `json:"flight_number"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Route          string    `json:"route"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	Date           time.Time `json:"date"`
	Price          float64   `json:"price"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`

	DayOfWeek     string  `json:"day_of_week,omitempty"`
	Hour          int     `json:"hour"`
	HasHour       bool    `json:"has_hour"`
	Month         int     `json:"month,omitempty"`
	Season        string  `json:"season,omitempty"`
	PriceCategory string  `json:"price_category,omitempty"`
	OccupancyRate float64 `json:"occupancy_rate"`
	HasOccupancy  bool    `json:"has_occupancy"`
	DemandLevel   string  `json:"demand_level,omitempty"`
	RouteDistance float64 `json:"route_distance"`
	HasDistance   bool    `json:"has_distance"`
	PricePerKm    float64 `json:"price_per_km"`
	PeakHour      string  `json:"peak_hour,omitempty"`
	IsWeekend     bool    `json:"is_weekend"`
	DemandScore   float64 `json:"demand_score"`
	HasDemand     bool    `json:"has_demand_score"`
}

// HasDate reports whether the record carries calendar information. Calendar
// derived features (day of week, month, season, weekly trends) are only
// meaningful when this returns true.
func (f Flight) HasDate() bool {
	return !f.Date.IsZero()
}

// ISOWeek returns the ISO 8601 week number of the flight date.
func (f Flight) ISOWeek() int {
	_, week := f.Date.ISOWeek()
	return week
}

// Price category labels, fixed buckets in currency units.
const (
	PriceCategoryBudget  = "Budget"
	PriceCategoryEconomy = "Economy"
	PriceCategoryPremium = "Premium"
	PriceCategoryLuxury  = "Luxury"
)

// Demand level labels derived from occupancy thresholds.
const (
	DemandLow      = "Low"
	DemandMedium   = "Medium"
	DemandHigh     = "High"
	DemandVeryHigh = "Very High"
)

// Peak hour labels.
const (
	PeakHourPeak    = "Peak"
	PeakHourOffPeak = "Off-Peak"
)
