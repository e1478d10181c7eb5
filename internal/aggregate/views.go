package aggregate

import (
	"strconv"

	"flightpulse/pkg/contracts/domain"
)

// View names, stable across the API surface.
const (
	ViewFlightCount   = "flight_count"
	ViewPrice         = "price_heatmap"
	ViewDemandScore   = "demand_score"
	ViewRouteAirline  = "route_airline"
	ViewRouteDayPrice = "route_day_price"
	ViewWeekend       = "weekend_analysis"
)

// AxisLabels describes the view's axes for rendering clients.
type AxisLabels struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Value string `json:"value"`
}

// PeakSummary carries the strongest and weakest axis positions of a view,
// ranked by row and column totals.
type PeakSummary struct {
	PeakRow string `json:"peak_row"`
	PeakCol string `json:"peak_col"`
	LowRow  string `json:"low_row"`
	LowCol  string `json:"low_col"`
}

// View is one rendered heatmap.
type View struct {
	Name   string      `json:"name"`
	Title  string      `json:"title"`
	Labels AxisLabels  `json:"labels"`
	Matrix Matrix      `json:"matrix"`
	Peak   PeakSummary `json:"peak"`
}

// ViewSet is the full heatmap payload: every view the data can support,
// plus which one clients should show first.
type ViewSet struct {
	Default        string          `json:"default"`
	Options        map[string]View `json:"options"`
	AvailableViews []string        `json:"available_views"`
}

// BuildViews assembles every heatmap view the batch has the columns for.
// Views whose prerequisite fields are absent from all rows are omitted
// entirely rather than rendered empty. The default view is flight_count,
// falling back to the price view.
func BuildViews(flights []domain.Flight) ViewSet {
	set := ViewSet{Options: make(map[string]View)}

	hasDate := anyFlight(flights, func(f domain.Flight) bool { return f.HasDate() })
	hasHour := anyFlight(flights, func(f domain.Flight) bool { return f.HasHour })
	hasDemand := anyFlight(flights, func(f domain.Flight) bool { return f.HasDemand })
	hasRoute := anyFlight(flights, func(f domain.Flight) bool { return f.Route != "" })
	hasAirline := anyFlight(flights, func(f domain.Flight) bool { return f.Airline != "" })

	add := func(v View) {
		set.Options[v.Name] = v
		set.AvailableViews = append(set.AvailableViews, v.Name)
	}

	if hasDate && hasHour {
		add(View{
			Name:   ViewFlightCount,
			Title:  "Flight Demand Heatmap by Day and Hour",
			Labels: AxisLabels{X: "Hour of Day", Y: "Day of Week", Value: "Number of Flights"},
			Matrix: Pivot(flights, dayKey, hourKey, nil, Count),
		})
		add(View{
			Name:   ViewPrice,
			Title:  "Average Price Heatmap by Day and Hour",
			Labels: AxisLabels{X: "Hour of Day", Y: "Day of Week", Value: "Average Price (AUD)"},
			Matrix: Pivot(flights, dayKey, hourKey, priceValue, Mean),
		})
	}

	if hasDate && hasHour && hasDemand {
		add(View{
			Name:   ViewDemandScore,
			Title:  "Demand Score Heatmap by Day and Hour",
			Labels: AxisLabels{X: "Hour of Day", Y: "Day of Week", Value: "Demand Score"},
			Matrix: Pivot(flights, dayKey, hourKey, demandValue, Mean),
		})
	}

	if hasRoute && hasAirline {
		add(View{
			Name:   ViewRouteAirline,
			Title:  "Flight Distribution by Route and Airline",
			Labels: AxisLabels{X: "Airline", Y: "Route", Value: "Number of Flights"},
			Matrix: Pivot(flights, routeKey, airlineKey, nil, Count),
		})
	}

	if hasRoute && hasDate {
		add(View{
			Name:   ViewRouteDayPrice,
			Title:  "Average Price by Route and Day of Week",
			Labels: AxisLabels{X: "Day of Week", Y: "Route", Value: "Average Price (AUD)"},
			Matrix: Pivot(flights, routeKey, dayKey, priceValue, Mean),
		})
	}

	if hasDate && hasHour {
		add(View{
			Name:   ViewWeekend,
			Title:  "Flight Distribution: Weekend vs Weekday by Hour",
			Labels: AxisLabels{X: "Hour of Day", Y: "Day Type", Value: "Number of Flights"},
			Matrix: weekendMatrix(flights),
		})
	}

	for name, v := range set.Options {
		v.Peak = summarize(v.Matrix)
		set.Options[name] = v
	}

	switch {
	case set.Options[ViewFlightCount].Name != "":
		set.Default = ViewFlightCount
	case set.Options[ViewPrice].Name != "":
		set.Default = ViewPrice
	case len(set.AvailableViews) > 0:
		set.Default = set.AvailableViews[0]
	}

	return set
}

func anyFlight(flights []domain.Flight, pred func(domain.Flight) bool) bool {
	for _, f := range flights {
		if pred(f) {
			return true
		}
	}
	return false
}

// Axis accessors. Each reports absent when its backing field is missing so
// rows without the field drop out of the pivot instead of polluting an axis.

func dayKey(f domain.Flight) (string, bool) {
	if !f.HasDate() {
		return "", false
	}
	return f.DayOfWeek, true
}

func hourKey(f domain.Flight) (string, bool) {
	if !f.HasHour {
		return "", false
	}
	return strconv.Itoa(f.Hour), true
}

func routeKey(f domain.Flight) (string, bool) {
	if f.Route == "" {
		return "", false
	}
	return f.Route, true
}

func airlineKey(f domain.Flight) (string, bool) {
	if f.Airline == "" {
		return "", false
	}
	return f.Airline, true
}

func priceValue(f domain.Flight) float64  { return f.Price }
func demandValue(f domain.Flight) float64 { return f.DemandScore }

// weekendMatrix pivots counts over day type and hour, with day-type rows in
// the fixed Weekday-then-Weekend order regardless of which appeared first.
func weekendMatrix(flights []domain.Flight) Matrix {
	m := Pivot(flights, weekendKey, hourKey, nil, Count)
	if len(m.RowKeys) == 2 && m.RowKeys[0] == "Weekend" {
		m.RowKeys[0], m.RowKeys[1] = m.RowKeys[1], m.RowKeys[0]
		m.Cells[0], m.Cells[1] = m.Cells[1], m.Cells[0]
	}
	return m
}

func weekendKey(f domain.Flight) (string, bool) {
	if !f.HasDate() {
		return "", false
	}
	if f.IsWeekend {
		return "Weekend", true
	}
	return "Weekday", true
}

// summarize finds the hottest and coldest row and column by totals. On the
// dense zero-filled matrix every row and column has the same cell count, so
// ranking by totals picks the same extremes as ranking by means.
func summarize(m Matrix) PeakSummary {
	if m.IsEmpty() {
		return PeakSummary{}
	}

	rowTotals := make([]float64, len(m.RowKeys))
	colTotals := make([]float64, len(m.ColKeys))
	for i, row := range m.Cells {
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
		}
	}

	maxR, minR := extremes(rowTotals)
	maxC, minC := extremes(colTotals)
	return PeakSummary{
		PeakRow: m.RowKeys[maxR],
		PeakCol: m.ColKeys[maxC],
		LowRow:  m.RowKeys[minR],
		LowCol:  m.ColKeys[minC],
	}
}

func extremes(totals []float64) (maxIdx, minIdx int) {
	for i, v := range totals {
		if v > totals[maxIdx] {
			maxIdx = i
		}
		if v < totals[minIdx] {
			minIdx = i
		}
	}
	return maxIdx, minIdx
}
