package insights

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/trend"
	"flightpulse/pkg/contracts/domain"
)

// Summary is the headline view of a batch.
type Summary struct {
	TotalFlights      int               `json:"total_flights"`
	AveragePrice      float64           `json:"average_price"`
	PriceRange        string            `json:"price_range"`
	PopularRoutes     []aggregate.Entry `json:"popular_routes"`
	PopularAirlines   []aggregate.Entry `json:"popular_airlines"`
	PriceDistribution PriceDistribution `json:"price_distribution"`
	DataPeriod        string            `json:"data_period,omitempty"`
}

// PriceDistribution counts flights in coarse fare bands.
type PriceDistribution struct {
	Budget  int `json:"budget"`
	Economy int `json:"economy"`
	Premium int `json:"premium"`
}

// PriceInsights describes where prices concentrate across days, hours,
// airlines, and routes.
type PriceInsights struct {
	Present         bool                      `json:"present"`
	ExpensiveDays   []aggregate.Entry         `json:"expensive_days,omitempty"`
	CheapestDays    []aggregate.Entry         `json:"cheapest_days,omitempty"`
	ExpensiveHours  []aggregate.Entry         `json:"expensive_hours,omitempty"`
	CheapestHours   []aggregate.Entry         `json:"cheapest_hours,omitempty"`
	AirlinePricing  map[string]AirlinePricing `json:"airline_pricing,omitempty"`
	ExpensiveRoutes []aggregate.Entry         `json:"expensive_routes,omitempty"`
	CheapestRoutes  []aggregate.Entry         `json:"cheapest_routes,omitempty"`
	PriceVolatility []aggregate.Entry         `json:"price_volatility,omitempty"`
}

// AirlinePricing pairs an airline's mean fare with its sample size.
type AirlinePricing struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// DemandInsights describes where booking volume concentrates.
type DemandInsights struct {
	Present           bool              `json:"present"`
	BusiestDays       []aggregate.Entry `json:"busiest_days,omitempty"`
	QuietestDays      []aggregate.Entry `json:"quietest_days,omitempty"`
	PeakHours         []aggregate.Entry `json:"peak_hours,omitempty"`
	OffPeakHours      []aggregate.Entry `json:"off_peak_hours,omitempty"`
	WeekendRatio      float64           `json:"weekend_ratio"`
	HasWeekendRatio   bool              `json:"has_weekend_ratio"`
	AirlinePopularity []aggregate.Entry `json:"airline_popularity,omitempty"`
	RoutePopularity   []aggregate.Entry `json:"route_popularity,omitempty"`
}

// RouteProfile is the per-route breakdown.
type RouteProfile struct {
	TotalFlights    int               `json:"total_flights"`
	AvgPrice        float64           `json:"avg_price"`
	PriceRange      string            `json:"price_range"`
	PopularAirlines []aggregate.Entry `json:"popular_airlines"`
	PeakHours       []aggregate.Entry `json:"peak_hours,omitempty"`
	WeekendRatio    float64           `json:"weekend_ratio"`
	AvgDemandScore  float64           `json:"avg_demand_score,omitempty"`
	HasDemandScore  bool              `json:"has_demand_score"`
}

// RouteInsights maps each route to its profile, with Order preserving
// first-appearance sequence for deterministic rendering.
type RouteInsights struct {
	Present  bool                    `json:"present"`
	Order    []string                `json:"order,omitempty"`
	Profiles map[string]RouteProfile `json:"profiles,omitempty"`
}

// TrendInsights carries the fitted directions of the daily series plus the
// weekly price pattern.
type TrendInsights struct {
	Present            bool               `json:"present"`
	PriceTrend         trend.Direction    `json:"price_trend,omitempty"`
	DemandTrend        trend.Direction    `json:"demand_trend,omitempty"`
	WeeklyPricePattern map[string]float64 `json:"weekly_price_pattern,omitempty"`
}

// Recommendation is one actionable finding.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Report is the full synthesized insight set for a batch.
type Report struct {
	NoData          bool             `json:"no_data"`
	Message         string           `json:"message,omitempty"`
	Summary         Summary          `json:"summary"`
	Price           PriceInsights    `json:"price_insights"`
	Demand          DemandInsights   `json:"demand_insights"`
	Routes          RouteInsights    `json:"route_insights"`
	Trends          TrendInsights    `json:"trend_insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// noDataMessage is the fixed sentinel text for an empty batch.
const noDataMessage = "No data available for analysis"

// Generate synthesizes the insight report for an enriched batch. An empty
// batch yields the no-data sentinel with empty recommendations; sections
// whose backing columns are absent report Present false and are otherwise
// empty, never fabricated.
func Generate(flights []domain.Flight) *Report {
	if len(flights) == 0 {
		return &Report{
			NoData:          true,
			Message:         noDataMessage,
			Recommendations: []Recommendation{},
		}
	}

	return &Report{
		Summary:         buildSummary(flights),
		Price:           buildPriceInsights(flights),
		Demand:          buildDemandInsights(flights),
		Routes:          buildRouteInsights(flights),
		Trends:          buildTrendInsights(flights),
		Recommendations: buildRecommendations(flights),
	}
}

func buildSummary(flights []domain.Flight) Summary {
	prices := priceSlice(flights)
	min, max := minMax(prices)

	dist := PriceDistribution{}
	for _, p := range prices {
		switch {
		case p < 300:
			dist.Budget++
		case p < 500:
			dist.Economy++
		default:
			dist.Premium++
		}
	}

	s := Summary{
		TotalFlights:      len(flights),
		AveragePrice:      round2(stat.Mean(prices, nil)),
		PriceRange:        fmt.Sprintf("$%.0f - $%.0f", min, max),
		PopularRoutes:     aggregate.TopN(aggregate.GroupReduce(flights, routeKey, nil, aggregate.Count), 3),
		PopularAirlines:   aggregate.TopN(aggregate.GroupReduce(flights, airlineKey, nil, aggregate.Count), 3),
		PriceDistribution: dist,
	}

	if first, last, ok := dateRange(flights); ok {
		s.DataPeriod = fmt.Sprintf("%s to %s", first.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	return s
}

func buildPriceInsights(flights []domain.Flight) PriceInsights {
	p := PriceInsights{Present: true}

	if anyFlight(flights, func(f domain.Flight) bool { return f.HasDate() }) {
		byDay := roundEntries(aggregate.GroupReduce(flights, dayKey, price, aggregate.Mean))
		p.ExpensiveDays = aggregate.TopN(byDay, 3)
		p.CheapestDays = aggregate.BottomN(byDay, 3)
	}

	if anyFlight(flights, func(f domain.Flight) bool { return f.HasHour }) {
		byHour := roundEntries(aggregate.GroupReduce(flights, hourKey, price, aggregate.Mean))
		p.ExpensiveHours = aggregate.TopN(byHour, 3)
		p.CheapestHours = aggregate.BottomN(byHour, 3)
	}

	p.AirlinePricing = airlinePricing(flights)

	byRoute := roundEntries(aggregate.GroupReduce(flights, routeKey, price, aggregate.Mean))
	p.ExpensiveRoutes = aggregate.TopN(byRoute, 3)
	p.CheapestRoutes = aggregate.BottomN(byRoute, 3)

	p.PriceVolatility = aggregate.TopN(routeVolatility(flights), 5)

	return p
}

func buildDemandInsights(flights []domain.Flight) DemandInsights {
	d := DemandInsights{Present: true}

	if anyFlight(flights, func(f domain.Flight) bool { return f.HasDate() }) {
		byDay := aggregate.GroupReduce(flights, dayKey, nil, aggregate.Count)
		d.BusiestDays = aggregate.TopN(byDay, 3)
		d.QuietestDays = aggregate.BottomN(byDay, 3)

		weekend := 0
		dated := 0
		for _, f := range flights {
			if !f.HasDate() {
				continue
			}
			dated++
			if f.IsWeekend {
				weekend++
			}
		}
		if dated > 0 {
			d.WeekendRatio = round2(float64(weekend) / float64(dated))
			d.HasWeekendRatio = true
		}
	}

	if anyFlight(flights, func(f domain.Flight) bool { return f.HasHour }) {
		byHour := aggregate.GroupReduce(flights, hourKey, nil, aggregate.Count)
		d.PeakHours = aggregate.TopN(byHour, 5)
		d.OffPeakHours = aggregate.BottomN(byHour, 5)
	}

	d.AirlinePopularity = aggregate.TopN(aggregate.GroupReduce(flights, airlineKey, nil, aggregate.Count), -1)
	d.RoutePopularity = aggregate.TopN(aggregate.GroupReduce(flights, routeKey, nil, aggregate.Count), -1)

	return d
}

func buildRouteInsights(flights []domain.Flight) RouteInsights {
	byRoute := make(map[string][]domain.Flight)
	var order []string
	for _, f := range flights {
		if f.Route == "" {
			continue
		}
		if _, ok := byRoute[f.Route]; !ok {
			order = append(order, f.Route)
		}
		byRoute[f.Route] = append(byRoute[f.Route], f)
	}

	if len(order) == 0 {
		return RouteInsights{}
	}

	profiles := make(map[string]RouteProfile, len(order))
	for _, route := range order {
		rf := byRoute[route]
		prices := priceSlice(rf)
		min, max := minMax(prices)

		profile := RouteProfile{
			TotalFlights:    len(rf),
			AvgPrice:        round2(stat.Mean(prices, nil)),
			PriceRange:      fmt.Sprintf("$%.0f - $%.0f", min, max),
			PopularAirlines: aggregate.TopN(aggregate.GroupReduce(rf, airlineKey, nil, aggregate.Count), 3),
			WeekendRatio:    round2(weekendRatio(rf)),
		}
		if anyFlight(rf, func(f domain.Flight) bool { return f.HasHour }) {
			profile.PeakHours = aggregate.TopN(aggregate.GroupReduce(rf, hourKey, nil, aggregate.Count), 3)
		}
		if anyFlight(rf, func(f domain.Flight) bool { return f.HasDemand }) {
			sum, n := 0.0, 0
			for _, f := range rf {
				if f.HasDemand {
					sum += f.DemandScore
					n++
				}
			}
			profile.AvgDemandScore = round2(sum / float64(n))
			profile.HasDemandScore = true
		}
		profiles[route] = profile
	}

	return RouteInsights{Present: true, Order: order, Profiles: profiles}
}

func buildTrendInsights(flights []domain.Flight) TrendInsights {
	if !anyFlight(flights, func(f domain.Flight) bool { return f.HasDate() }) {
		return TrendInsights{}
	}

	type daily struct {
		sum   float64
		count int
	}
	byDate := make(map[string]*daily)
	var dates []string
	for _, f := range flights {
		if !f.HasDate() {
			continue
		}
		key := f.Date.Format("2006-01-02")
		d := byDate[key]
		if d == nil {
			d = &daily{}
			byDate[key] = d
			dates = append(dates, key)
		}
		d.sum += f.Price
		d.count++
	}
	sort.Strings(dates)

	prices := make([]float64, len(dates))
	counts := make([]float64, len(dates))
	for i, key := range dates {
		d := byDate[key]
		prices[i] = d.sum / float64(d.count)
		counts[i] = float64(d.count)
	}

	weekly := make(map[string]float64)
	weekSums := make(map[string]*daily)
	for _, f := range flights {
		if !f.HasDate() {
			continue
		}
		key := strconv.Itoa(f.ISOWeek())
		w := weekSums[key]
		if w == nil {
			w = &daily{}
			weekSums[key] = w
		}
		w.sum += f.Price
		w.count++
	}
	for key, w := range weekSums {
		weekly[key] = round2(w.sum / float64(w.count))
	}

	return TrendInsights{
		Present:            true,
		PriceTrend:         trend.Classify(prices),
		DemandTrend:        trend.Classify(counts),
		WeeklyPricePattern: weekly,
	}
}

func buildRecommendations(flights []domain.Flight) []Recommendation {
	recs := []Recommendation{}

	avgPrice := stat.Mean(priceSlice(flights), nil)
	if avgPrice > 400 {
		recs = append(recs, Recommendation{
			Type:        "price",
			Title:       "High Average Prices",
			Description: fmt.Sprintf("Average ticket price is $%.0f. Consider booking during off-peak hours or weekdays for better deals.", avgPrice),
			Priority:    "medium",
		})
	}

	if anyFlight(flights, func(f domain.Flight) bool { return f.HasDate() }) {
		ratio := weekendRatio(flights)
		if ratio > 0.6 {
			recs = append(recs, Recommendation{
				Type:        "demand",
				Title:       "Weekend Travel Dominance",
				Description: fmt.Sprintf("%.0f%% of flights are on weekends. Consider weekday travel for lower prices and less competition.", ratio*100),
				Priority:    "high",
			})
		}
	}

	routePrices := aggregate.GroupReduce(flights, routeKey, price, aggregate.Mean)
	for _, e := range aggregate.TopN(routePrices, 2) {
		recs = append(recs, Recommendation{
			Type:        "route",
			Title:       fmt.Sprintf("Expensive Route: %s", e.Key),
			Description: fmt.Sprintf("Average price for %s is $%.0f. Consider alternative routes or booking well in advance.", e.Key, e.Value),
			Priority:    "medium",
		})
	}

	airlinePrices := aggregate.GroupReduce(flights, airlineKey, price, aggregate.Mean)
	if cheapest := aggregate.BottomN(airlinePrices, 1); len(cheapest) > 0 {
		recs = append(recs, Recommendation{
			Type:        "airline",
			Title:       "Best Value Airline",
			Description: fmt.Sprintf("%s offers the lowest average prices at $%.0f.", cheapest[0].Key, cheapest[0].Value),
			Priority:    "high",
		})
	}

	return recs
}

// Accessors shared with the aggregate package conventions.

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

func price(f domain.Flight) float64 { return f.Price }

func priceSlice(flights []domain.Flight) []float64 {
	out := make([]float64, len(flights))
	for i, f := range flights {
		out[i] = f.Price
	}
	return out
}

func airlinePricing(flights []domain.Flight) map[string]AirlinePricing {
	means := aggregate.GroupReduce(flights, airlineKey, price, aggregate.Mean)
	counts := aggregate.EntryMap(aggregate.GroupReduce(flights, airlineKey, nil, aggregate.Count))

	out := make(map[string]AirlinePricing, len(means))
	for _, e := range means {
		out[e.Key] = AirlinePricing{Mean: round2(e.Value), Count: int(counts[e.Key])}
	}
	return out
}

// routeVolatility computes the sample standard deviation of fares per route.
// Single-flight routes have no deviation and are skipped.
func routeVolatility(flights []domain.Flight) []aggregate.Entry {
	byRoute := make(map[string][]float64)
	var order []string
	for _, f := range flights {
		if f.Route == "" {
			continue
		}
		if _, ok := byRoute[f.Route]; !ok {
			order = append(order, f.Route)
		}
		byRoute[f.Route] = append(byRoute[f.Route], f.Price)
	}

	out := make([]aggregate.Entry, 0, len(order))
	for _, route := range order {
		prices := byRoute[route]
		if len(prices) < 2 {
			continue
		}
		out = append(out, aggregate.Entry{Key: route, Value: round2(stat.StdDev(prices, nil))})
	}
	return out
}

func weekendRatio(flights []domain.Flight) float64 {
	if len(flights) == 0 {
		return 0
	}
	weekend := 0
	for _, f := range flights {
		if f.IsWeekend {
			weekend++
		}
	}
	return float64(weekend) / float64(len(flights))
}

func anyFlight(flights []domain.Flight, pred func(domain.Flight) bool) bool {
	for _, f := range flights {
		if pred(f) {
			return true
		}
	}
	return false
}

func dateRange(flights []domain.Flight) (first, last time.Time, ok bool) {
	for _, f := range flights {
		if !f.HasDate() {
			continue
		}
		if !ok || f.Date.Before(first) {
			first = f.Date
		}
		if !ok || f.Date.After(last) {
			last = f.Date
		}
		ok = true
	}
	return first, last, ok
}

func minMax(values []float64) (min, max float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func roundEntries(entries []aggregate.Entry) []aggregate.Entry {
	for i := range entries {
		entries[i].Value = round2(entries[i].Value)
	}
	return entries
}
