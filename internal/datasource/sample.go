package datasource

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"flightpulse/internal/config"
	"flightpulse/pkg/contracts/domain"
)

// airlineCodes maps carriers to their flight-number prefixes.
var airlineCodes = map[string]string{
	"Qantas":           "QF",
	"Virgin Australia": "VA",
	"Jetstar":          "JQ",
	"Rex":              "ZL",
	"Tigerair":         "TT",
}

// airlineWeights biases carrier selection toward the larger operators.
var airlineWeights = []float64{0.4, 0.3, 0.2, 0.08, 0.02}

// SampleGenerator produces synthetic booking records shaped like the live
// feed: 3 to 8 flights per day, departures between 06:00 and 22:00, fares
// around the route's reference price, and a demand score combining weekend,
// time-of-day, and price factors. The random source is injected so tests
// and demo datasets are reproducible.
type SampleGenerator struct {
	rng *rand.Rand
}

// NewSampleGenerator creates a generator over the given source. A nil
// source gets a time-based seed.
func NewSampleGenerator(src rand.Source) *SampleGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &SampleGenerator{rng: rand.New(src)}
}

// Generate builds records for every day in [from, to]. An inverted range
// yields no records. Origin and destination default to the SYD-MEL city
// pair when empty.
func (g *SampleGenerator) Generate(origin, destination string, from, to time.Time) []domain.RawFlight {
	if origin == "" {
		origin = "SYD"
	}
	if destination == "" {
		destination = "MEL"
	}
	route := origin + "-" + destination

	var records []domain.RawFlight
	for day := from.Truncate(24 * time.Hour); !day.After(to); day = day.Add(24 * time.Hour) {
		numFlights := 3 + g.rng.Intn(6)
		for i := 0; i < numFlights; i++ {
			records = append(records, g.flight(route, origin, destination, day))
		}
	}
	return records
}

// GenerateNetwork builds records across every route in config.SampleRoutes
// for the same date range. This is the market-wide sample used when the
// caller does not pin a city pair.
func (g *SampleGenerator) GenerateNetwork(from, to time.Time) []domain.RawFlight {
	var records []domain.RawFlight
	for _, route := range config.SampleRoutes {
		origin, destination, ok := strings.Cut(route, "-")
		if !ok {
			continue
		}
		records = append(records, g.Generate(origin, destination, from, to)...)
	}
	return records
}

func (g *SampleGenerator) flight(route, origin, destination string, day time.Time) domain.RawFlight {
	hour := 6 + g.rng.Intn(17)
	minute := []int{0, 15, 30, 45}[g.rng.Intn(4)]
	departure := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	durationHours := 1 + g.rng.Intn(4)
	durationMinutes := g.rng.Intn(60)
	arrival := departure.Add(time.Duration(durationHours)*time.Hour + time.Duration(durationMinutes)*time.Minute)

	price := round2(basePrice(route) * (0.7 + 0.8*g.rng.Float64()))

	airline := g.pickAirline()
	totalSeats := 150 + g.rng.Intn(151)
	availableSeats := 10 + g.rng.Intn(totalSeats-9)
	demand := demandScore(day, hour, price)

	return domain.RawFlight{
		FlightNumber:   fmt.Sprintf("%s%d", airlineCodes[airline], 100+g.rng.Intn(9900)),
		Airline:        airline,
		Origin:         origin,
		Destination:    destination,
		Route:          route,
		DepartureTime:  departure.Format("2006-01-02 15:04:05"),
		ArrivalTime:    arrival.Format("2006-01-02 15:04:05"),
		Duration:       fmt.Sprintf("%dh %dm", durationHours, durationMinutes),
		Price:          &price,
		TotalSeats:     totalSeats,
		AvailableSeats: availableSeats,
		DemandScore:    &demand,
	}
}

func (g *SampleGenerator) pickAirline() string {
	r := g.rng.Float64()
	cum := 0.0
	for i, w := range airlineWeights {
		cum += w
		if r < cum {
			return config.Airlines[i]
		}
	}
	return config.Airlines[len(config.Airlines)-1]
}

// basePrice derives the reference fare from the route distance at $0.15/km,
// preferring the explicit sample fares where defined.
func basePrice(route string) float64 {
	if p, ok := config.SampleBasePrices[route]; ok {
		return p
	}
	if dist, ok := config.RouteDistances[route]; ok {
		return dist * 0.15
	}
	return 1000 * 0.15
}

// demandScore combines weekend, time-of-day, and price sensitivity factors.
func demandScore(day time.Time, hour int, price float64) float64 {
	weekendMult := 1.0
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		weekendMult = 1.3
	}

	var timeMult float64
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		timeMult = 1.4
	case hour >= 10 && hour <= 16:
		timeMult = 1.1
	default:
		timeMult = 0.8
	}

	priceFactor := 1.0 - (price-200)/1000
	if priceFactor < 0.5 {
		priceFactor = 0.5
	}

	return round2(weekendMult * timeMult * priceFactor)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
