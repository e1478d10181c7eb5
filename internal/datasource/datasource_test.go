package datasource

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightpulse/internal/config"
)

func window() (time.Time, time.Time) {
	from, _ := time.Parse("2006-01-02", "2025-06-16")
	return from, from.AddDate(0, 0, 6)
}

func TestSampleGenerator_Reproducible(t *testing.T) {
	from, to := window()

	a := NewSampleGenerator(rand.NewSource(42)).Generate("SYD", "MEL", from, to)
	b := NewSampleGenerator(rand.NewSource(42)).Generate("SYD", "MEL", from, to)

	assert.Equal(t, a, b)
}

func TestSampleGenerator_Bounds(t *testing.T) {
	from, to := window()
	records := NewSampleGenerator(rand.NewSource(1)).Generate("SYD", "MEL", from, to)

	// 7 days, 3-8 flights each.
	assert.GreaterOrEqual(t, len(records), 21)
	assert.LessOrEqual(t, len(records), 56)

	for _, r := range records {
		dep, err := time.Parse("2006-01-02 15:04:05", r.DepartureTime)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, dep.Hour(), 6)
		assert.LessOrEqual(t, dep.Hour(), 22)

		require.NotNil(t, r.Price)
		// Base price 300 scaled by [0.7, 1.5).
		assert.GreaterOrEqual(t, *r.Price, 300*0.7)
		assert.Less(t, *r.Price, 300*1.5+1)

		assert.Equal(t, "SYD-MEL", r.Route)
		assert.GreaterOrEqual(t, r.TotalSeats, 150)
		assert.LessOrEqual(t, r.TotalSeats, 300)
		assert.LessOrEqual(t, r.AvailableSeats, r.TotalSeats)
		require.NotNil(t, r.DemandScore)
		assert.Greater(t, *r.DemandScore, 0.0)
	}
}

func TestSampleGenerator_NetworkCoversSampleRoutes(t *testing.T) {
	from, to := window()
	records := NewSampleGenerator(rand.NewSource(3)).GenerateNetwork(from, to)

	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.Route] = true
	}
	for _, route := range config.SampleRoutes {
		assert.True(t, seen[route], "missing route %s", route)
	}
	assert.Len(t, seen, len(config.SampleRoutes))
}

func TestSampleGenerator_InvertedRange(t *testing.T) {
	from, to := window()
	records := NewSampleGenerator(rand.NewSource(1)).Generate("SYD", "MEL", to, from)
	assert.Empty(t, records)
}

func TestDemandScore_Factors(t *testing.T) {
	saturday, _ := time.Parse("2006-01-02", "2025-06-21")
	monday, _ := time.Parse("2006-01-02", "2025-06-16")

	// Weekend peak-hour cheap flight scores highest.
	weekendPeak := demandScore(saturday, 8, 200)
	weekdayOffPeak := demandScore(monday, 22, 200)
	assert.Greater(t, weekendPeak, weekdayOffPeak)

	// Price factor floors at 0.5.
	expensive := demandScore(monday, 12, 5000)
	assert.InDelta(t, 1.1*0.5, expensive, 0.01)
}

func TestClient_NoAPIFallsBackToSample(t *testing.T) {
	cfg := config.DataSourceConfig{SampleEnabled: true, RPS: 10}
	c := NewClient(cfg, nil, NewSampleGenerator(rand.NewSource(7)), nil)

	from, to := window()
	records, source, err := c.FetchFlights(context.Background(), FetchRequest{
		Origin: "SYD", Destination: "MEL", DateFrom: from, DateTo: to,
	})

	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)
	assert.NotEmpty(t, records)
}

func TestClient_UnpinnedRequestSamplesWholeNetwork(t *testing.T) {
	cfg := config.DataSourceConfig{SampleEnabled: true, RPS: 10}
	c := NewClient(cfg, nil, NewSampleGenerator(rand.NewSource(7)), nil)

	from, to := window()
	records, source, err := c.FetchFlights(context.Background(), FetchRequest{DateFrom: from, DateTo: to})

	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)

	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.Route] = true
	}
	assert.Len(t, seen, len(config.SampleRoutes))
}

func TestClient_APISuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SYD", r.URL.Query().Get("dep_iata"))
		w.Write([]byte(`{"data":[{"flight_number":"QF400","airline":"Qantas","origin":"SYD","destination":"MEL","route":"SYD-MEL","departure_time":"2025-06-16 08:00:00","price":320,"total_seats":180,"available_seats":20}]}`))
	}))
	defer srv.Close()

	cfg := config.DataSourceConfig{BaseURL: srv.URL, SampleEnabled: true, RPS: 10, Timeout: 5 * time.Second}
	c := NewClient(cfg, srv.Client(), nil, nil)

	from, to := window()
	records, source, err := c.FetchFlights(context.Background(), FetchRequest{DateFrom: from, DateTo: to})

	require.NoError(t, err)
	assert.Equal(t, SourceAPI, source)
	require.Len(t, records, 1)
	assert.Equal(t, "QF400", records[0].FlightNumber)
	require.NotNil(t, records[0].Price)
	assert.Equal(t, 320.0, *records[0].Price)
}

func TestClient_APIFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := config.DataSourceConfig{BaseURL: srv.URL, SampleEnabled: true, RPS: 10, Timeout: 5 * time.Second}
	c := NewClient(cfg, srv.Client(), NewSampleGenerator(rand.NewSource(7)), nil)

	from, to := window()
	records, source, err := c.FetchFlights(context.Background(), FetchRequest{DateFrom: from, DateTo: to})

	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)
	assert.NotEmpty(t, records)
}

func TestClient_APIFailureWithoutSampleIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := config.DataSourceConfig{BaseURL: srv.URL, SampleEnabled: false, RPS: 10, Timeout: 5 * time.Second}
	c := NewClient(cfg, srv.Client(), nil, nil)

	_, _, err := c.FetchFlights(context.Background(), FetchRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestAvailableRoutes(t *testing.T) {
	routes := AvailableRoutes()

	// 10 airports, ordered pairs.
	assert.Len(t, routes, 90)
	assert.Contains(t, routes, "SYD-MEL")
	assert.Contains(t, routes, "MEL-SYD")
	assert.NotContains(t, routes, "SYD-SYD")
}
