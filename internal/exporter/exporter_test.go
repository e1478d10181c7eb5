package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/insights"
	"flightpulse/pkg/contracts/domain"
)

func sampleFlight() domain.Flight {
	d, _ := time.Parse("2006-01-02", "2025-06-16")
	return domain.Flight{
		FlightNumber:  "QF400",
		Airline:       "Qantas",
		Origin:        "SYD",
		Destination:   "MEL",
		Route:         "SYD-MEL",
		Date:          d,
		DepartureTime: d.Add(8 * time.Hour),
		DayOfWeek:     "Monday",
		Hour:          8,
		HasHour:       true,
		Price:         300,
		PriceCategory: domain.PriceCategoryEconomy,
		Season:        "Winter",
		RouteDistance: 713,
		HasDistance:   true,
		PricePerKm:    0.42,
		PeakHour:      domain.PeakHourPeak,
	}
}

func TestWriteFlights(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter().WriteFlights(&buf, []domain.Flight{sampleFlight()})
	require.NoError(t, err)

	content := buf.String()
	assert.True(t, strings.HasPrefix(content, string([]byte{0xEF, 0xBB, 0xBF})))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(content, string([]byte{0xEF, 0xBB, 0xBF}))))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, flightHeaders, rows[0])
	assert.Equal(t, "QF400", rows[1][0])
	assert.Equal(t, "300.00", rows[1][6])
	assert.Equal(t, "8", rows[1][9])
}

func TestWriteFlights_MissingFieldsLeftEmpty(t *testing.T) {
	f := domain.Flight{FlightNumber: "VA1", Airline: "Virgin Australia", Route: "SYD-LAX", Price: 500}

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().WriteFlights(&buf, []domain.Flight{f}))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), string(utf8BOM))))
	rows, err := r.ReadAll()
	require.NoError(t, err)

	row := rows[1]
	assert.Empty(t, row[5])  // departure_time
	assert.Empty(t, row[9])  // hour
	assert.Empty(t, row[11]) // occupancy_rate
	assert.Empty(t, row[13]) // route_distance
	assert.Empty(t, row[17]) // demand_score
}

func TestWriteRecommendations(t *testing.T) {
	recs := []insights.Recommendation{
		{Type: "price", Title: "High Average Prices", Description: "desc", Priority: "medium"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().WriteRecommendations(&buf, recs))

	assert.Contains(t, buf.String(), "High Average Prices")
	assert.Contains(t, buf.String(), "medium")
}

func TestWorkbook_SheetsPresent(t *testing.T) {
	flights := []domain.Flight{sampleFlight()}
	report := insights.Generate(flights)
	views := aggregate.BuildViews(flights)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbookExporter().Write(&buf, report, views))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Flight Count")
	assert.Contains(t, sheets, "Avg Price")
	assert.Contains(t, sheets, "Recommendations")

	val, err := f.GetCellValue("Summary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Total Flights", val)
}

func TestWorkbook_NoData(t *testing.T) {
	report := insights.Generate(nil)
	views := aggregate.BuildViews(nil)

	var buf bytes.Buffer
	require.NoError(t, NewWorkbookExporter().Write(&buf, report, views))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	val, err := f.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "No data available for analysis", val)
}
