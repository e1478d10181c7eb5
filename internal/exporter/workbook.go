package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"flightpulse/internal/aggregate"
	"flightpulse/internal/insights"
)

// WorkbookExporter renders the analysis as an XLSX workbook.
type WorkbookExporter struct{}

// NewWorkbookExporter creates a workbook exporter.
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Write builds the workbook and streams it: a Summary sheet, one sheet per
// available heatmap view, and a Recommendations sheet.
func (e *WorkbookExporter) Write(w io.Writer, report *insights.Report, views aggregate.ViewSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, report); err != nil {
		return err
	}

	for _, name := range views.AvailableViews {
		view := views.Options[name]
		if err := writeViewSheet(f, view); err != nil {
			return err
		}
	}

	if err := writeRecommendationsSheet(f, report.Recommendations); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *insights.Report) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
	}

	if report.NoData {
		rows = append(rows, []interface{}{"Status", report.Message})
	} else {
		s := report.Summary
		rows = append(rows,
			[]interface{}{"Total Flights", s.TotalFlights},
			[]interface{}{"Average Price", s.AveragePrice},
			[]interface{}{"Price Range", s.PriceRange},
			[]interface{}{"Data Period", s.DataPeriod},
			[]interface{}{"Budget Flights", s.PriceDistribution.Budget},
			[]interface{}{"Economy Flights", s.PriceDistribution.Economy},
			[]interface{}{"Premium Flights", s.PriceDistribution.Premium},
		)
		for _, e := range s.PopularRoutes {
			rows = append(rows, []interface{}{"Popular Route: " + e.Key, int(e.Value)})
		}
		for _, e := range s.PopularAirlines {
			rows = append(rows, []interface{}{"Popular Airline: " + e.Key, int(e.Value)})
		}
		if report.Trends.Present {
			rows = append(rows,
				[]interface{}{"Price Trend", string(report.Trends.PriceTrend)},
				[]interface{}{"Demand Trend", string(report.Trends.DemandTrend)},
			)
		}
	}

	return writeRows(f, "Summary", rows)
}

// sheetNames maps view identifiers to Excel-safe sheet titles.
var sheetNames = map[string]string{
	aggregate.ViewFlightCount:   "Flight Count",
	aggregate.ViewPrice:         "Avg Price",
	aggregate.ViewDemandScore:   "Demand Score",
	aggregate.ViewRouteAirline:  "Route x Airline",
	aggregate.ViewRouteDayPrice: "Route x Day Price",
	aggregate.ViewWeekend:       "Weekend vs Weekday",
}

func writeViewSheet(f *excelize.File, view aggregate.View) error {
	name, ok := sheetNames[view.Name]
	if !ok {
		name = view.Name
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	header := make([]interface{}, 0, len(view.Matrix.ColKeys)+1)
	header = append(header, view.Labels.Y+" \\ "+view.Labels.X)
	for _, ck := range view.Matrix.ColKeys {
		header = append(header, ck)
	}

	rows := [][]interface{}{header}
	for i, rk := range view.Matrix.RowKeys {
		row := make([]interface{}, 0, len(view.Matrix.ColKeys)+1)
		row = append(row, rk)
		for _, v := range view.Matrix.Cells[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	return writeRows(f, name, rows)
}

func writeRecommendationsSheet(f *excelize.File, recs []insights.Recommendation) error {
	if _, err := f.NewSheet("Recommendations"); err != nil {
		return fmt.Errorf("failed to create recommendations sheet: %w", err)
	}

	rows := [][]interface{}{{"Type", "Title", "Description", "Priority"}}
	for _, r := range recs {
		rows = append(rows, []interface{}{r.Type, r.Title, r.Description, r.Priority})
	}
	return writeRows(f, "Recommendations", rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
