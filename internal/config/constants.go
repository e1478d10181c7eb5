package config

// Domestic market reference data for the Australian network. These tables are
// deliberately static: the analytics only need rough great-circle distances
// and a stable airport/airline universe for the sample generator.

// Airports maps IATA codes to city names for the covered network.
var Airports = map[string]string{
	"SYD": "Sydney",
	"MEL": "Melbourne",
	"BNE": "Brisbane",
	"PER": "Perth",
	"ADL": "Adelaide",
	"CBR": "Canberra",
	"DRW": "Darwin",
	"HBA": "Hobart",
	"CNS": "Cairns",
	"TSV": "Townsville",
}

// Airlines lists the major domestic carriers.
var Airlines = []string{"Qantas", "Virgin Australia", "Jetstar", "Rex", "Tigerair"}

// RouteDistances maps "ORIGIN-DEST" route strings to distance in kilometres.
// Routes absent from this table have no known distance; distance-derived
// features are skipped for them.
var RouteDistances = map[string]float64{
	"SYD-MEL": 713, "MEL-SYD": 713,
	"SYD-BNE": 732, "BNE-SYD": 732,
	"SYD-PER": 3291, "PER-SYD": 3291,
	"SYD-ADL": 1165, "ADL-SYD": 1165,
	"SYD-CBR": 244, "CBR-SYD": 244,
	"MEL-BNE": 1370, "BNE-MEL": 1370,
	"MEL-PER": 2708, "PER-MEL": 2708,
	"MEL-ADL": 640, "ADL-MEL": 640,
	"BNE-PER": 3605, "PER-BNE": 3605,
	"BNE-ADL": 1600, "ADL-BNE": 1600,
	"PER-ADL": 2125, "ADL-PER": 2125,
}

// SampleRoutes are the routes the synthetic data source draws from.
var SampleRoutes = []string{"SYD-MEL", "MEL-SYD", "SYD-BNE", "BNE-SYD", "MEL-BNE", "BNE-MEL"}

// SampleBasePrices holds the reference fare per sample route; the generator
// adds bounded noise on top.
var SampleBasePrices = map[string]float64{
	"SYD-MEL": 300, "MEL-SYD": 300,
	"SYD-BNE": 350, "BNE-SYD": 350,
	"MEL-BNE": 400, "BNE-MEL": 400,
}
