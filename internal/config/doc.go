// Package config provides centralized configuration for the flightpulse
// service. Configuration is loaded from environment variables with the
// FLIGHTPULSE prefix, with an optional YAML file overlay (config.yaml or
// $FLIGHTPULSE_CONFIG); environment variables always win.
//
// The package also carries the static domain reference data: the airport
// universe, carrier list and route distance table used by the feature
// pipeline and the sample data generator.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
