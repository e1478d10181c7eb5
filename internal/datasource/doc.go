// Package datasource acquires raw booking records, either from a
// configured external flight API or from a synthetic generator that
// mirrors the live feed's shape. The generator takes an injected random
// source so demo datasets and tests are reproducible.
package datasource
