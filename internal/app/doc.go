// Package app wires the application together: configuration, logging,
// metrics, the data source client, the narrative analyzer, the analytics
// service, and the HTTP router with its middleware chain. It owns the
// server lifecycle including graceful shutdown on SIGINT/SIGTERM.
package app
