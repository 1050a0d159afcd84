// Package cli implements the command-line interface for skydaily.
//
// The cli package provides the Cobra-based commands: build renders and
// publishes the dashboard once, clock prints the event clock (text, JSON or
// the legacy string form), ics writes the event calendar and serve runs the
// HTTP server with cron-driven rebuilds. Every command loads the YAML config,
// applies .env and SKYDAILY_* overrides and then its own flags.
package cli
