// Package calendar builds the iCalendar feed published next to the dashboard.
//
// The feed lists every occurrence of the recurring clock events for a number
// of days and, when known, today's shard eruption windows, so players can
// subscribe from any calendar app.
package calendar
