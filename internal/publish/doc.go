// Package publish delivers built artifacts (the dashboard page and the
// calendar feed) to their destination.
//
// FilePublisher writes into the output directory, replacing each file
// atomically so a web server never serves a half-written page.
// DryRunPublisher only describes what would be written.
package publish
