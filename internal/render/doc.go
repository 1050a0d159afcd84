// Package render turns a daily.Report into the static dashboard page.
package render
