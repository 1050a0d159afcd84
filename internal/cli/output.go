package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/skydaily/internal/build"
	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText   OutputFormat = "text"
	FormatJSON   OutputFormat = "json"
	FormatLegacy OutputFormat = "legacy"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatLegacy:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'legacy')", s)
	}
}

// ClockResult is the event clock at one instant.
type ClockResult struct {
	At       time.Time    `json:"at"`
	Timezone string       `json:"timezone"`
	Daylight bool         `json:"daylight"`
	Events   []ClockEvent `json:"events"`

	occurrences map[string]clock.Occurrence
}

// ClockEvent is one predicted event.
type ClockEvent struct {
	Name         string    `json:"name"`
	Label        string    `json:"label"`
	Next         time.Time `json:"next"`
	End          time.Time `json:"end"`
	Active       bool      `json:"active"`
	SecondsUntil int       `json:"seconds_until"`
	Countdown    string    `json:"countdown"`
}

// NewClockResult predicts every event at now.
func NewClockResult(now time.Time, events []clock.EventDefinition, order SortOrder) *ClockResult {
	occ := clock.Predict(now, events)
	result := &ClockResult{
		At:          now,
		Timezone:    now.Location().String(),
		Daylight:    clock.DaylightOn(now),
		occurrences: occ,
	}
	for _, o := range occ {
		result.Events = append(result.Events, ClockEvent{
			Name:         o.Name,
			Label:        daily.EventLabel(o.Name),
			Next:         o.Next,
			End:          o.End,
			Active:       o.Active,
			SecondsUntil: o.SecondsUntil(),
			Countdown:    clock.FormatCountdown(o.Countdown),
		})
	}
	sortClockEvents(result.Events, order)
	return result
}

// WriteClock writes the result in the specified format
func WriteClock(w io.Writer, result *ClockResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatLegacy:
		return writeJSON(w, clock.Legacy(result.occurrences))
	case FormatText:
		return writeClockText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func writeClockText(w io.Writer, result *ClockResult, verbose bool) error {
	season := "standard time"
	if result.Daylight {
		season = "daylight time"
	}
	fmt.Fprintf(w, "Event clock at %s (%s, %s)\n\n",
		result.At.Format("2006-01-02 15:04:05"), result.Timezone, season)

	if len(result.Events) == 0 {
		fmt.Fprintln(w, "No events configured.")
		return nil
	}

	for _, ev := range result.Events {
		if ev.Active {
			fmt.Fprintf(w, "  %s  ACTIVE until %s (%s left)\n", ev.Label, ev.End.Format("15:04"), ev.Countdown)
		} else {
			fmt.Fprintf(w, "  %s  next %s (in %s)\n", ev.Label, ev.Next.Format("15:04"), ev.Countdown)
		}
		if verbose {
			fmt.Fprintf(w, "       Window: %s - %s\n", ev.Next.Format(time.RFC3339), ev.End.Format(time.RFC3339))
			fmt.Fprintf(w, "       Seconds: %d\n", ev.SecondsUntil)
		}
	}
	return nil
}

// WriteBuildResult summarizes a finished build as human-readable text.
func WriteBuildResult(w io.Writer, result *build.Result, verbose bool) error {
	fmt.Fprintf(w, "Published: %s\n", strings.Join(result.Artifacts, ", "))

	report := result.Report
	if report.Shard != nil {
		fmt.Fprintf(w, "Shard: %s\n", shardSummary(report.Shard, report.GeneratedAt))
	} else {
		fmt.Fprintln(w, "Shard: unavailable")
	}
	if report.Dailies != nil {
		fmt.Fprintf(w, "Quests: %d\n", len(report.Dailies.Quests))
		if verbose {
			for i, q := range report.Dailies.Quests {
				fmt.Fprintf(w, "  %d. %s\n", i+1, q)
			}
		}
	} else {
		fmt.Fprintln(w, "Quests: unavailable")
	}

	if len(result.Changes) == 0 {
		fmt.Fprintln(w, "\nNo changes since last build.")
		return nil
	}

	fmt.Fprintf(w, "\nChanges (%d):\n", len(result.Changes))
	for _, c := range result.Changes {
		switch c.ChangeType {
		case "new":
			fmt.Fprintf(w, "  NEW %s: %s\n", c.Section, c.NewValue)
		case "changed":
			fmt.Fprintf(w, "  CHANGED %s: %s -> %s\n", c.Section, c.OldValue, c.NewValue)
		default:
			fmt.Fprintf(w, "  MISSING %s (was %s)\n", c.Section, c.OldValue)
		}
	}
	return nil
}

func shardSummary(s *daily.Shard, now time.Time) string {
	if s.NoShard {
		return s.Type.Label()
	}
	parts := []string{s.Type.Label()}
	if s.Map != "" {
		parts = append(parts, s.Map)
	}
	if line := daily.StatusLine(s, now); line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, " | ")
}
