package cli

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByTime SortOrder = "time"
	SortByName SortOrder = "name"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortByTime, SortByName:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'time' or 'name')", s)
	}
}

// sortClockEvents sorts events based on the specified sort order
func sortClockEvents(events []ClockEvent, order SortOrder) {
	switch order {
	case SortByName:
		sort.Slice(events, func(i, j int) bool {
			return events[i].Name < events[j].Name
		})
	default:
		sort.Slice(events, func(i, j int) bool {
			return compareByTime(events[i], events[j])
		})
	}
}

// compareByTime orders active events first, then by the time the event next
// changes state, then by name.
func compareByTime(i, j ClockEvent) bool {
	if i.Active != j.Active {
		return i.Active
	}
	if i.SecondsUntil != j.SecondsUntil {
		return i.SecondsUntil < j.SecondsUntil
	}
	return i.Name < j.Name
}
