package clock

import (
	"fmt"
	"time"
)

// EventDefinition describes one recurring event.
type EventDefinition struct {
	Name         string
	MinuteOfHour int
	Duration     time.Duration
}

// DefaultEvents returns the built-in event table.
func DefaultEvents() []EventDefinition {
	return []EventDefinition{
		{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
		{Name: "grandma", MinuteOfHour: 35, Duration: 10 * time.Minute},
		{Name: "turtle", MinuteOfHour: 50, Duration: 10 * time.Minute},
	}
}

// Validate checks the definition's bounds.
func (e EventDefinition) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("event name is empty")
	}
	if e.MinuteOfHour < 0 || e.MinuteOfHour > 59 {
		return fmt.Errorf("event %s: minute %d out of range [0,59]", e.Name, e.MinuteOfHour)
	}
	if e.Duration <= 0 {
		return fmt.Errorf("event %s: duration must be positive", e.Name)
	}
	return nil
}

// ValidateEvents validates every definition and rejects duplicate names.
func ValidateEvents(events []EventDefinition) error {
	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return err
		}
		if seen[ev.Name] {
			return fmt.Errorf("duplicate event name: %s", ev.Name)
		}
		seen[ev.Name] = true
	}
	return nil
}
