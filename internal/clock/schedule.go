package clock

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

// Slot is one concrete occurrence of an event.
type Slot struct {
	Event string
	Start time.Time
	End   time.Time
}

// DaySchedule lists every occurrence of each event on the calendar date of
// day, in day's location, ordered by start time. Parity is fixed for a whole
// date, so each event recurs every two hours from the first qualifying hour.
func DaySchedule(day time.Time, events []EventDefinition) ([]Slot, error) {
	y, m, d := day.Date()
	loc := day.Location()
	parity := 0
	if IsDaylight(y, m, d) {
		parity = 1
	}
	until := time.Date(y, m, d, 23, 59, 59, 0, loc)

	slots := make([]Slot, 0, len(events)*12)
	for _, ev := range events {
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:     rrule.HOURLY,
			Interval: 2,
			Dtstart:  time.Date(y, m, d, parity, ev.MinuteOfHour, 0, 0, loc),
			Until:    until,
		})
		if err != nil {
			return nil, fmt.Errorf("building rule for %s: %w", ev.Name, err)
		}
		for _, start := range r.All() {
			slots = append(slots, Slot{Event: ev.Name, Start: start, End: start.Add(ev.Duration)})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots, nil
}

// Schedule concatenates DaySchedule for n consecutive dates starting at from.
func Schedule(from time.Time, days int, events []EventDefinition) ([]Slot, error) {
	var all []Slot
	for i := 0; i < days; i++ {
		slots, err := DaySchedule(from.AddDate(0, 0, i), events)
		if err != nil {
			return nil, err
		}
		all = append(all, slots...)
	}
	return all, nil
}
