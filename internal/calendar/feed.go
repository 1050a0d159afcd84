package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
)

const (
	productID = "-//skydaily//event clock//ZH-TW"
	feedName  = "Sky 每日事件"
	uidDomain = "skydaily"
)

// Feed accumulates events into one calendar.
type Feed struct {
	cal   *ical.Calendar
	stamp time.Time
}

// NewFeed starts an empty calendar; stamp becomes every event's DTSTAMP.
func NewFeed(stamp time.Time) *Feed {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(feedName)
	cal.SetXWRTimezone(stamp.Location().String())
	return &Feed{cal: cal, stamp: stamp}
}

// AddClock adds every clock occurrence for days calendar days from from.
func (f *Feed) AddClock(from time.Time, days int, events []clock.EventDefinition) error {
	if err := clock.ValidateEvents(events); err != nil {
		return err
	}
	slots, err := clock.Schedule(from, days, events)
	if err != nil {
		return fmt.Errorf("building schedule: %w", err)
	}

	for _, slot := range slots {
		ev := f.cal.AddEvent(SlotUID(slot))
		ev.SetDtStampTime(f.stamp)
		ev.SetStartAt(slot.Start)
		ev.SetEndAt(slot.End)
		ev.SetSummary(daily.EventLabel(slot.Event))
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}
	return nil
}

// AddShard adds the eruption windows of a shard day. No-shard and forecast
// records without eruption times add nothing.
func (f *Feed) AddShard(s *daily.Shard) {
	if s == nil || s.NoShard {
		return
	}

	summary := "碎石 " + s.Type.Label()
	if s.Map != "" {
		summary += " @ " + s.Map
	}

	for _, e := range s.Eruptions {
		ev := f.cal.AddEvent(fmt.Sprintf("shard-%s@%s", e.Start.Format(time.RFC3339), uidDomain))
		ev.SetDtStampTime(f.stamp)
		ev.SetStartAt(e.Start)
		ev.SetEndAt(e.End)
		ev.SetSummary(summary)
		if desc := shardDescription(s); desc != "" {
			ev.SetDescription(desc)
		}
		if s.Map != "" {
			ev.SetLocation(s.Map)
		}
	}
}

func shardDescription(s *daily.Shard) string {
	var lines []string
	if s.Rewards != "" {
		lines = append(lines, "獎勵: "+s.Rewards)
	}
	if s.ImageURL != "" {
		lines = append(lines, s.ImageURL)
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of events in the feed.
func (f *Feed) Len() int {
	return len(f.cal.Events())
}

// Bytes serializes the calendar.
func (f *Feed) Bytes() []byte {
	return []byte(f.cal.Serialize())
}

// SlotUID is the stable UID of a clock occurrence.
func SlotUID(slot clock.Slot) string {
	return fmt.Sprintf("%s-%s@%s", slot.Event, slot.Start.Format(time.RFC3339), uidDomain)
}

// ClockFeed returns a calendar with the clock occurrences of days calendar
// days starting at from's date.
func ClockFeed(from time.Time, days int, events []clock.EventDefinition) ([]byte, error) {
	f := NewFeed(from)
	if err := f.AddClock(from, days, events); err != nil {
		return nil, err
	}
	return f.Bytes(), nil
}
