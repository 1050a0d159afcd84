package clock

import (
	"fmt"
	"time"
)

// scanHours bounds the forward search. Any 24-hour window contains twelve
// hours of each parity, so a definition with a valid minute always matches.
const scanHours = 24

// Occurrence is the prediction for one event relative to a point in time.
type Occurrence struct {
	Name string
	// Next is the occurrence anchor: the upcoming trigger time, or the start
	// of the window that is currently open.
	Next time.Time
	End  time.Time

	Active bool

	// Countdown is the time left until Next, or until End while Active.
	Countdown time.Duration
}

// SecondsUntil returns Countdown in whole seconds.
func (o Occurrence) SecondsUntil() int {
	return int(o.Countdown / time.Second)
}

// Predict computes the occurrence of every event relative to now. Events
// without a match inside the scan window are left out of the result.
func Predict(now time.Time, events []EventDefinition) map[string]Occurrence {
	parity := RequiredParity(now)

	out := make(map[string]Occurrence, len(events))
	for _, ev := range events {
		if occ, ok := scan(now, parity, ev); ok {
			out[ev.Name] = occ
		}
	}
	return out
}

// scan steps over wall-clock hours, so a zone's own clock change never shifts
// an occurrence onto an hour of the wrong parity.
func scan(now time.Time, parity int, ev EventDefinition) (Occurrence, bool) {
	for i := 0; i < scanHours; i++ {
		if ((now.Hour()+i)%24)%2 != parity {
			continue
		}

		target := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+i, ev.MinuteOfHour, 0, 0, now.Location())
		// Hours skipped by a spring-forward normalize onto the next hour.
		if target.Hour()%2 != parity {
			continue
		}
		end := target.Add(ev.Duration)

		if target.After(now) {
			return Occurrence{Name: ev.Name, Next: target, End: end, Countdown: target.Sub(now)}, true
		}
		if now.Before(end) {
			return Occurrence{Name: ev.Name, Next: target, End: end, Active: true, Countdown: end.Sub(now)}, true
		}
	}
	return Occurrence{}, false
}

// LegacyTime is the string form consumed by older dashboards.
type LegacyTime struct {
	Next      string `json:"next"`
	Countdown string `json:"countdown"`
}

// Legacy converts predictions to {next: "HH:MM", countdown: "{h}小時 {m}分 {s}秒"}.
func Legacy(occurrences map[string]Occurrence) map[string]LegacyTime {
	out := make(map[string]LegacyTime, len(occurrences))
	for name, occ := range occurrences {
		out[name] = LegacyTime{
			Next:      occ.Next.Format("15:04"),
			Countdown: FormatCountdown(occ.Countdown),
		}
	}
	return out
}

// FormatCountdown renders d as "{h}小時 {m}分 {s}秒".
func FormatCountdown(d time.Duration) string {
	total := int(d / time.Second)
	return fmt.Sprintf("%d小時 %d分 %d秒", total/3600, (total%3600)/60, total%60)
}
