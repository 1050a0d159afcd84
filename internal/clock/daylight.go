package clock

import "time"

// SecondSundayOfMarch returns the date daylight parity starts in the given year.
func SecondSundayOfMarch(year int) time.Time {
	return firstSunday(year, time.March).AddDate(0, 0, 7)
}

// FirstSundayOfNovember returns the first date daylight parity is no longer active.
func FirstSundayOfNovember(year int) time.Time {
	return firstSunday(year, time.November)
}

func firstSunday(year int, month time.Month) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// IsDaylight reports whether daylight parity is in effect on the given
// calendar date. Only the date matters; the 2 a.m. changeover is ignored.
func IsDaylight(year int, month time.Month, day int) bool {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return !d.Before(SecondSundayOfMarch(year)) && d.Before(FirstSundayOfNovember(year))
}

// DaylightOn evaluates IsDaylight for the calendar date of t in t's location.
func DaylightOn(t time.Time) bool {
	y, m, d := t.Date()
	return IsDaylight(y, m, d)
}

// RequiredParity returns the hour parity events use on t's date:
// 1 (odd hours) under daylight parity, 0 (even hours) otherwise.
func RequiredParity(t time.Time) int {
	if DaylightOn(t) {
		return 1
	}
	return 0
}
