package daily

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var meridiemPattern = regexp.MustCompile(`^(上午|下午)?\s*(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseMeridiemTime parses "上午HH:MM[:SS]" / "下午HH:MM[:SS]" (or plain 24h
// "HH:MM") into a time on day's calendar date in day's location.
func ParseMeridiemTime(text string, day time.Time) (time.Time, error) {
	m := meridiemPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized time: %q", text)
	}

	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	second := 0
	if m[4] != "" {
		second, _ = strconv.Atoi(m[4])
	}

	switch m[1] {
	case "下午":
		if hour < 12 {
			hour += 12
		}
	case "上午":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("time out of range: %q", text)
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, day.Location()), nil
}

// To24h converts a meridiem time to "HH:MM".
func To24h(text string) (string, error) {
	t, err := ParseMeridiemTime(text, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}

// ParseEruption parses a "start - end" range on the given day. A window
// whose end is earlier than its start ends on the following day.
func ParseEruption(rangeText string, day time.Time) (Eruption, error) {
	parts := strings.Split(rangeText, "-")
	if len(parts) != 2 {
		return Eruption{}, fmt.Errorf("unrecognized range: %q", rangeText)
	}

	startText := strings.TrimSpace(parts[0])
	endText := strings.TrimSpace(parts[1])

	start, err := ParseMeridiemTime(startText, day)
	if err != nil {
		return Eruption{}, fmt.Errorf("parsing start: %w", err)
	}
	end, err := ParseMeridiemTime(endText, day)
	if err != nil {
		return Eruption{}, fmt.Errorf("parsing end: %w", err)
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}

	return Eruption{StartText: startText, EndText: endText, Start: start, End: end}, nil
}

// ParseEruptions parses every well-formed range, skipping the rest, and
// returns them ordered by start time.
func ParseEruptions(ranges []string, day time.Time) []Eruption {
	out := make([]Eruption, 0, len(ranges))
	for _, r := range ranges {
		e, err := ParseEruption(r, day)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	sortEruptions(out)
	return out
}
