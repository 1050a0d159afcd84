package daily

import (
	"sort"
	"time"

	"github.com/pfrederiksen/skydaily/internal/clock"
)

// StatusState classifies the shard day relative to now.
type StatusState string

const (
	StatusActive   StatusState = "active"
	StatusUpcoming StatusState = "upcoming"
	StatusEnded    StatusState = "ended"
	StatusUnknown  StatusState = "unknown"
)

// Status is the eruption that matters right now.
type Status struct {
	State     StatusState
	Window    *Eruption
	Remaining time.Duration
}

// ShardStatus finds the first open eruption, or else the first future one.
// When every window has passed the last one is reported as ended.
func ShardStatus(s *Shard, now time.Time) Status {
	if s == nil || len(s.Eruptions) == 0 {
		return Status{State: StatusUnknown}
	}

	eruptions := make([]Eruption, len(s.Eruptions))
	copy(eruptions, s.Eruptions)
	sortEruptions(eruptions)

	for i := range eruptions {
		e := eruptions[i]
		if !now.Before(e.Start) && !now.After(e.End) {
			return Status{State: StatusActive, Window: &e, Remaining: e.End.Sub(now)}
		}
		if now.Before(e.Start) {
			return Status{State: StatusUpcoming, Window: &e, Remaining: e.Start.Sub(now)}
		}
	}

	last := eruptions[len(eruptions)-1]
	return Status{State: StatusEnded, Window: &last}
}

// Label returns the dashboard status line.
func (s Status) Label() string {
	switch s.State {
	case StatusActive:
		return "進行中! 距離結束: " + clock.FormatCountdown(s.Remaining)
	case StatusUpcoming:
		return "距離開始: " + clock.FormatCountdown(s.Remaining)
	case StatusEnded:
		return "今日所有爆發已結束"
	default:
		return "無時間數據"
	}
}

// StatusLine is Label with the no-shard and forecast cases folded in.
func StatusLine(s *Shard, now time.Time) string {
	if s == nil {
		return ""
	}
	if s.NoShard {
		return ""
	}
	if s.IsForecast() {
		return "下一場: " + FormatForecastDate(s.ForecastDate)
	}
	return ShardStatus(s, now).Label()
}

// FormatForecastDate renders a forecast date as "2006年01月02日".
func FormatForecastDate(t time.Time) string {
	return t.Format("2006年01月02日")
}

func sortEruptions(eruptions []Eruption) {
	sort.SliceStable(eruptions, func(i, j int) bool {
		return eruptions[i].Start.Before(eruptions[j].Start)
	})
}
