package clock

import (
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"
)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPredict_NextOccurrence(t *testing.T) {
	tests := []struct {
		name       string
		now        string
		event      EventDefinition
		wantNext   string
		wantActive bool
		wantCount  time.Duration
	}{
		{
			name:      "standard time skips the passed even hour",
			now:       "2025-01-15T00:10:00",
			event:     EventDefinition{Name: "short", MinuteOfHour: 5, Duration: 5 * time.Minute},
			wantNext:  "2025-01-15T02:05:00",
			wantCount: time.Hour + 55*time.Minute,
		},
		{
			name:      "daylight odd hour still upcoming",
			now:       "2025-07-01T13:20:00",
			event:     EventDefinition{Name: "grandma", MinuteOfHour: 35, Duration: 10 * time.Minute},
			wantNext:  "2025-07-01T13:35:00",
			wantCount: 15 * time.Minute,
		},
		{
			name:      "daylight skips even hour",
			now:       "2025-07-01T14:00:00",
			event:     EventDefinition{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
			wantNext:  "2025-07-01T15:05:00",
			wantCount: time.Hour + 5*time.Minute,
		},
		{
			name:      "crosses midnight",
			now:       "2025-01-15T23:55:00",
			event:     EventDefinition{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
			wantNext:  "2025-01-16T00:05:00",
			wantCount: 10 * time.Minute,
		},
		{
			name:      "daylight crosses midnight to the first odd hour",
			now:       "2025-07-01T23:20:00",
			event:     EventDefinition{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
			wantNext:  "2025-07-02T01:05:00",
			wantCount: time.Hour + 45*time.Minute,
		},
		{
			name:       "window open",
			now:        "2025-01-15T00:10:00",
			event:      EventDefinition{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
			wantNext:   "2025-01-15T00:05:00",
			wantActive: true,
			wantCount:  5 * time.Minute,
		},
		{
			name:       "window open across midnight",
			now:        "2025-07-01T23:55:00",
			event:      EventDefinition{Name: "turtle", MinuteOfHour: 50, Duration: 10 * time.Minute},
			wantNext:   "2025-07-01T23:50:00",
			wantActive: true,
			wantCount:  5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict(at(tt.now), []EventDefinition{tt.event})

			occ, ok := got[tt.event.Name]
			if !ok {
				t.Fatalf("Predict() has no entry for %s", tt.event.Name)
			}
			if !occ.Next.Equal(at(tt.wantNext)) {
				t.Errorf("Next = %s, want %s", occ.Next.Format(time.RFC3339), tt.wantNext)
			}
			if occ.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", occ.Active, tt.wantActive)
			}
			if occ.Countdown != tt.wantCount {
				t.Errorf("Countdown = %s, want %s", occ.Countdown, tt.wantCount)
			}
			if !occ.End.Equal(occ.Next.Add(tt.event.Duration)) {
				t.Errorf("End = %s, want Next+%s", occ.End, tt.event.Duration)
			}
		})
	}
}

func TestPredict_WindowBounds(t *testing.T) {
	events := []EventDefinition{{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute}}

	t.Run("start is inclusive", func(t *testing.T) {
		occ := Predict(at("2025-01-15T02:05:00"), events)["geyser"]
		if !occ.Active {
			t.Fatal("expected geyser to be active at its trigger instant")
		}
		if occ.Countdown != 10*time.Minute {
			t.Errorf("Countdown = %s, want 10m", occ.Countdown)
		}
	})

	t.Run("end is exclusive", func(t *testing.T) {
		occ := Predict(at("2025-01-15T02:15:00"), events)["geyser"]
		if occ.Active {
			t.Fatal("expected geyser window to be closed at trigger+duration")
		}
		if !occ.Next.Equal(at("2025-01-15T04:05:00")) {
			t.Errorf("Next = %s, want 04:05", occ.Next.Format(time.RFC3339))
		}
	})

	t.Run("last second of window", func(t *testing.T) {
		occ := Predict(at("2025-01-15T02:14:59"), events)["geyser"]
		if !occ.Active || occ.SecondsUntil() != 1 {
			t.Errorf("Active = %v, SecondsUntil = %d, want true, 1", occ.Active, occ.SecondsUntil())
		}
	})
}

func TestPredict_DefaultTable(t *testing.T) {
	got := Predict(at("2025-01-15T00:10:00"), DefaultEvents())

	if len(got) != 3 {
		t.Fatalf("Predict() returned %d events, want 3", len(got))
	}

	want := map[string]string{
		"geyser":  "2025-01-15T00:05:00",
		"grandma": "2025-01-15T00:35:00",
		"turtle":  "2025-01-15T00:50:00",
	}
	for name, next := range want {
		if !got[name].Next.Equal(at(next)) {
			t.Errorf("%s: Next = %s, want %s", name, got[name].Next.Format(time.RFC3339), next)
		}
	}
	if !got["geyser"].Active || got["grandma"].Active || got["turtle"].Active {
		t.Error("expected only geyser to be active")
	}
}

func TestPredict_Deterministic(t *testing.T) {
	now := at("2025-03-09T17:42:13")
	first := Predict(now, DefaultEvents())
	second := Predict(now, DefaultEvents())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Predict() is not deterministic:\n%v\n%v", first, second)
	}
}

func TestPredict_OmitsUnmatchedEvents(t *testing.T) {
	events := []EventDefinition{
		{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute},
		// A full day in the past: every candidate has already closed.
		{Name: "broken", MinuteOfHour: -24 * 60, Duration: time.Minute},
	}

	got := Predict(at("2025-01-15T12:00:00"), events)

	if _, ok := got["broken"]; ok {
		t.Error("expected unmatched event to be omitted")
	}
	if _, ok := got["geyser"]; !ok {
		t.Error("expected geyser to be predicted")
	}
}

func TestPredict_HonorsLocation(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	// 2025-01-15 01:30 in Taipei is still 2025-01-14 in UTC; the local hour decides.
	now := time.Date(2025, 1, 15, 1, 30, 0, 0, taipei)

	occ := Predict(now, DefaultEvents())["geyser"]
	want := time.Date(2025, 1, 15, 2, 5, 0, 0, taipei)
	if !occ.Next.Equal(want) {
		t.Errorf("Next = %s, want %s", occ.Next, want)
	}
	if occ.Next.Location() != taipei {
		t.Errorf("Next location = %s, want %s", occ.Next.Location(), taipei)
	}
}

func TestPredict_ZoneClockChange(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	geyser := EventDefinition{Name: "geyser", MinuteOfHour: 5, Duration: 10 * time.Minute}

	tests := []struct {
		name      string
		now       time.Time
		wantHour  int
		wantCount time.Duration
	}{
		{
			name:      "fall back keeps even hours",
			now:       time.Date(2025, 11, 2, 0, 30, 0, 0, la),
			wantHour:  2,
			wantCount: 2*time.Hour + 35*time.Minute,
		},
		{
			name:      "spring forward keeps odd hours",
			now:       time.Date(2025, 3, 9, 1, 30, 0, 0, la),
			wantHour:  3,
			wantCount: 35 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ, ok := Predict(tt.now, []EventDefinition{geyser})["geyser"]
			if !ok {
				t.Fatal("no prediction")
			}
			if occ.Next.Hour() != tt.wantHour || occ.Next.Minute() != 5 {
				t.Errorf("Next = %s, want %02d:05", occ.Next, tt.wantHour)
			}
			if occ.Countdown != tt.wantCount {
				t.Errorf("Countdown = %v, want %v", occ.Countdown, tt.wantCount)
			}

			slots, err := DaySchedule(tt.now, []EventDefinition{geyser})
			if err != nil {
				t.Fatalf("DaySchedule() error = %v", err)
			}
			found := false
			for _, s := range slots {
				if s.Start.Equal(occ.Next) {
					found = true
				}
			}
			if !found {
				t.Errorf("Next %s is not in the day schedule", occ.Next)
			}
		})
	}
}

func TestLegacy(t *testing.T) {
	events := []EventDefinition{{Name: "short", MinuteOfHour: 5, Duration: 5 * time.Minute}}
	got := Legacy(Predict(at("2025-01-15T00:10:00"), events))

	want := LegacyTime{Next: "02:05", Countdown: "1小時 55分 0秒"}
	if got["short"] != want {
		t.Errorf("Legacy() = %+v, want %+v", got["short"], want)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0小時 0分 0秒"},
		{59 * time.Second, "0小時 0分 59秒"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1小時 2分 3秒"},
		{25*time.Hour + 1500*time.Millisecond, "25小時 0分 1秒"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.d); got != tt.want {
			t.Errorf("FormatCountdown(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestValidateEvents(t *testing.T) {
	tests := []struct {
		name    string
		events  []EventDefinition
		wantErr bool
	}{
		{"defaults", DefaultEvents(), false},
		{"empty name", []EventDefinition{{MinuteOfHour: 1, Duration: time.Minute}}, true},
		{"minute too large", []EventDefinition{{Name: "x", MinuteOfHour: 60, Duration: time.Minute}}, true},
		{"negative minute", []EventDefinition{{Name: "x", MinuteOfHour: -1, Duration: time.Minute}}, true},
		{"zero duration", []EventDefinition{{Name: "x", MinuteOfHour: 0}}, true},
		{"duplicate", []EventDefinition{
			{Name: "x", MinuteOfHour: 0, Duration: time.Minute},
			{Name: "x", MinuteOfHour: 30, Duration: time.Minute},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvents(tt.events)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEvents() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
