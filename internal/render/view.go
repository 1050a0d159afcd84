package render

import (
	"sort"
	"time"

	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
)

type page struct {
	Title       string
	CalendarURL string
	Updated     string

	Shard    *shardView
	Quests   []string
	Dailies  bool
	Treasure *candleView
	Seasonal *candleView
	Events   []eventView

	// ShardTimes holds the eruption windows as "HH:MM-HH:MM" for the script.
	ShardTimes []string
	// EventSlots holds each event's unfinished occurrences so the script can
	// roll over to the next one without a reload.
	EventSlots map[string][]slotView
}

type shardView struct {
	Badge      string
	BadgeClass string
	Date       string
	Map        string
	Rewards    string
	Status     string
	Ranges     []string
	Times      []string
	ImageURL   string
	NoShard    bool
	Forecast   string
}

type candleView struct {
	Title    string
	Subtitle string
	Pairs    []candlePair
	Images   []string
	Notes    []string
	Missing  bool
}

type candlePair struct {
	Image string
	Note  string
}

type eventView struct {
	Name    string
	Label   string
	Next    string
	Seconds int
	Active  bool
	Today   []string

	// NextMillis and EndMillis bound the shown occurrence in Unix milliseconds.
	NextMillis int64
	EndMillis  int64

	at time.Time
}

type slotView struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	At    string `json:"at"`
}

func buildPage(r *daily.Report, opts Options) page {
	now := r.GeneratedAt
	p := page{
		Title:       opts.Title,
		CalendarURL: opts.CalendarURL,
		Updated:     now.Format("2006-01-02 15:04:05"),
	}
	if p.Title == "" {
		p.Title = DefaultTitle
	}

	if r.Shard != nil {
		p.Shard = shardCard(r.Shard, now)
		if !r.Shard.NoShard && !r.Shard.IsForecast() {
			p.ShardTimes = p.Shard.Times
		}
	}

	if r.Dailies != nil {
		p.Dailies = true
		p.Quests = r.Dailies.Quests
		p.Treasure = candleCard("大蠟燭 (Treasure)", r.Dailies.Treasure)
		p.Seasonal = candleCard("季節蠟燭 (Seasonal)", r.Dailies.Seasonal)
	}

	p.Events = eventRows(r.Clock, r.Schedule, now)
	p.EventSlots = pendingSlots(r.Schedule, now)
	return p
}

func shardCard(s *daily.Shard, now time.Time) *shardView {
	v := &shardView{
		Badge:    s.Type.Label(),
		Date:     s.Date,
		Map:      s.Map,
		Rewards:  s.Rewards,
		Status:   daily.StatusLine(s, now),
		ImageURL: s.ImageURL,
		NoShard:  s.NoShard,
	}
	switch s.Type {
	case daily.ShardRed:
		v.BadgeClass = "red"
	case daily.ShardBlack:
		v.BadgeClass = "black"
	default:
		v.BadgeClass = "none"
	}
	if s.IsForecast() {
		v.Forecast = daily.FormatForecastDate(s.ForecastDate)
	}
	for _, e := range s.Eruptions {
		v.Ranges = append(v.Ranges, e.Range())
		v.Times = append(v.Times, e.Start.Format("15:04")+"-"+e.End.Format("15:04"))
	}
	return v
}

// candleCard pairs images with notes only when their counts match.
func candleCard(title string, c *daily.Candles) *candleView {
	if c == nil {
		return &candleView{Title: title, Missing: true}
	}
	v := &candleView{
		Title:    title,
		Subtitle: daily.RealmLabel(c.Realm),
	}
	if c.Rotation != "" {
		v.Subtitle += " | " + c.Rotation
	}
	if len(c.Images) > 0 && len(c.Images) == len(c.Descriptions) {
		for i := range c.Images {
			v.Pairs = append(v.Pairs, candlePair{Image: c.Images[i], Note: c.Descriptions[i]})
		}
		return v
	}
	v.Images = c.Images
	v.Notes = c.Descriptions
	return v
}

func eventRows(occ map[string]clock.Occurrence, schedule []clock.Slot, now time.Time) []eventView {
	today := make(map[string][]string)
	for _, slot := range schedule {
		if sameDate(slot.Start, now) {
			today[slot.Event] = append(today[slot.Event], slot.Start.Format("15:04"))
		}
	}

	rows := make([]eventView, 0, len(occ))
	for name, o := range occ {
		rows = append(rows, eventView{
			Name:    name,
			Label:   daily.EventLabel(name),
			Next:    o.Next.Format("15:04"),
			Seconds: o.SecondsUntil(),
			Active:  o.Active,
			Today:   today[name],

			NextMillis: o.Next.UnixMilli(),
			EndMillis:  o.End.UnixMilli(),
			at:         o.Next,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.Before(rows[j].at)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func pendingSlots(schedule []clock.Slot, now time.Time) map[string][]slotView {
	if len(schedule) == 0 {
		return nil
	}
	slots := make(map[string][]slotView)
	for _, slot := range schedule {
		if !slot.End.After(now) {
			continue
		}
		slots[slot.Event] = append(slots[slot.Event], slotView{
			Start: slot.Start.UnixMilli(),
			End:   slot.End.UnixMilli(),
			At:    slot.Start.Format("15:04"),
		})
	}
	for _, list := range slots {
		sort.Slice(list, func(i, j int) bool { return list[i].Start < list[j].Start })
	}
	return slots
}

func sameDate(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
