package daily

import (
	"time"

	"github.com/pfrederiksen/skydaily/internal/clock"
)

// ShardType is the colour of a shard eruption.
type ShardType string

const (
	ShardRed     ShardType = "red"
	ShardBlack   ShardType = "black"
	ShardUnknown ShardType = "unknown"
	ShardNone    ShardType = "none"
)

// Label returns the dashboard wording for the type.
func (t ShardType) Label() string {
	switch t {
	case ShardRed:
		return "紅石 (Red)"
	case ShardBlack:
		return "黑石 (Black)"
	case ShardNone:
		return "無碎石 (No Shard)"
	default:
		return "未知"
	}
}

// Eruption is one shard landing window as shown on the source page.
type Eruption struct {
	StartText string    `json:"start_text"`
	EndText   string    `json:"end_text"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Range returns the window in the page's own wording.
func (e Eruption) Range() string {
	return e.StartText + " - " + e.EndText
}

// Shard describes the shard eruptions of one day.
type Shard struct {
	Date      string     `json:"date"`
	Type      ShardType  `json:"type"`
	Map       string     `json:"map"`
	Rewards   string     `json:"rewards"`
	ImageURL  string     `json:"image_url,omitempty"`
	Eruptions []Eruption `json:"eruptions"`
	NoShard   bool       `json:"no_shard"`

	// ForecastDate is set when the record describes a later day because
	// today has no shard.
	ForecastDate time.Time `json:"forecast_date,omitempty"`
}

// NoShardRecord returns the record used for days without eruptions.
func NoShardRecord(date string) *Shard {
	return &Shard{
		Date:    date,
		Type:    ShardNone,
		Map:     "無",
		Rewards: "無",
		NoShard: true,
	}
}

// IsForecast reports whether the record describes a later day.
func (s *Shard) IsForecast() bool {
	return !s.ForecastDate.IsZero()
}

// Candles is one candle rotation: where to find the candles in a realm today.
type Candles struct {
	Realm        string   `json:"realm"`
	Rotation     string   `json:"rotation"`
	Descriptions []string `json:"descriptions"`
	Images       []string `json:"images"`
}

// Dailies groups the candle rotations and quests scraped from the same site.
type Dailies struct {
	Quests   []string `json:"quests"`
	Treasure *Candles `json:"treasure"`
	Seasonal *Candles `json:"seasonal"`
}

// Report is everything one dashboard build shows. Nil sections could not
// be collected.
type Report struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Shard       *Shard                      `json:"shard"`
	Dailies     *Dailies                    `json:"dailies"`
	Clock       map[string]clock.Occurrence `json:"-"`
	Schedule    []clock.Slot                `json:"-"` // today and tomorrow
}
