package daily

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report sections tracked across builds.
const (
	SectionShard    = "shard"
	SectionQuests   = "quests"
	SectionTreasure = "treasure"
	SectionSeasonal = "seasonal"
)

// MaxChangeLog bounds the change log kept in a snapshot.
const MaxChangeLog = 50

// Snapshot records what the previous build showed.
type Snapshot struct {
	Fingerprints map[string]string `json:"fingerprints"` // section → content hash
	Summaries    map[string]string `json:"summaries"`    // section → one-line summary
	ChangeLog    []*SectionChange  `json:"change_log"`
	UpdatedAt    string            `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Fingerprints: make(map[string]string),
		Summaries:    make(map[string]string),
		ChangeLog:    make([]*SectionChange, 0),
	}
}

// SectionChange is one section that differs from the previous build.
type SectionChange struct {
	Section    string    `json:"section"`
	ChangeType string    `json:"change_type"` // "new", "changed", "missing"
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// Fingerprint returns a content hash of v's JSON encoding.
func Fingerprint(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	h := sha1.New()
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// CreateSnapshot fingerprints every collected section of a report.
func CreateSnapshot(r *Report, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	if r == nil {
		return snap
	}

	if r.Shard != nil {
		snap.add(SectionShard, r.Shard, summarizeShard(r.Shard))
	}
	if r.Dailies != nil {
		if len(r.Dailies.Quests) > 0 {
			snap.add(SectionQuests, r.Dailies.Quests, strings.Join(r.Dailies.Quests, " / "))
		}
		if r.Dailies.Treasure != nil {
			snap.add(SectionTreasure, r.Dailies.Treasure, summarizeCandles(r.Dailies.Treasure))
		}
		if r.Dailies.Seasonal != nil {
			snap.add(SectionSeasonal, r.Dailies.Seasonal, summarizeCandles(r.Dailies.Seasonal))
		}
	}
	return snap
}

func (s *Snapshot) add(section string, v interface{}, summary string) {
	s.Fingerprints[section] = Fingerprint(v)
	s.Summaries[section] = summary
}

// Diff compares the current snapshot against the previous one. Sections
// present before but not collected now are reported as missing.
func Diff(previous, current *Snapshot) []*SectionChange {
	if previous == nil {
		previous = NewSnapshot()
	}
	if current == nil {
		current = NewSnapshot()
	}

	now := time.Now().UTC()
	var changes []*SectionChange

	for section, fp := range current.Fingerprints {
		old, exists := previous.Fingerprints[section]
		switch {
		case !exists:
			changes = append(changes, &SectionChange{
				Section:    section,
				ChangeType: "new",
				NewValue:   current.Summaries[section],
				DetectedAt: now,
			})
		case old != fp:
			changes = append(changes, &SectionChange{
				Section:    section,
				ChangeType: "changed",
				OldValue:   previous.Summaries[section],
				NewValue:   current.Summaries[section],
				DetectedAt: now,
			})
		}
	}

	for section := range previous.Fingerprints {
		if _, exists := current.Fingerprints[section]; !exists {
			changes = append(changes, &SectionChange{
				Section:    section,
				ChangeType: "missing",
				OldValue:   previous.Summaries[section],
				DetectedAt: now,
			})
		}
	}

	// Sort for consistent output
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Section < changes[j].Section
	})

	return changes
}

// CarryChangeLog appends changes to the previous log, keeping the newest
// MaxChangeLog entries.
func (s *Snapshot) CarryChangeLog(previous *Snapshot, changes []*SectionChange) {
	var log []*SectionChange
	if previous != nil {
		log = append(log, previous.ChangeLog...)
	}
	log = append(log, changes...)
	if len(log) > MaxChangeLog {
		log = log[len(log)-MaxChangeLog:]
	}
	s.ChangeLog = log
}

func summarizeShard(s *Shard) string {
	if s.NoShard {
		return s.Type.Label()
	}
	summary := fmt.Sprintf("%s @ %s", s.Type.Label(), s.Map)
	if s.IsForecast() {
		summary += " (" + FormatForecastDate(s.ForecastDate) + ")"
	}
	return summary
}

func summarizeCandles(c *Candles) string {
	if c.Rotation == "" {
		return c.Realm
	}
	return c.Realm + " | " + c.Rotation
}
