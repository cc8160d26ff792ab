package score

import (
	"sort"
	"time"

	"zoneboard/internal/store"
)

// ZonePercents is the share of an athlete's total activity time spent in
// each zone, as percentages.
type ZonePercents struct {
	Z1 float64 `json:"Z1"`
	Z2 float64 `json:"Z2"`
	Z3 float64 `json:"Z3"`
	Z4 float64 `json:"Z4"`
	Z5 float64 `json:"Z5"`
}

// Entry is one athlete's row in the published leaderboard.
type Entry struct {
	Name   string         `json:"name"`
	Score  float64        `json:"score"`
	Zones  ZonePercents   `json:"zones"`
	Last7  WeekDetail     `json:"last_7"`
	Sports map[string]int `json:"sports"`
}

// Document is the full leaderboard payload handed to the publish sink.
type Document struct {
	LastUpdated string  `json:"lastUpdated"`
	Leaderboard []Entry `json:"leaderboard"`
}

// BuildEntry aggregates and normalizes one athlete's records into a
// leaderboard entry. Unscorable records are reported back as skipped
// items rather than failing the athlete.
func BuildEntry(name string, records []store.ActivityRecord, n Normalizer, today time.Time) (Entry, []SkippedItem) {
	agg := AggregateDaily(name, records)
	result := n.Normalize(agg.Daily, today)

	entry := Entry{
		Name:   name,
		Score:  round1(result.Total),
		Last7:  result.Detail,
		Sports: agg.Sports,
	}

	if agg.TotalTime > 0 {
		entry.Zones = ZonePercents{
			Z1: agg.ZoneSeconds[0] / agg.TotalTime * 100,
			Z2: agg.ZoneSeconds[1] / agg.TotalTime * 100,
			Z3: agg.ZoneSeconds[2] / agg.TotalTime * 100,
			Z4: agg.ZoneSeconds[3] / agg.TotalTime * 100,
			Z5: agg.ZoneSeconds[4] / agg.TotalTime * 100,
		}
	}

	return entry, agg.Skipped
}

// SortEntries orders leaderboard entries by score descending, breaking
// ties by name so rebuilds are deterministic.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
}
