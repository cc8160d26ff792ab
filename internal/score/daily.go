package score

import (
	"fmt"
	"time"

	"zoneboard/internal/store"
)

// ActivityScore converts a zone record into score-minutes. Time in the
// top two zones counts double.
func ActivityScore(r store.ActivityRecord) float64 {
	return (r.Z1 + r.Z2 + r.Z3 + 2*(r.Z4+r.Z5)) / 60
}

// Aggregate is one athlete's records rolled up for scoring and
// reporting. Daily maps a calendar day (midnight UTC) to the raw score
// for that day; the zone and sport totals feed the leaderboard entry's
// percentages and frequency counts.
type Aggregate struct {
	Daily       map[time.Time]float64
	ZoneSeconds [5]float64
	TotalTime   float64
	Sports      map[string]int
	Skipped     []SkippedItem
}

// AggregateDaily sums an athlete's activity scores by calendar day.
// Records that cannot be scored are skipped with a tagged reason and do
// not abort the rest of the athlete's aggregation.
func AggregateDaily(athlete string, records []store.ActivityRecord) Aggregate {
	agg := Aggregate{
		Daily:  make(map[time.Time]float64),
		Sports: make(map[string]int),
	}

	for _, r := range records {
		day, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			agg.Skipped = append(agg.Skipped, SkippedItem{
				Athlete:  athlete,
				Activity: r.ActivityID,
				Reason:   SkipMalformedRecord,
				Detail:   fmt.Sprintf("bad date %q", r.Date),
			})
			continue
		}
		if r.Z1 < 0 || r.Z2 < 0 || r.Z3 < 0 || r.Z4 < 0 || r.Z5 < 0 || r.TotalTime < 0 {
			agg.Skipped = append(agg.Skipped, SkippedItem{
				Athlete:  athlete,
				Activity: r.ActivityID,
				Reason:   SkipMalformedRecord,
				Detail:   "negative zone duration",
			})
			continue
		}

		agg.Daily[day] += ActivityScore(r)

		agg.ZoneSeconds[0] += r.Z1
		agg.ZoneSeconds[1] += r.Z2
		agg.ZoneSeconds[2] += r.Z3
		agg.ZoneSeconds[3] += r.Z4
		agg.ZoneSeconds[4] += r.Z5
		agg.TotalTime += r.TotalTime
		agg.Sports[r.Sport]++
	}

	return agg
}
