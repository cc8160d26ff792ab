package score

import (
	"math"
	"testing"
	"time"

	"zoneboard/internal/store"
)

func TestActivityScore(t *testing.T) {
	tests := []struct {
		name   string
		record store.ActivityRecord
		want   float64
	}{
		{"one minute in z1", store.ActivityRecord{Z1: 60}, 1.0},
		{"one minute in z4 counts double", store.ActivityRecord{Z4: 60}, 2.0},
		{"one minute in z5 counts double", store.ActivityRecord{Z5: 60}, 2.0},
		{"mixed zones", store.ActivityRecord{Z1: 60, Z2: 120, Z3: 60, Z4: 30, Z5: 30}, 6.0},
		{"empty record", store.ActivityRecord{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityScore(tt.record); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ActivityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateDaily(t *testing.T) {
	records := []store.ActivityRecord{
		{ActivityID: 1, Z1: 600, Z4: 300, Sport: "Run", TotalTime: 1200, Date: "2026-08-30"},
		{ActivityID: 2, Z2: 300, Sport: "Ride", TotalTime: 600, Date: "2026-08-30"},
		{ActivityID: 3, Z5: 600, Sport: "Run", TotalTime: 800, Date: "2026-08-31"},
	}

	agg := AggregateDaily("Alice", records)

	day1 := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	// Day 1: (600 + 2*300)/60 + 300/60 = 20 + 5.
	if got := agg.Daily[day1]; math.Abs(got-25) > 1e-9 {
		t.Errorf("Daily[%v] = %v, want 25", day1, got)
	}
	// Day 2: 2*600/60 = 20.
	if got := agg.Daily[day2]; math.Abs(got-20) > 1e-9 {
		t.Errorf("Daily[%v] = %v, want 20", day2, got)
	}

	if agg.TotalTime != 2600 {
		t.Errorf("TotalTime = %v, want 2600", agg.TotalTime)
	}
	want := [5]float64{600, 300, 0, 300, 600}
	if agg.ZoneSeconds != want {
		t.Errorf("ZoneSeconds = %v, want %v", agg.ZoneSeconds, want)
	}
	if agg.Sports["Run"] != 2 || agg.Sports["Ride"] != 1 {
		t.Errorf("Sports = %v, want Run:2 Ride:1", agg.Sports)
	}
	if len(agg.Skipped) != 0 {
		t.Errorf("Skipped = %v, want none", agg.Skipped)
	}
}

func TestAggregateDailySkipsMalformedRecords(t *testing.T) {
	records := []store.ActivityRecord{
		{ActivityID: 1, Z1: 600, Sport: "Run", TotalTime: 600, Date: "2026-08-30"},
		{ActivityID: 2, Z1: 60, Sport: "Run", TotalTime: 60, Date: "not-a-date"},
		{ActivityID: 3, Z2: -5, Sport: "Run", TotalTime: 60, Date: "2026-08-30"},
	}

	agg := AggregateDaily("Alice", records)

	if len(agg.Skipped) != 2 {
		t.Fatalf("got %d skipped items, want 2: %v", len(agg.Skipped), agg.Skipped)
	}
	for _, item := range agg.Skipped {
		if item.Reason != SkipMalformedRecord {
			t.Errorf("skip reason = %q, want %q", item.Reason, SkipMalformedRecord)
		}
		if item.Athlete != "Alice" {
			t.Errorf("skip athlete = %q, want Alice", item.Athlete)
		}
	}

	// The well-formed record still counts.
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if got := agg.Daily[day]; math.Abs(got-10) > 1e-9 {
		t.Errorf("Daily[%v] = %v, want 10", day, got)
	}
	if agg.TotalTime != 600 {
		t.Errorf("TotalTime = %v, want 600", agg.TotalTime)
	}
}
