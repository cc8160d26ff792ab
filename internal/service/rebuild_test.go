package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"zoneboard/internal/score"
	"zoneboard/internal/store"
	"zoneboard/internal/zone"
)

type fakeSink struct {
	doc *score.Document
	err error
}

func (f *fakeSink) Publish(ctx context.Context, doc *score.Document) error {
	if f.err != nil {
		return f.err
	}
	f.doc = doc
	return nil
}

func newTestRebuilder(t *testing.T, sink *fakeSink) (*Rebuilder, *store.Store) {
	t.Helper()
	st := store.NewTestStore(t)
	reb := NewRebuilder(st, sink, score.DefaultNormalizer(), zone.MinHRHalfMax, time.UTC)
	// Tuesday of the season's opening week.
	reb.now = func() time.Time { return time.Date(2026, 10, 27, 12, 0, 0, 0, time.UTC) }
	return reb, st
}

func seedScoredAthlete(t *testing.T, st *store.Store, id int64, name string, rec store.ActivityRecord) {
	t.Helper()
	if err := st.UpsertAthlete(&store.Athlete{ID: id, Name: name, RestingHR: 50, MaxHR: 190}); err != nil {
		t.Fatalf("seeding athlete %s: %v", name, err)
	}
	rec.AthleteID = id
	if err := st.UpsertRecord(&rec); err != nil {
		t.Fatalf("seeding record for %s: %v", name, err)
	}
}

func TestRebuildPublishesSortedLeaderboard(t *testing.T) {
	sink := &fakeSink{}
	reb, st := newTestRebuilder(t, sink)

	// Ten minutes of zone 1 scores 10; ten minutes of zone 4 scores 20.
	seedScoredAthlete(t, st, 1, "Alice", store.ActivityRecord{
		ActivityID: 100, Z1: 600, Sport: "Run", TotalTime: 600, Date: "2026-10-26",
	})
	seedScoredAthlete(t, st, 2, "Bob", store.ActivityRecord{
		ActivityID: 200, Z4: 600, Sport: "Ride", TotalTime: 600, Date: "2026-10-26",
	})

	report, err := reb.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if report.Athletes != 2 || report.Entries != 2 {
		t.Errorf("report = %+v, want 2 athletes and 2 entries", report)
	}
	if report.RunID == "" {
		t.Error("report has no run ID")
	}
	if len(report.Skipped) != 0 {
		t.Errorf("unexpected skipped items: %+v", report.Skipped)
	}

	if sink.doc == nil {
		t.Fatal("nothing published")
	}
	board := sink.doc.Leaderboard
	if len(board) != 2 {
		t.Fatalf("got %d entries, want 2", len(board))
	}
	if board[0].Name != "Bob" || board[1].Name != "Alice" {
		t.Errorf("order = [%s %s], want [Bob Alice]", board[0].Name, board[1].Name)
	}
	if board[0].Score != 20 {
		t.Errorf("Bob's score = %v, want 20", board[0].Score)
	}
	if board[1].Score != 10 {
		t.Errorf("Alice's score = %v, want 10", board[1].Score)
	}

	if _, err := time.Parse(time.RFC3339, sink.doc.LastUpdated); err != nil {
		t.Errorf("LastUpdated %q is not RFC3339: %v", sink.doc.LastUpdated, err)
	}
}

func TestRebuildTiesBreakByName(t *testing.T) {
	sink := &fakeSink{}
	reb, st := newTestRebuilder(t, sink)

	seedScoredAthlete(t, st, 1, "Zoe", store.ActivityRecord{
		ActivityID: 100, Z1: 600, TotalTime: 600, Date: "2026-10-26",
	})
	seedScoredAthlete(t, st, 2, "Amy", store.ActivityRecord{
		ActivityID: 200, Z1: 600, TotalTime: 600, Date: "2026-10-26",
	})

	if _, err := reb.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	board := sink.doc.Leaderboard
	if board[0].Name != "Amy" || board[1].Name != "Zoe" {
		t.Errorf("order = [%s %s], want [Amy Zoe]", board[0].Name, board[1].Name)
	}
}

func TestRebuildSkipsInvalidProfile(t *testing.T) {
	sink := &fakeSink{}
	reb, st := newTestRebuilder(t, sink)

	seedScoredAthlete(t, st, 1, "Alice", store.ActivityRecord{
		ActivityID: 100, Z1: 600, TotalTime: 600, Date: "2026-10-26",
	})
	// Resting above max is an unusable heart rate profile.
	if err := st.UpsertAthlete(&store.Athlete{ID: 2, Name: "Broken", RestingHR: 200, MaxHR: 100}); err != nil {
		t.Fatalf("seeding athlete: %v", err)
	}

	report, err := reb.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if report.Athletes != 2 || report.Entries != 1 {
		t.Errorf("report = %+v, want 2 athletes and 1 entry", report)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != score.SkipInvalidProfile {
		t.Fatalf("skipped = %+v, want one invalid_profile item", report.Skipped)
	}
	if report.Skipped[0].Athlete != "Broken" {
		t.Errorf("skipped athlete = %q, want Broken", report.Skipped[0].Athlete)
	}

	if len(sink.doc.Leaderboard) != 1 || sink.doc.Leaderboard[0].Name != "Alice" {
		t.Errorf("published board = %+v, want only Alice", sink.doc.Leaderboard)
	}
}

func TestRebuildReportsMalformedRecords(t *testing.T) {
	sink := &fakeSink{}
	reb, st := newTestRebuilder(t, sink)

	seedScoredAthlete(t, st, 1, "Alice", store.ActivityRecord{
		ActivityID: 100, Z1: 600, TotalTime: 600, Date: "not-a-date",
	})

	report, err := reb.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != score.SkipMalformedRecord {
		t.Fatalf("skipped = %+v, want one malformed_record item", report.Skipped)
	}
	// The athlete still appears, scored from whatever was usable.
	if len(sink.doc.Leaderboard) != 1 || sink.doc.Leaderboard[0].Score != 0 {
		t.Errorf("board = %+v, want Alice at 0", sink.doc.Leaderboard)
	}
}

func TestRebuildPublishFailureIsFatal(t *testing.T) {
	sink := &fakeSink{err: errors.New("upstream down")}
	reb, st := newTestRebuilder(t, sink)

	seedScoredAthlete(t, st, 1, "Alice", store.ActivityRecord{
		ActivityID: 100, Z1: 600, TotalTime: 600, Date: "2026-10-26",
	})

	if _, err := reb.Rebuild(context.Background()); err == nil {
		t.Fatal("expected error when publishing fails")
	}
}
