package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"zoneboard/internal/store"
	"zoneboard/internal/strava"
	"zoneboard/internal/zone"
)

type fakeSource struct {
	activities map[int64]*strava.Activity
	streams    map[int64]*strava.Streams
	listed     []strava.Activity
	listErr    error
}

func (f *fakeSource) GetActivity(ctx context.Context, id int64) (*strava.Activity, error) {
	a, ok := f.activities[id]
	if !ok {
		return nil, errors.New("activity not found")
	}
	return a, nil
}

func (f *fakeSource) GetStreams(ctx context.Context, id int64) (*strava.Streams, error) {
	s, ok := f.streams[id]
	if !ok {
		return nil, errors.New("streams not found")
	}
	return s, nil
}

func (f *fakeSource) GetAllActivities(ctx context.Context, after time.Time) ([]strava.Activity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func streamsFor(hr, times []int) *strava.Streams {
	return &strava.Streams{
		Heartrate: &strava.StreamData[int]{Data: hr},
		Time:      &strava.StreamData[int]{Data: times},
	}
}

func newTestIngestor(t *testing.T, src *fakeSource) (*Ingestor, *store.Store) {
	t.Helper()
	st := store.NewTestStore(t)
	athlete := &store.Athlete{ID: 7, Name: "Alice", RestingHR: 50, MaxHR: 190}
	if err := st.UpsertAthlete(athlete); err != nil {
		t.Fatalf("seeding athlete: %v", err)
	}
	factory := func(a *store.Athlete) ActivitySource { return src }
	return NewIngestor(st, factory, zone.MinHRHalfMax), st
}

func TestProcessActivityStoresZoneRecord(t *testing.T) {
	src := &fakeSource{
		activities: map[int64]*strava.Activity{
			100: {
				ID:             100,
				SportType:      "Run",
				StartDateLocal: time.Date(2026, 11, 3, 6, 0, 0, 0, time.UTC),
				ElapsedTime:    300,
				HasHeartrate:   true,
			},
		},
		streams: map[int64]*strava.Streams{
			100: streamsFor(
				[]int{50, 130, 150, 170, 190},
				[]int{0, 1, 2, 3, 4},
			),
		},
	}
	ing, st := newTestIngestor(t, src)

	if err := ing.ProcessActivity(context.Background(), 7, 100); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	rec, err := st.GetRecord(7, 100)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Sport != "Run" {
		t.Errorf("Sport = %q, want Run", rec.Sport)
	}
	if rec.Date != "2026-11-03" {
		t.Errorf("Date = %q, want 2026-11-03", rec.Date)
	}
	// Ceilings for this profile are 134, 148, 162 and 176 with a floor
	// of 95, so 50 is skipped, 130 lands in zone 1, 150 in zone 3, 170
	// in zone 4 and 190 in zone 5.
	if rec.Z1 != 1 || rec.Z2 != 0 || rec.Z3 != 1 || rec.Z4 != 1 || rec.Z5 != 1 {
		t.Errorf("zones = [%v %v %v %v %v], want [1 0 1 1 1]",
			rec.Z1, rec.Z2, rec.Z3, rec.Z4, rec.Z5)
	}
	if rec.TotalTime != 5 {
		t.Errorf("TotalTime = %v, want 5", rec.TotalTime)
	}
}

func TestProcessActivityIsIdempotent(t *testing.T) {
	src := &fakeSource{
		activities: map[int64]*strava.Activity{
			100: {ID: 100, SportType: "Ride", StartDateLocal: time.Date(2026, 11, 3, 6, 0, 0, 0, time.UTC)},
		},
		streams: map[int64]*strava.Streams{
			100: streamsFor([]int{140, 140, 140}, []int{0, 1, 2}),
		},
	}
	ing, st := newTestIngestor(t, src)

	for i := 0; i < 3; i++ {
		if err := ing.ProcessActivity(context.Background(), 7, 100); err != nil {
			t.Fatalf("ProcessActivity #%d: %v", i+1, err)
		}
	}

	records, err := st.ListRecords(7)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestProcessActivityNoHeartrate(t *testing.T) {
	src := &fakeSource{
		activities: map[int64]*strava.Activity{
			100: {ID: 100, SportType: "Yoga", StartDateLocal: time.Date(2026, 11, 3, 6, 0, 0, 0, time.UTC), ElapsedTime: 1800},
		},
		streams: map[int64]*strava.Streams{
			100: {},
		},
	}
	ing, st := newTestIngestor(t, src)

	if err := ing.ProcessActivity(context.Background(), 7, 100); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	rec, err := st.GetRecord(7, 100)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Z1+rec.Z2+rec.Z3+rec.Z4+rec.Z5 != 0 {
		t.Errorf("expected zero zone time, got %+v", rec)
	}
	if rec.TotalTime != 1800 {
		t.Errorf("TotalTime = %v, want elapsed 1800", rec.TotalTime)
	}
}

func TestProcessActivitySourceFailure(t *testing.T) {
	ing, _ := newTestIngestor(t, &fakeSource{})
	if err := ing.ProcessActivity(context.Background(), 7, 100); err == nil {
		t.Fatal("expected error when source has no such activity")
	}
}

func TestHandleEventDelete(t *testing.T) {
	ing, st := newTestIngestor(t, &fakeSource{})
	if err := st.UpsertRecord(&store.ActivityRecord{AthleteID: 7, ActivityID: 100, Date: "2026-11-03"}); err != nil {
		t.Fatalf("seeding record: %v", err)
	}

	ev := Event{ObjectType: "activity", AspectType: "delete", ObjectID: 100, OwnerID: 7}
	if err := ing.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if _, err := st.GetRecord(7, 100); !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("record still present after delete: %v", err)
	}

	// A second delete for the same record must not fail.
	if err := ing.HandleEvent(context.Background(), ev); err != nil {
		t.Errorf("redelivered delete: %v", err)
	}
}

func TestHandleEventDeauthorization(t *testing.T) {
	ing, st := newTestIngestor(t, &fakeSource{})
	if err := st.UpsertRecord(&store.ActivityRecord{AthleteID: 7, ActivityID: 100, Date: "2026-11-03"}); err != nil {
		t.Fatalf("seeding record: %v", err)
	}

	ev := Event{
		ObjectType: "athlete",
		AspectType: "update",
		OwnerID:    7,
		Updates:    map[string]string{"authorized": "false"},
	}
	if err := ing.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if _, err := st.GetAthlete(7); !errors.Is(err, store.ErrAthleteNotFound) {
		t.Errorf("athlete still present after deauthorization: %v", err)
	}
	if _, err := st.GetRecord(7, 100); !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("records still present after deauthorization: %v", err)
	}
}

func TestHandleEventIgnoresUnknownShapes(t *testing.T) {
	ing, _ := newTestIngestor(t, &fakeSource{})
	events := []Event{
		{ObjectType: "athlete", AspectType: "update", OwnerID: 7},
		{ObjectType: "gear", AspectType: "create", ObjectID: 1},
	}
	for _, ev := range events {
		if err := ing.HandleEvent(context.Background(), ev); err != nil {
			t.Errorf("HandleEvent(%+v): %v", ev, err)
		}
	}
}

func TestBackfillProcessesRecentActivities(t *testing.T) {
	src := &fakeSource{
		activities: map[int64]*strava.Activity{
			100: {ID: 100, SportType: "Run", StartDateLocal: time.Date(2026, 11, 3, 6, 0, 0, 0, time.UTC)},
			101: {ID: 101, SportType: "Ride", StartDateLocal: time.Date(2026, 11, 4, 6, 0, 0, 0, time.UTC)},
		},
		streams: map[int64]*strava.Streams{
			100: streamsFor([]int{140, 140}, []int{0, 1}),
			101: streamsFor([]int{150, 150}, []int{0, 1}),
		},
		listed: []strava.Activity{{ID: 100}, {ID: 101}},
	}
	ing, st := newTestIngestor(t, src)

	n, err := ing.Backfill(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 2 {
		t.Errorf("processed = %d, want 2", n)
	}

	records, err := st.ListRecords(7)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestBackfillContinuesPastListFailure(t *testing.T) {
	ing, _ := newTestIngestor(t, &fakeSource{listErr: errors.New("rate limited")})
	n, err := ing.Backfill(context.Background(), 48*time.Hour)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
}
