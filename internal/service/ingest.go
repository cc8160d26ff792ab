package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"zoneboard/internal/store"
	"zoneboard/internal/strava"
	"zoneboard/internal/zone"
)

// Event is a Strava webhook event as delivered to the subscription
// callback.
type Event struct {
	ObjectType string            `json:"object_type"`
	AspectType string            `json:"aspect_type"`
	ObjectID   int64             `json:"object_id"`
	OwnerID    int64             `json:"owner_id"`
	Updates    map[string]string `json:"updates"`
}

// Ingestor turns webhook events into stored activity zone records.
type Ingestor struct {
	store   *store.Store
	sources SourceFactory
	policy  zone.MinHRPolicy
}

// NewIngestor creates an Ingestor.
func NewIngestor(st *store.Store, sources SourceFactory, policy zone.MinHRPolicy) *Ingestor {
	return &Ingestor{store: st, sources: sources, policy: policy}
}

// HandleEvent applies one webhook event. Activity creates and updates
// both resolve to an upsert, so replays and out-of-order deliveries
// converge on the same stored record. Source failures propagate to the
// caller; swallowing them would silently under-count the athlete.
func (ing *Ingestor) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.ObjectType {
	case "activity":
		switch ev.AspectType {
		case "create", "update":
			return ing.ProcessActivity(ctx, ev.OwnerID, ev.ObjectID)
		case "delete":
			err := ing.store.DeleteRecord(ev.OwnerID, ev.ObjectID)
			if errors.Is(err, store.ErrRecordNotFound) {
				// Deleting an activity we never stored is fine.
				return nil
			}
			return err
		}
	case "athlete":
		if ev.Updates["authorized"] == "false" {
			log.Printf("athlete %d deauthorized, removing their data", ev.OwnerID)
			if err := ing.store.DeleteAthleteRecords(ev.OwnerID); err != nil {
				return fmt.Errorf("deleting records for athlete %d: %w", ev.OwnerID, err)
			}
			err := ing.store.DeleteAthlete(ev.OwnerID)
			if errors.Is(err, store.ErrAthleteNotFound) {
				return nil
			}
			return err
		}
	}
	return nil
}

// ProcessActivity fetches one activity and its heartrate stream,
// converts them into a zone record, and upserts it. Reprocessing the
// same activity with identical upstream data is a no-op overwrite.
func (ing *Ingestor) ProcessActivity(ctx context.Context, athleteID, activityID int64) error {
	athlete, err := ing.store.GetAthlete(athleteID)
	if err != nil {
		return fmt.Errorf("looking up athlete %d: %w", athleteID, err)
	}

	boundaries, err := zone.NewBoundaries(zone.Profile{RestingHR: athlete.RestingHR, MaxHR: athlete.MaxHR}, ing.policy)
	if err != nil {
		return fmt.Errorf("athlete %d: %w", athleteID, err)
	}

	src := ing.sources(athlete)

	activity, err := src.GetActivity(ctx, activityID)
	if err != nil {
		return fmt.Errorf("fetching activity %d: %w", activityID, err)
	}
	streams, err := src.GetStreams(ctx, activityID)
	if err != nil {
		return fmt.Errorf("fetching streams for activity %d: %w", activityID, err)
	}

	record := buildRecord(athleteID, activity, streams, boundaries)
	if err := ing.store.UpsertRecord(record); err != nil {
		return fmt.Errorf("storing record for activity %d: %w", activityID, err)
	}

	log.Printf("stored activity %d for athlete %d (%s, %.0fs in zones)",
		activityID, athleteID, record.Sport, record.Z1+record.Z2+record.Z3+record.Z4+record.Z5)
	return nil
}

// buildRecord converts an activity and its streams into the persisted
// zone record. An activity with no heartrate data still yields a
// record, with zero zones and the elapsed time from the summary.
func buildRecord(athleteID int64, activity *strava.Activity, streams *strava.Streams, b zone.Boundaries) *store.ActivityRecord {
	record := &store.ActivityRecord{
		AthleteID:  athleteID,
		ActivityID: activity.ID,
		Sport:      activity.SportType,
		Date:       activity.StartDateLocal.Format("2006-01-02"),
	}

	hr, times := streams.HeartrateData()
	if len(hr) == 0 {
		record.TotalTime = float64(activity.ElapsedTime)
		return record
	}
	if len(times) < len(hr) {
		hr = hr[:len(times)]
	} else if len(hr) < len(times) {
		times = times[:len(hr)]
	}

	weights := zone.SampleWeights(times)
	summary := zone.Accumulate(hr, weights, b)

	record.Z1 = summary.Seconds[0]
	record.Z2 = summary.Seconds[1]
	record.Z3 = summary.Seconds[2]
	record.Z4 = summary.Seconds[3]
	record.Z5 = summary.Seconds[4]
	record.TotalTime = summary.TotalTime

	return record
}
