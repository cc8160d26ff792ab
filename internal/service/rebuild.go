package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"zoneboard/internal/publish"
	"zoneboard/internal/score"
	"zoneboard/internal/store"
	"zoneboard/internal/zone"
)

// Rebuilder recomputes the full leaderboard from stored records and
// hands it to the publish sink. Every run starts from scratch; nothing
// is updated incrementally.
type Rebuilder struct {
	store      *store.Store
	sink       publish.Sink
	normalizer score.Normalizer
	policy     zone.MinHRPolicy
	location   *time.Location

	// now is swappable in tests.
	now func() time.Time
}

// NewRebuilder creates a Rebuilder that timestamps documents and picks
// "today" in the given location.
func NewRebuilder(st *store.Store, sink publish.Sink, n score.Normalizer, policy zone.MinHRPolicy, loc *time.Location) *Rebuilder {
	return &Rebuilder{
		store:      st,
		sink:       sink,
		normalizer: n,
		policy:     policy,
		location:   loc,
		now:        time.Now,
	}
}

// RunReport records what a rebuild did, including every skipped athlete
// and record with its reason.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Athletes  int
	Entries   int
	Skipped   []score.SkippedItem
}

// Rebuild scores every athlete and publishes the resulting document.
// Per-athlete problems are isolated into the report; only a publish
// failure (or an unreadable athlete list) fails the run.
func (r *Rebuilder) Rebuild(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: r.now(),
	}
	log.Printf("run %s: rebuilding leaderboard", report.RunID)

	athletes, err := r.store.ListAthletes()
	if err != nil {
		return report, fmt.Errorf("listing athletes: %w", err)
	}

	now := r.now().In(r.location)
	entries := make([]score.Entry, 0, len(athletes))

	for _, a := range athletes {
		report.Athletes++

		profile := zone.Profile{RestingHR: a.RestingHR, MaxHR: a.MaxHR}
		if _, err := zone.NewBoundaries(profile, r.policy); err != nil {
			log.Printf("run %s: skipping athlete %s: %v", report.RunID, a.Name, err)
			report.Skipped = append(report.Skipped, score.SkippedItem{
				Athlete: a.Name,
				Reason:  score.SkipInvalidProfile,
				Detail:  err.Error(),
			})
			continue
		}

		records, err := r.store.ListRecords(a.ID)
		if err != nil {
			log.Printf("run %s: skipping athlete %s: %v", report.RunID, a.Name, err)
			report.Skipped = append(report.Skipped, score.SkippedItem{
				Athlete: a.Name,
				Reason:  score.SkipStoreError,
				Detail:  err.Error(),
			})
			continue
		}

		entry, skipped := score.BuildEntry(a.Name, records, r.normalizer, now)
		for _, item := range skipped {
			log.Printf("run %s: skipping activity %d for %s: %s (%s)",
				report.RunID, item.Activity, item.Athlete, item.Reason, item.Detail)
		}
		report.Skipped = append(report.Skipped, skipped...)

		entries = append(entries, entry)
		report.Entries++
	}

	score.SortEntries(entries)

	doc := &score.Document{
		LastUpdated: now.Format(time.RFC3339),
		Leaderboard: entries,
	}

	if err := r.sink.Publish(ctx, doc); err != nil {
		return report, fmt.Errorf("publishing leaderboard: %w", err)
	}

	log.Printf("run %s: published %d entries (%d skipped items)",
		report.RunID, report.Entries, len(report.Skipped))
	return report, nil
}
