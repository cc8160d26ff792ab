package strava

import "time"

// Activity is the subset of a Strava activity the competition needs.
type Activity struct {
	ID             int64     `json:"id"`
	SportType      string    `json:"sport_type"`
	StartDateLocal time.Time `json:"start_date_local"`
	ElapsedTime    int       `json:"elapsed_time"` // seconds
	HasHeartrate   bool      `json:"has_heartrate"`
}

// Streams holds the heartrate and time streams for one activity, keyed
// by type as Strava returns them with key_by_type=true.
type Streams struct {
	Heartrate *StreamData[int] `json:"heartrate"`
	Time      *StreamData[int] `json:"time"`
}

// StreamData represents a single stream type.
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// HeartrateData returns the parallel heartrate and timestamp slices, or
// nils if the activity carries no heartrate stream.
func (s *Streams) HeartrateData() (hr, times []int) {
	if s == nil || s.Heartrate == nil || s.Time == nil {
		return nil, nil
	}
	return s.Heartrate.Data, s.Time.Data
}
