package store

import "time"

// Athlete is a competition participant: heart rate profile plus the
// Strava credentials used to fetch their activities.
type Athlete struct {
	ID           int64
	Name         string
	RestingHR    int
	MaxHR        int
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ActivityRecord is the durable per-activity zone summary, the unit of
// all score aggregation. Zone fields are seconds; Date is the activity's
// local calendar day as YYYY-MM-DD.
type ActivityRecord struct {
	AthleteID  int64
	ActivityID int64
	Z1         float64
	Z2         float64
	Z3         float64
	Z4         float64
	Z5         float64
	Sport      string
	TotalTime  float64
	Date       string
}
