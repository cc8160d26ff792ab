package service

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"zoneboard/internal/auth"
	"zoneboard/internal/store"
	"zoneboard/internal/strava"
)

// ActivitySource is the slice of the Strava client the ingester needs.
type ActivitySource interface {
	GetActivity(ctx context.Context, activityID int64) (*strava.Activity, error)
	GetStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
	GetAllActivities(ctx context.Context, after time.Time) ([]strava.Activity, error)
}

// SourceFactory builds an activity source for one athlete's
// credentials.
type SourceFactory func(a *store.Athlete) ActivitySource

// NewStravaSources returns a factory producing Strava clients that
// share one rate limiter and persist refreshed tokens back to the
// store.
func NewStravaSources(oauthCfg *oauth2.Config, st *store.Store, limiter *strava.RateLimiter) SourceFactory {
	return func(a *store.Athlete) ActivitySource {
		athleteID := a.ID
		token := &oauth2.Token{
			AccessToken:  a.AccessToken,
			RefreshToken: a.RefreshToken,
			Expiry:       a.ExpiresAt,
		}
		ts := auth.NewTokenSource(oauthCfg, token, func(newToken *oauth2.Token) error {
			return st.UpdateTokens(athleteID, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
		})
		return strava.NewClient(ts, limiter)
	}
}
