package zone

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidProfile is returned when an athlete's heart rate profile is
// degenerate and no zones can be derived from it.
var ErrInvalidProfile = errors.New("invalid heart rate profile")

// MinHRPolicy selects how the scoring floor is derived from a profile.
// Samples below the floor count toward no zone at all.
type MinHRPolicy string

const (
	// MinHRHalfMax floors at half the athlete's max HR.
	MinHRHalfMax MinHRPolicy = "half-max"
	// MinHRReserve floors at resting HR plus 40% of heart rate reserve.
	MinHRReserve MinHRPolicy = "reserve"
)

// Valid reports whether p is a known policy.
func (p MinHRPolicy) Valid() bool {
	return p == MinHRHalfMax || p == MinHRReserve
}

// Profile is an athlete's resting/max heart rate pair, set once at
// onboarding.
type Profile struct {
	RestingHR int
	MaxHR     int
}

// Boundaries holds the derived zone thresholds for one athlete.
// Ceilings[i] is the top of zone i+1; zone 5 catches everything at or
// above Ceilings[3]. Samples below MinHR are excluded from scoring.
type Boundaries struct {
	Ceilings [4]int
	MinHR    float64
}

// NewBoundaries derives zone boundaries from a profile. The ceilings are
// floor(resting + f*reserve) for f in {0.6, 0.7, 0.8, 0.9}, so they are
// non-decreasing and sit strictly between resting and max HR.
func NewBoundaries(p Profile, policy MinHRPolicy) (Boundaries, error) {
	if p.RestingHR <= 0 || p.MaxHR <= 0 {
		return Boundaries{}, fmt.Errorf("%w: resting=%d max=%d", ErrInvalidProfile, p.RestingHR, p.MaxHR)
	}
	if p.MaxHR <= p.RestingHR {
		return Boundaries{}, fmt.Errorf("%w: max %d must exceed resting %d", ErrInvalidProfile, p.MaxHR, p.RestingHR)
	}

	resting := float64(p.RestingHR)
	reserve := float64(p.MaxHR - p.RestingHR)

	var b Boundaries
	for i, f := range [4]float64{0.6, 0.7, 0.8, 0.9} {
		b.Ceilings[i] = int(math.Floor(resting + f*reserve))
	}

	switch policy {
	case MinHRReserve:
		b.MinHR = resting + 0.4*reserve
	default:
		b.MinHR = 0.5 * float64(p.MaxHR)
	}

	return b, nil
}
