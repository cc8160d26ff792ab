package score

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Normalizer applies the two-tier fairness caps: a per-day cap, then a
// per-ISO-week cap with a bounded PTO budget that retroactively tops up
// under-performing completed weeks in chronological order.
type Normalizer struct {
	DailyCap        float64
	WeeklyCap       float64
	PTOBudget       float64
	SeasonStartWeek int
}

// DefaultNormalizer returns the competition's standard caps.
func DefaultNormalizer() Normalizer {
	return Normalizer{
		DailyCap:        50,
		WeeklyCap:       150,
		PTOBudget:       600,
		SeasonStartWeek: 44,
	}
}

// DayScore is one labeled entry of the current-week breakdown.
type DayScore struct {
	Label string
	Score float64
}

// WeekDetail is the ordered current-week breakdown shown on the
// leaderboard: seven "<Day> (MM/DD)" entries ending today, plus a final
// "PTO remaining" entry. It marshals as a JSON object whose keys keep
// this order.
type WeekDetail []DayScore

// MarshalJSON renders the detail as an object with insertion-ordered
// keys, matching the published scores document format.
func (d WeekDetail) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Score)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the normalized outcome for one athlete.
type Result struct {
	Total        float64
	Detail       WeekDetail
	PTORemaining float64
}

// Normalize applies the daily cap, builds the current-week detail, then
// runs the weekly cap with PTO rollover over every ISO week from the
// season start through the current week. Weeks with no activity still
// pass through the cap as zero-score weeks; the current, in-progress
// week is never topped up.
func (n Normalizer) Normalize(daily map[time.Time]float64, today time.Time) Result {
	capped := make(map[time.Time]float64, len(daily))
	for day, s := range daily {
		capped[dateOnly(day)] = math.Min(s, n.DailyCap)
	}

	todayDate := dateOnly(today)

	detail := make(WeekDetail, 0, 8)
	for i := -6; i <= 0; i++ {
		d := todayDate.AddDate(0, 0, i)
		label := fmt.Sprintf("%s (%s)", d.Format("Mon"), d.Format("01/02"))
		detail = append(detail, DayScore{Label: label, Score: round1(capped[d])})
	}

	weekly := make(map[int]float64)
	for day, s := range capped {
		_, week := day.ISOWeek()
		weekly[week] += s
	}

	_, currentWeek := todayDate.ISOWeek()
	pto := n.PTOBudget
	var total float64

	for week := n.SeasonStartWeek; week <= currentWeek; week++ {
		s := weekly[week]
		if s < n.WeeklyCap && pto > 0 && week != currentWeek {
			short := n.WeeklyCap - s
			if short < pto {
				pto -= short
				s = n.WeeklyCap
			} else {
				s += pto
				pto = 0
			}
		} else {
			s = math.Min(s, n.WeeklyCap)
		}
		total += s
	}

	detail = append(detail, DayScore{Label: "PTO remaining", Score: round1(pto)})

	return Result{Total: total, Detail: detail, PTORemaining: pto}
}

// dateOnly truncates a time to its calendar day at midnight UTC, the
// canonical key for daily score maps.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
