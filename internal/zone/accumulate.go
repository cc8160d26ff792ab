package zone

// Summary is the per-activity time-in-zone result. Seconds[i] holds the
// weighted time spent in zone i+1; TotalTime is the sum of all sample
// weights, including samples below the scoring floor.
type Summary struct {
	Seconds   [5]float64
	TotalTime float64
}

// Accumulate buckets weighted heart rate samples into the five zones. A
// sample below b.MinHR contributes to no zone (not even zone 1) but still
// counts toward TotalTime. Otherwise the sample lands in the first zone
// whose ceiling it is strictly below, with zone 5 catching everything at
// or above the fourth ceiling. hr and weights must be the same length;
// an empty stream yields a zero Summary.
func Accumulate(hr []int, weights []float64, b Boundaries) Summary {
	var s Summary

	for i, beat := range hr {
		w := weights[i]
		s.TotalTime += w

		if float64(beat) < b.MinHR {
			continue
		}

		switch {
		case beat < b.Ceilings[0]:
			s.Seconds[0] += w
		case beat < b.Ceilings[1]:
			s.Seconds[1] += w
		case beat < b.Ceilings[2]:
			s.Seconds[2] += w
		case beat < b.Ceilings[3]:
			s.Seconds[3] += w
		default:
			s.Seconds[4] += w
		}
	}

	return s
}
